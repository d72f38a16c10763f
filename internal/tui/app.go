// Package tui is the terminal client: one tab per entity over the
// gateway, driven by the list controllers.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"techcrew/internal/controller"
	"techcrew/internal/gateway"
	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/session"
)

type Model struct {
	ctx    context.Context
	user   session.Session
	pages  []page
	active int
	width  int
	height int
	status string
}

// New builds the tabs for the signed-in user.
func New(ctx context.Context, c *gateway.Client, s session.Session, log *logger.Logger) *Model {
	bandChoices := func(ctx context.Context) (map[string][]controller.Choice, error) {
		bands, err := c.Bands.List(ctx, models.ListQuery{})
		if err != nil {
			return nil, err
		}
		out := make([]controller.Choice, len(bands))
		for i, b := range bands {
			out[i] = controller.Choice{Value: b.ID, Label: b.Name}
		}
		return map[string][]controller.Choice{"band_id": out}, nil
	}
	categoryChoices := func(ctx context.Context) (map[string][]controller.Choice, error) {
		cats, err := c.Inventory.Categories(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]controller.Choice, len(cats))
		for i, cat := range cats {
			out[i] = controller.Choice{Value: cat.ID, Label: cat.Name}
		}
		return map[string][]controller.Choice{"category_id": out}, nil
	}

	bands := newListPage("Bands", controller.New[models.Band, models.BandInput]("band", c.Bands, s, log), controller.BandForm(), bandColumns)

	gigLogs := newListPage("Gig Logs", controller.New[models.GigLog, models.GigLogInput]("gig log", c.GigLogs, s, log), controller.GigLogForm(), gigLogColumns)
	gigLogs.choices = bandChoices

	schedules := newListPage("Schedules", controller.New[models.Schedule, models.ScheduleInput]("schedule", c.Schedules, s, log), controller.ScheduleForm(), scheduleColumns)
	schedules.choices = bandChoices

	issueCtrl := controller.NewIssues(c.Issues, s, log)
	issues := newListPage("Issues", issueCtrl.Controller, controller.IssueForm(), issueColumns)
	issues.toggle = issueCtrl.ToggleStatus
	issues.filter = issueCtrl.CycleFilter
	issues.filterBy = func() string { return issueCtrl.Filter().String() }
	issues.watch = issueCtrl.WatchByDefault()

	inventory := newListPage("Inventory", controller.New[models.InventoryItem, models.InventoryItemInput]("inventory item", c.Inventory, s, log), controller.InventoryForm(), inventoryColumns)
	inventory.choices = categoryChoices

	return &Model{
		ctx:   ctx,
		user:  s,
		pages: []page{newDashboardPage(c), bands, gigLogs, schedules, issues, inventory},
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, c *gateway.Client, s session.Session, log *logger.Logger) error {
	_, err := tea.NewProgram(New(ctx, c, s, log), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.pages))
	for i, p := range m.pages {
		cmds[i] = p.Init(m.ctx)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case resultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %v", msg.page, msg.err)
		} else {
			m.status = ""
		}
		return m, m.broadcast(msg)
	case refreshMsg:
		return m, m.broadcast(msg)
	case tea.KeyMsg:
		cur := m.pages[m.active]
		if !cur.Capturing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "tab", "right", "l":
				m.active = (m.active + 1) % len(m.pages)
				return m, nil
			case "shift+tab", "left", "h":
				m.active = (m.active - 1 + len(m.pages)) % len(m.pages)
				return m, nil
			}
		} else if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, cur.Update(m.ctx, msg)
	}
	return m, m.broadcast(msg)
}

// broadcast hands msg to every page; pages ignore messages meant for
// another page.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, p := range m.pages {
		cmds = append(cmds, p.Update(m.ctx, msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TechCrew") + "  " + mutedStyle.Render(m.user.DisplayName()) + "\n")

	tabs := make([]string, len(m.pages))
	for i, p := range m.pages {
		if i == m.active {
			tabs[i] = activeTabStyle.Render(p.Title())
		} else {
			tabs[i] = tabStyle.Render(p.Title())
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	b.WriteString(m.pages[m.active].View(m.width, m.height-6))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status) + "\n")
	}
	b.WriteString(mutedStyle.Render("[tab] switch  [q] quit"))
	return b.String()
}
