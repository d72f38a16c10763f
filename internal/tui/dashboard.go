package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"techcrew/internal/gateway"
	"techcrew/internal/repo"
)

type dashboardLoadedMsg struct {
	d   *repo.Dashboard
	err error
}

type dashboardPage struct {
	client *gateway.Client
	data   *repo.Dashboard
	err    error
}

func newDashboardPage(c *gateway.Client) *dashboardPage {
	return &dashboardPage{client: c}
}

func (p *dashboardPage) Title() string   { return "Dashboard" }
func (p *dashboardPage) Capturing() bool { return false }

func (p *dashboardPage) Init(ctx context.Context) tea.Cmd {
	return p.load(ctx)
}

func (p *dashboardPage) load(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		d, err := p.client.Dashboard(ctx)
		return dashboardLoadedMsg{d: d, err: err}
	}
}

func (p *dashboardPage) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		p.data, p.err = msg.d, msg.err
	case resultMsg:
		if msg.write && msg.err == nil {
			return p.load(ctx)
		}
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p.load(ctx)
		}
	}
	return nil
}

func (p *dashboardPage) View(width, height int) string {
	switch {
	case p.err != nil:
		return errorStyle.Render("Failed to load dashboard: " + p.err.Error())
	case p.data == nil:
		return mutedStyle.Render("Loading dashboard...")
	}

	var issues, gigs, shows, inv []string
	for _, i := range p.data.RecentIssues {
		issues = append(issues, fmt.Sprintf("[%s] %s", i.Priority, i.Title))
	}
	for _, g := range p.data.RecentGigLogs {
		gigs = append(gigs, fmt.Sprintf("%s  %s @ %s", g.Date, g.BandName(), g.Venue))
	}
	for _, s := range p.data.UpcomingSchedules {
		shows = append(shows, fmt.Sprintf("%s %s  %s", s.Date, s.ShowTime, s.DisplayBand()))
	}
	for _, c := range p.data.Inventory {
		inv = append(inv, fmt.Sprintf("%-20s %4d", c.Category, c.Quantity))
	}

	boxes := []string{
		box("Recent Issues", issues),
		box("Recent Gigs", gigs),
		box("Upcoming Shows", shows),
		box("Inventory", inv),
	}
	if width > 0 && width < narrowWidth {
		return lipgloss.JoinVertical(lipgloss.Left, boxes...) + "\n" + mutedStyle.Render("[r] reload")
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, boxes[0], " ", boxes[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, boxes[2], " ", boxes[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom) + "\n" + mutedStyle.Render("[r] reload")
}

func box(title string, lines []string) string {
	body := mutedStyle.Render("nothing here")
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	return cardStyle.Width(38).Render(labelStyle.Render(title) + "\n" + body)
}
