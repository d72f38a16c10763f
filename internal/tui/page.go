package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"techcrew/internal/controller"
	"techcrew/internal/models"
)

type (
	// refreshMsg asks the named page to re-render from its controller.
	refreshMsg struct{ page string }
	// resultMsg reports the outcome of a remote call made by a page.
	resultMsg struct {
		page  string
		err   error
		write bool
	}
)

// page is one tab: a list with its overlay.
type page interface {
	Title() string
	Init(ctx context.Context) tea.Cmd
	Update(ctx context.Context, msg tea.Msg) tea.Cmd
	View(width, height int) string
	Capturing() bool
}

// choiceLoader supplies runtime options for choice fields.
type choiceLoader func(ctx context.Context) (map[string][]controller.Choice, error)

type listPage[T models.Record, I any] struct {
	title    string
	ctrl     *controller.Controller[T, I]
	form     *controller.Form[T, I]
	columns  []column[T]
	choices  choiceLoader
	toggle   func(ctx context.Context, id string) error
	filter   func(ctx context.Context) error
	filterBy func() string
	watch    bool

	table   table.Model
	rows    []T
	inputs  []textinput.Model
	picks   []int
	focus   int
	formErr string
	changes chan struct{}
}

func newListPage[T models.Record, I any](title string, ctrl *controller.Controller[T, I], form *controller.Form[T, I], cols []column[T]) *listPage[T, I] {
	tc := make([]table.Column, len(cols))
	for i, c := range cols {
		tc[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	p := &listPage[T, I]{
		title:   title,
		ctrl:    ctrl,
		form:    form,
		columns: cols,
		table:   table.New(table.WithColumns(tc), table.WithFocused(true), table.WithHeight(15)),
		changes: make(chan struct{}, 1),
	}
	ctrl.OnChange(func() {
		select {
		case p.changes <- struct{}{}:
		default:
		}
	})
	return p
}

func (p *listPage[T, I]) Title() string { return p.title }

// Capturing reports whether keys belong to an open overlay.
func (p *listPage[T, I]) Capturing() bool { return p.ctrl.View().Open() }

func (p *listPage[T, I]) Init(ctx context.Context) tea.Cmd {
	cmds := []tea.Cmd{p.load(ctx), p.waitForChange()}
	if p.watch {
		cmds = append(cmds, func() tea.Msg {
			if err := p.ctrl.Watch(ctx); err != nil {
				return resultMsg{page: p.title, err: fmt.Errorf("watch: %w", err)}
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (p *listPage[T, I]) load(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{page: p.title, err: p.ctrl.Load(ctx)}
	}
}

func (p *listPage[T, I]) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-p.changes
		return refreshMsg{page: p.title}
	}
}

func (p *listPage[T, I]) selected() (T, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.rows) {
		var zero T
		return zero, false
	}
	return p.rows[i], true
}

func (p *listPage[T, I]) syncRows() {
	p.rows = p.ctrl.State().Records
	rows := make([]table.Row, len(p.rows))
	for i, r := range p.rows {
		row := make(table.Row, len(p.columns))
		for j, c := range p.columns {
			row[j] = c.Value(r)
		}
		rows[i] = row
	}
	p.table.SetRows(rows)
}

func (p *listPage[T, I]) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case refreshMsg:
		if msg.page != p.title {
			return nil
		}
		p.syncRows()
		return p.waitForChange()
	case resultMsg:
		if msg.page == p.title {
			p.syncRows()
		}
		return nil
	case tea.KeyMsg:
		return p.key(ctx, msg)
	}
	var cmd tea.Cmd
	if k := p.ctrl.View().Kind; (k == controller.ViewCreate || k == controller.ViewEdit) && p.focus < len(p.inputs) {
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
		return cmd
	}
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *listPage[T, I]) key(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	v := p.ctrl.View()
	switch v.Kind {
	case controller.ViewCreate, controller.ViewEdit:
		return p.formKey(ctx, msg)
	case controller.ViewDelete:
		switch msg.String() {
		case "y", "enter":
			return func() tea.Msg { return resultMsg{page: p.title, err: p.ctrl.ConfirmDelete(ctx), write: true} }
		case "n", "esc":
			p.ctrl.Close()
		}
		return nil
	case controller.ViewDetail, controller.ViewFeedback:
		p.ctrl.Close()
		return nil
	}

	row, ok := p.selected()
	switch msg.String() {
	case "a":
		p.ctrl.OpenCreate()
		return p.openForm(ctx, p.form.Empty())
	case "e":
		if ok && p.ctrl.OpenEdit(row.RecordID()) == nil {
			return p.openForm(ctx, p.form.Values(row))
		}
	case "d":
		if ok {
			_ = p.ctrl.OpenDelete(row.RecordID())
		}
	case "enter":
		if ok {
			_ = p.ctrl.OpenDetail(row.RecordID())
		}
	case "t":
		if ok && p.toggle != nil {
			id := row.RecordID()
			return func() tea.Msg { return resultMsg{page: p.title, err: p.toggle(ctx, id), write: true} }
		}
	case "f":
		if p.filter != nil {
			return func() tea.Msg { return resultMsg{page: p.title, err: p.filter(ctx)} }
		}
	case "r":
		return p.load(ctx)
	default:
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	return nil
}

func (p *listPage[T, I]) openForm(ctx context.Context, values map[string]string) tea.Cmd {
	p.formErr = ""
	if p.choices != nil {
		opts, err := p.choices(ctx)
		if err != nil {
			p.formErr = err.Error()
		}
		for name, c := range opts {
			p.form.SetChoices(name, c)
		}
	}

	p.inputs = make([]textinput.Model, len(p.form.Fields))
	p.picks = make([]int, len(p.form.Fields))
	p.focus = 0
	for i, f := range p.form.Fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = 500
		in.Width = 40
		in.SetValue(values[f.Name])
		p.inputs[i] = in
		p.picks[i] = -1
		for j, c := range f.Choices {
			if c.Value == values[f.Name] {
				p.picks[i] = j
			}
		}
	}
	return p.focusField(0)
}

func (p *listPage[T, I]) focusField(i int) tea.Cmd {
	n := len(p.inputs)
	p.focus = (i%n + n) % n
	for j := range p.inputs {
		p.inputs[j].Blur()
	}
	if p.form.Fields[p.focus].Kind == controller.KindChoice {
		return nil
	}
	return p.inputs[p.focus].Focus()
}

func (p *listPage[T, I]) values() map[string]string {
	out := make(map[string]string, len(p.inputs))
	for i, f := range p.form.Fields {
		if f.Kind == controller.KindChoice {
			if p.picks[i] >= 0 && p.picks[i] < len(f.Choices) {
				out[f.Name] = f.Choices[p.picks[i]].Value
			} else {
				out[f.Name] = ""
			}
			continue
		}
		out[f.Name] = p.inputs[i].Value()
	}
	return out
}

func (p *listPage[T, I]) formKey(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	field := p.form.Fields[p.focus]
	switch msg.String() {
	case "esc":
		p.ctrl.Close()
		return nil
	case "tab", "down":
		return p.focusField(p.focus + 1)
	case "shift+tab", "up":
		return p.focusField(p.focus - 1)
	case "left", "right":
		if field.Kind == controller.KindChoice {
			p.cycle(msg.String() == "right")
			return nil
		}
	case "ctrl+s":
		return p.submit(ctx)
	case "enter":
		if p.focus == len(p.inputs)-1 {
			return p.submit(ctx)
		}
		return p.focusField(p.focus + 1)
	}
	if field.Kind == controller.KindChoice {
		return nil
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd
}

// cycle moves a choice field to the next or previous option; -1 is blank.
func (p *listPage[T, I]) cycle(forward bool) {
	n := len(p.form.Fields[p.focus].Choices) + 1
	cur := p.picks[p.focus] + 1
	if forward {
		cur = (cur + 1) % n
	} else {
		cur = (cur - 1 + n) % n
	}
	p.picks[p.focus] = cur - 1
}

func (p *listPage[T, I]) submit(ctx context.Context) tea.Cmd {
	in, err := p.form.Build(p.values())
	if err != nil {
		p.formErr = err.Error()
		return nil
	}
	return func() tea.Msg {
		return resultMsg{page: p.title, err: p.ctrl.Submit(ctx, in), write: true}
	}
}

func (p *listPage[T, I]) View(width, height int) string {
	v := p.ctrl.View()
	switch v.Kind {
	case controller.ViewCreate, controller.ViewEdit:
		return p.viewForm(v)
	case controller.ViewDelete:
		return overlayStyle.Render(fmt.Sprintf("Delete this %s?\n\n%s\n\n%s", p.ctrl.Name, p.summary(v.RecordID), mutedStyle.Render("[y] delete  [n] cancel")))
	case controller.ViewDetail:
		return overlayStyle.Render(p.detail(v.RecordID) + "\n\n" + mutedStyle.Render("any key to close"))
	case controller.ViewFeedback:
		style, head := successStyle, "Done"
		if !v.Feedback.Success {
			style, head = errorStyle, "Something went wrong"
		}
		return overlayStyle.Render(style.Render(head) + "\n\n" + v.Feedback.Message + "\n\n" + mutedStyle.Render("any key to close"))
	}

	st := p.ctrl.State()
	var b strings.Builder
	switch {
	case st.Loading && len(st.Records) == 0:
		b.WriteString(mutedStyle.Render("Loading " + p.title + "..."))
	case st.Err != nil:
		b.WriteString(errorStyle.Render("Failed to load: " + st.Err.Error()))
	case p.ctrl.Empty():
		b.WriteString(mutedStyle.Render("No " + strings.ToLower(p.title) + " yet. Press [a] to add one."))
	case width > 0 && width < narrowWidth:
		b.WriteString(p.viewCards(height))
	default:
		p.table.SetHeight(max(height-2, 3))
		b.WriteString(p.table.View())
	}

	keys := "[a] add  [e] edit  [d] delete  [enter] details  [r] reload"
	if p.toggle != nil {
		keys += "  [t] toggle status"
	}
	if row, ok := p.selected(); ok && !p.ctrl.CanModify(row) {
		keys = "[a] add  [enter] details  [r] reload"
	}
	if p.filter != nil {
		keys += "  [f] show: " + p.filterBy()
	}
	b.WriteString("\n" + mutedStyle.Render(keys))
	return b.String()
}

func (p *listPage[T, I]) viewCards(height int) string {
	cards := make([]string, 0, len(p.rows))
	cursor := p.table.Cursor()
	for i, r := range p.rows {
		lines := make([]string, 0, len(p.columns))
		for _, c := range p.columns {
			if v := c.Value(r); v != "" {
				lines = append(lines, labelStyle.Render(c.Title+": ")+v)
			}
		}
		style := cardStyle
		if i == cursor {
			style = selectedCard
		}
		cards = append(cards, style.Render(strings.Join(lines, "\n")))
	}
	out := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if lines := strings.Split(out, "\n"); height > 0 && len(lines) > height {
		out = strings.Join(lines[:height], "\n")
	}
	return out
}

func (p *listPage[T, I]) summary(id string) string {
	row, ok := p.ctrl.Find(id)
	if !ok || len(p.columns) == 0 {
		return id
	}
	return p.columns[0].Value(row)
}

func (p *listPage[T, I]) detail(id string) string {
	row, ok := p.ctrl.Find(id)
	if !ok {
		return id
	}
	var b strings.Builder
	for _, c := range p.columns {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(c.Title+":"), c.Value(row))
	}
	if !p.ctrl.CanModify(row) {
		b.WriteString(mutedStyle.Render("read only: owned by another tech"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *listPage[T, I]) viewForm(v controller.ViewState) string {
	head := "New " + p.ctrl.Name
	if v.Kind == controller.ViewEdit {
		head = "Edit " + p.ctrl.Name
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(head) + "\n\n")
	for i, f := range p.form.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		marker := "  "
		if i == p.focus {
			marker = "> "
		}
		b.WriteString(marker + labelStyle.Render(label) + "\n  ")
		if f.Kind == controller.KindChoice {
			choice := mutedStyle.Render("(none)")
			if p.picks[i] >= 0 && p.picks[i] < len(f.Choices) {
				choice = f.Choices[p.picks[i]].Label
			}
			b.WriteString("< " + choice + " >\n")
			continue
		}
		b.WriteString(p.inputs[i].View() + "\n")
	}
	if p.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(p.formErr) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("[tab] next  [←/→] choose  [ctrl+s] save  [esc] cancel"))
	return overlayStyle.Render(b.String())
}
