package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/api/apitest"
	"techcrew/internal/config"
	"techcrew/internal/controller"
	"techcrew/internal/gateway"
	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/session"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newBandsPage(t *testing.T, user string) *listPage[models.Band, models.BandInput] {
	env := apitest.New(t)
	c := gateway.New(config.ClientConfig{
		URL:    env.Server.URL,
		APIKey: apitest.APIKey,
		Token:  apitest.Token(t, user, user+"@example.com"),
	}, logger.Discard())
	ctrl := controller.New[models.Band, models.BandInput]("band", c.Bands, session.Session{UserID: user}, logger.Discard())
	p := newListPage("Bands", ctrl, controller.BandForm(), bandColumns)

	msg := p.load(context.Background())()
	require.NoError(t, msg.(resultMsg).err)
	p.Update(context.Background(), msg)
	return p
}

func TestListPageRendersRows(t *testing.T) {
	p := newBandsPage(t, "user-alice")
	assert.Len(t, p.rows, 2)

	wide := p.View(120, 20)
	assert.Contains(t, wide, "Quiet Storm")
	assert.Contains(t, wide, "The Rockers")

	narrow := p.View(60, 40)
	assert.Contains(t, narrow, "Members")
	assert.Contains(t, narrow, "Austin")
}

func TestCreateThroughForm(t *testing.T) {
	ctx := context.Background()
	p := newBandsPage(t, "user-alice")

	p.Update(ctx, runes("a"))
	require.Equal(t, controller.ViewCreate, p.ctrl.View().Kind)
	assert.Contains(t, p.View(120, 20), "New band")

	p.Update(ctx, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, p.formErr, "name")

	p.inputs[0].SetValue("Afterglow")
	p.inputs[1].SetValue("Denver")
	p.inputs[2].SetValue("5")
	cmd := p.Update(ctx, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd().(resultMsg)
	require.NoError(t, msg.err)
	assert.True(t, msg.write)
	p.Update(ctx, msg)

	v := p.ctrl.View()
	require.Equal(t, controller.ViewFeedback, v.Kind)
	assert.True(t, v.Feedback.Success)
	assert.Len(t, p.rows, 3)

	p.Update(ctx, runes("x"))
	assert.False(t, p.ctrl.View().Open())
}

func TestForeignRowsAreReadOnly(t *testing.T) {
	ctx := context.Background()
	p := newBandsPage(t, "user-bob")

	// rows are name ordered: Quiet Storm (bob) then The Rockers (alice)
	p.Update(ctx, tea.KeyMsg{Type: tea.KeyDown})
	row, ok := p.selected()
	require.True(t, ok)
	require.Equal(t, "band-rockers", row.ID)

	p.Update(ctx, runes("e"))
	assert.False(t, p.ctrl.View().Open())
	p.Update(ctx, runes("d"))
	assert.False(t, p.ctrl.View().Open())
	assert.NotContains(t, p.View(120, 20), "[e] edit")

	p.Update(ctx, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, controller.ViewDetail, p.ctrl.View().Kind)
	assert.Contains(t, p.View(120, 20), "read only")
}

func TestDeleteConfirm(t *testing.T) {
	ctx := context.Background()
	p := newBandsPage(t, "user-bob")

	p.Update(ctx, runes("d"))
	require.Equal(t, controller.ViewDelete, p.ctrl.View().Kind)
	assert.Contains(t, p.View(120, 20), "Quiet Storm")

	cmd := p.Update(ctx, runes("y"))
	require.NotNil(t, cmd)
	msg := cmd().(resultMsg)
	require.NoError(t, msg.err)
	p.Update(ctx, msg)
	assert.Len(t, p.rows, 1)
}

func TestFetchTable(t *testing.T) {
	env := apitest.New(t)
	c := gateway.New(config.ClientConfig{
		URL:    env.Server.URL,
		APIKey: apitest.APIKey,
		Token:  apitest.Token(t, "user-bob", "bob@example.com"),
	}, logger.Discard())
	ctx := context.Background()

	out, n, err := FetchTable(ctx, c, "issues", models.ListQuery{Status: []string{"in_progress"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, "Priority")
	assert.Contains(t, out, "in_progress")

	_, n, err = FetchTable(ctx, c, "inventory", models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, _, err = FetchTable(ctx, c, "venues", models.ListQuery{})
	assert.Error(t, err)
}

func TestIssueFilterKey(t *testing.T) {
	env := apitest.New(t)
	c := gateway.New(config.ClientConfig{
		URL:    env.Server.URL,
		APIKey: apitest.APIKey,
		Token:  apitest.Token(t, "user-alice", "alice@example.com"),
	}, logger.Discard())
	ctx := context.Background()

	ctrl := controller.NewIssues(c.Issues, session.Session{UserID: "user-alice"}, logger.Discard())
	p := newListPage("Issues", ctrl.Controller, controller.IssueForm(), issueColumns)
	p.filter = ctrl.CycleFilter
	p.filterBy = func() string { return ctrl.Filter().String() }
	p.Update(ctx, p.load(ctx)())
	require.Len(t, p.rows, 2)
	assert.Contains(t, p.View(120, 20), "[f] show: all")

	cmd := p.Update(ctx, runes("f"))
	require.NotNil(t, cmd)
	msg := cmd().(resultMsg)
	require.NoError(t, msg.err)
	p.Update(ctx, msg)
	assert.Equal(t, controller.FilterOpen, ctrl.Filter())
	assert.Contains(t, p.View(120, 20), "[f] show: open")
	require.Len(t, p.rows, 2)

	require.NoError(t, ctrl.ToggleStatus(ctx, "issue-1"))
	p.Update(ctx, refreshMsg{page: p.title})
	require.Len(t, p.rows, 1)
	assert.Equal(t, "issue-2", p.rows[0].ID)

	msg = p.Update(ctx, runes("f"))().(resultMsg)
	require.NoError(t, msg.err)
	p.Update(ctx, msg)
	assert.Equal(t, controller.FilterClosed, ctrl.Filter())
	require.Len(t, p.rows, 1)
	assert.Equal(t, "issue-1", p.rows[0].ID)
}
