package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcrew/internal/api/apitest"
	"techcrew/internal/models"
	"techcrew/internal/utils"
)

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c client) do(method, path string, body any) (int, utils.APIResponse) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("apikey", apitest.APIKey)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env utils.APIResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func setup(t *testing.T) (*apitest.Env, client, client) {
	env := apitest.New(t)
	alice := client{t: t, base: env.Server.URL, token: apitest.Token(t, "user-alice", "alice@example.com")}
	bob := client{t: t, base: env.Server.URL, token: apitest.Token(t, "user-bob", "bob@example.com")}
	return env, alice, bob
}

func TestHealthz(t *testing.T) {
	env := apitest.New(t)
	resp, err := http.Get(env.Server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env, alice, _ := setup(t)

	status, _ := client{t: t, base: env.Server.URL}.do(http.MethodGet, "/api/bands", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/api/bands", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBandScenario(t *testing.T) {
	_, alice, bob := setup(t)

	status, env := alice.do(http.MethodPost, "/api/bands", map[string]any{
		"name": "The Openers", "home_location": "NYC", "members": 4, "last_played": "2023-06-15",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var band models.Band
	require.NoError(t, json.Unmarshal(env.Data, &band))
	assert.Equal(t, "user-alice", band.CreatedBy)

	status, env = alice.do(http.MethodGet, "/api/bands?owner=user-alice", nil)
	require.Equal(t, http.StatusOK, status)
	var bands []models.Band
	require.NoError(t, json.Unmarshal(env.Data, &bands))
	count := 0
	for _, b := range bands {
		if b.ID == band.ID {
			count++
			assert.Equal(t, 4, b.Members)
			assert.Equal(t, models.Date("2023-06-15"), b.LastPlayed)
		}
	}
	assert.Equal(t, 1, count)

	status, _ = bob.do(http.MethodPatch, "/api/bands/"+band.ID, map[string]any{"notes": "hijack"})
	assert.Equal(t, http.StatusForbidden, status)

	time.Sleep(10 * time.Millisecond)
	status, env = alice.do(http.MethodPatch, "/api/bands/"+band.ID, map[string]any{"notes": "Bring earplugs"})
	require.Equal(t, http.StatusOK, status)
	var updated models.Band
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Bring earplugs", updated.Notes)
	assert.Equal(t, "The Openers", updated.Name)
	assert.True(t, updated.UpdatedAt.After(band.UpdatedAt), "updated_at %v not after %v", updated.UpdatedAt, band.UpdatedAt)
	assert.True(t, updated.CreatedAt.Equal(band.CreatedAt))

	status, _ = alice.do(http.MethodDelete, "/api/bands/"+band.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = alice.do(http.MethodGet, "/api/bands/"+band.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = alice.do(http.MethodGet, "/api/bands/band-quiet", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestValidationErrors(t *testing.T) {
	_, alice, _ := setup(t)

	status, env := alice.do(http.MethodPost, "/api/bands", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "home_location")

	status, _ = alice.do(http.MethodGet, "/api/issues?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = alice.do(http.MethodGet, "/api/changes?table=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIssueToggle(t *testing.T) {
	_, alice, bob := setup(t)

	status, _ := bob.do(http.MethodPost, "/api/issues/issue-1/toggle", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := alice.do(http.MethodPost, "/api/issues/issue-1/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	var issue models.Issue
	require.NoError(t, json.Unmarshal(env.Data, &issue))
	assert.Equal(t, models.StatusClosed, issue.Status)
	assert.NotNil(t, issue.ClosedAt)

	status, env = alice.do(http.MethodGet, "/api/issues?status=open,in_progress", nil)
	require.Equal(t, http.StatusOK, status)
	var open []models.Issue
	require.NoError(t, json.Unmarshal(env.Data, &open))
	require.Len(t, open, 1)
	assert.Equal(t, "issue-2", open[0].ID)
}

func TestMeAndDashboard(t *testing.T) {
	_, alice, _ := setup(t)

	status, env := alice.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, models.RoleTech, me.Role)
	assert.Equal(t, "Alice Mixer", me.FullName)

	status, env = alice.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	var d struct {
		RecentIssues []models.Issue `json:"recent_issues"`
		Inventory    []models.CategoryTotal
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.NotEmpty(t, d.RecentIssues)
	assert.Equal(t, models.PriorityHigh, d.RecentIssues[0].Priority)
	assert.Len(t, d.Inventory, len(models.DefaultCategories))
}

func TestUpdateMe(t *testing.T) {
	_, alice, bob := setup(t)

	status, env := alice.do(http.MethodPatch, "/api/me", map[string]any{"full_name": "Alice FOH"})
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Alice FOH", me.FullName)
	assert.Equal(t, models.RoleTech, me.Role)

	status, env = alice.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Alice FOH", me.FullName)

	status, env = bob.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Bob Monitor", me.FullName)

	status, _ = alice.do(http.MethodPatch, "/api/me", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = alice.do(http.MethodPatch, "/api/me", map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBandDeleteConflict(t *testing.T) {
	_, alice, bob := setup(t)

	status, env := bob.do(http.MethodPost, "/api/gig-logs", map[string]any{"date": "2024-04-01", "band_id": "band-rockers", "venue": "Dive"})
	require.Equal(t, http.StatusCreated, status)
	var gig models.GigLog
	require.NoError(t, json.Unmarshal(env.Data, &gig))

	status, env = alice.do(http.MethodDelete, "/api/bands/band-rockers", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, env.Error, "other techs")

	status, _ = bob.do(http.MethodGet, "/api/gig-logs/"+gig.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = alice.do(http.MethodGet, "/api/bands/band-rockers", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestInventoryRoutes(t *testing.T) {
	env, alice, _ := setup(t)

	status, resp := alice.do(http.MethodGet, "/api/inventory/categories", nil)
	require.Equal(t, http.StatusOK, status)
	var cats []models.InventoryCategory
	require.NoError(t, json.Unmarshal(resp.Data, &cats))
	assert.Len(t, cats, len(models.DefaultCategories))

	status, _ = alice.do(http.MethodGet, "/api/inventory/overview", nil)
	assert.Equal(t, http.StatusOK, status)

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/api/inventory/item-1/label.png?apikey="+apitest.APIKey, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice.token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	png, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestChangeStream(t *testing.T) {
	env, alice, _ := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.Server.URL+"/api/changes?table=issues", nil)
	require.NoError(t, err)
	req.Header.Set("apikey", apitest.APIKey)
	req.Header.Set("Authorization", "Bearer "+alice.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return env.Hub.SubscriberCount("issues") == 1 }, time.Second, 10*time.Millisecond)
	status, _ := alice.do(http.MethodPost, "/api/issues/issue-1/toggle", nil)
	require.Equal(t, http.StatusOK, status)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: ") && data == "" && strings.Contains(lines.Text(), "UPDATE") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var c models.Change
	require.NoError(t, json.Unmarshal([]byte(data), &c))
	assert.Equal(t, models.Change{Table: "issues", Op: models.OpUpdate, ID: "issue-1", ActorID: "user-alice", At: c.At}, c)
}
