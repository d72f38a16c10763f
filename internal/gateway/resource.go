package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"techcrew/internal/models"
	"techcrew/internal/repo"
)

// Resource implements repo.Repository over the REST API.
type Resource[T models.Record, I any] struct {
	c     *Client
	path  string
	table string
}

var (
	_ repo.Bands               = (*Resource[models.Band, models.BandInput])(nil)
	_ repo.IssueRepository     = (*IssueResource)(nil)
	_ repo.InventoryRepository = (*InventoryResource)(nil)
)

func newResource[T models.Record, I any](c *Client, path, table string) *Resource[T, I] {
	return &Resource[T, I]{c: c, path: "/api/" + path, table: table}
}

func (r *Resource[T, I]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T, I]) List(ctx context.Context, q models.ListQuery) ([]T, error) {
	var rows []T
	if err := r.c.do(ctx, http.MethodGet, r.path, q.Values(), nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (r *Resource[T, I]) Get(ctx context.Context, id string) (*T, error) {
	row := new(T)
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, nil, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Resource[T, I]) Create(ctx context.Context, in I) (*T, error) {
	row := new(T)
	if err := r.c.do(ctx, http.MethodPost, r.path, nil, in, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Resource[T, I]) Update(ctx context.Context, id string, in I) (*T, error) {
	row := new(T)
	if err := r.c.do(ctx, http.MethodPatch, r.item(id), nil, in, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Resource[T, I]) Remove(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

// Subscribe opens the server-sent change stream for the resource's table.
// The channel closes when ctx is done or the server ends the stream.
func (r *Resource[T, I]) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	return r.c.Changes(ctx, r.table)
}

// Changes opens the change stream for table; an empty table streams all.
func (c *Client) Changes(ctx context.Context, table string) (<-chan models.Change, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/changes", url.Values{"table": {table}}, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", c.base, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.decode(resp, nil)
	}

	out := make(chan models.Change)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		var event string
		lines := bufio.NewScanner(resp.Body)
		for lines.Scan() {
			line := lines.Text()
			switch {
			case line == "":
				event = ""
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "change":
				var ch models.Change
				if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ch); err != nil {
					c.log.Warn("GATEWAY", fmt.Sprintf("Skipping malformed change event: %v", err))
					continue
				}
				select {
				case out <- ch:
				case <-ctx.Done():
					return
				}
			}
		}
		if ctx.Err() == nil {
			c.log.Warn("GATEWAY", fmt.Sprintf("%s %s: %v", table, errStreamClosed, lines.Err()))
		}
	}()
	return out, nil
}

type IssueResource struct {
	*Resource[models.Issue, models.IssueInput]
}

func (r *IssueResource) ToggleStatus(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := r.c.do(ctx, http.MethodPost, r.item(id)+"/toggle", nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

type InventoryResource struct {
	*Resource[models.InventoryItem, models.InventoryItemInput]
}

func (r *InventoryResource) Categories(ctx context.Context) ([]models.InventoryCategory, error) {
	var cats []models.InventoryCategory
	if err := r.c.do(ctx, http.MethodGet, r.path+"/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *InventoryResource) Overview(ctx context.Context) ([]models.CategoryTotal, error) {
	var totals []models.CategoryTotal
	if err := r.c.do(ctx, http.MethodGet, r.path+"/overview", nil, nil, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}
