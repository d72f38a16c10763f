// Package gateway is the HTTP client side of the repository interfaces.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"techcrew/internal/config"
	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/repo"
	"techcrew/internal/utils"
)

const requestTimeout = 10 * time.Second

// APIError is a failed API call. It unwraps to the matching sentinel in
// models so callers can test it with errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return models.ErrValidation
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	}
	return nil
}

type Client struct {
	base   string
	apiKey string
	token  string
	http   *http.Client
	stream *http.Client
	log    *logger.Logger

	Bands     *Resource[models.Band, models.BandInput]
	GigLogs   *Resource[models.GigLog, models.GigLogInput]
	Schedules *Resource[models.Schedule, models.ScheduleInput]
	Issues    *IssueResource
	Inventory *InventoryResource
}

func New(cfg config.ClientConfig, log *logger.Logger) *Client {
	c := &Client{
		base:   strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		token:  cfg.Token,
		http:   &http.Client{Timeout: requestTimeout},
		stream: &http.Client{},
		log:    log,
	}
	c.Bands = newResource[models.Band, models.BandInput](c, "bands", models.TableBands)
	c.GigLogs = newResource[models.GigLog, models.GigLogInput](c, "gig-logs", models.TableGigLogs)
	c.Schedules = newResource[models.Schedule, models.ScheduleInput](c, "schedules", models.TableSchedules)
	c.Issues = &IssueResource{newResource[models.Issue, models.IssueInput](c, "issues", models.TableIssues)}
	c.Inventory = &InventoryResource{newResource[models.InventoryItem, models.InventoryItemInput](c, "inventory", models.TableInventory)}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do performs one call and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	c.log.Debug("GATEWAY", fmt.Sprintf("%s %s", method, req.URL.Path))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach %s: %w", c.base, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Error("GATEWAY", fmt.Sprintf("Failed to close response body: %v", err))
		}
	}(resp.Body)

	return c.decode(resp, out)
}

func (c *Client) decode(resp *http.Response, out any) error {
	var env utils.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= 300 {
		msg := env.Message
		if env.Error != "" {
			msg = env.Message + ": " + env.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %T: %w", out, err)
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe changes the caller's display name.
func (c *Client) UpdateMe(ctx context.Context, in models.ProfileInput) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/api/me", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Dashboard(ctx context.Context) (*repo.Dashboard, error) {
	var d repo.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Label fetches the QR label PNG for an inventory item.
func (c *Client) Label(ctx context.Context, id string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/inventory/"+url.PathEscape(id)+"/label.png", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", c.base, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.decode(resp, nil)
	}
	return io.ReadAll(resp.Body)
}

var errStreamClosed = errors.New("change stream closed by server")
