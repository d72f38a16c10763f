// Package apitest runs the full API over an in-memory database for
// handler and client tests.
package apitest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"techcrew/internal/api"
	"techcrew/internal/auth"
	"techcrew/internal/changefeed"
	"techcrew/internal/database"
	"techcrew/internal/database/dbtest"
	"techcrew/internal/labels"
	"techcrew/internal/logger"
	"techcrew/internal/service"
)

const (
	Secret = "apitest-secret"
	APIKey = "apitest-key"
)

type Env struct {
	Server *httptest.Server
	API    *api.Server
	DB     *bun.DB
	Hub    *changefeed.Hub
	Labels *labels.Generator
}

// New starts a server seeded with the sample data set. It is shut down
// when the test ends.
func New(tb testing.TB) *Env {
	tb.Helper()
	db := dbtest.New(tb)
	if err := database.SeedSample(context.Background(), db); err != nil {
		tb.Fatalf("seed: %v", err)
	}

	log := logger.Discard()
	hub := changefeed.NewHub(log)
	deps := service.Deps{DB: db, Feed: hub, Log: log}

	issues := service.NewIssues(deps)
	gigLogs := service.NewGigLogs(deps)
	schedules := service.NewSchedules(deps)
	inventory := service.NewInventory(deps)
	users := service.NewUsers(deps)
	gen := labels.NewGenerator("apitest-label")

	srv := &api.Server{
		Bands:     service.NewBands(deps),
		GigLogs:   gigLogs,
		Schedules: schedules,
		Issues:    issues,
		Inventory: inventory,
		Users:     users,
		Dashboard: service.NewDashboard(deps, issues, gigLogs, schedules, inventory),
		Changes:   hub,
		Labels:    gen,
		Verifier:  auth.NewHMACVerifier(Secret),
		Sync:      users,
		APIKey:    APIKey,
		Log:       log,
	}
	ts := httptest.NewServer(srv.Router())
	tb.Cleanup(ts.Close)
	return &Env{Server: ts, API: srv, DB: db, Hub: hub, Labels: gen}
}

// Token mints a bearer token for one of the seeded users.
func Token(tb testing.TB, userID, email string) string {
	tb.Helper()
	tok, err := auth.MintToken(Secret, auth.Claims{Subject: userID, Email: email}, time.Hour)
	if err != nil {
		tb.Fatalf("mint token: %v", err)
	}
	return tok
}
