// Package api exposes the services over a JSON REST API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"techcrew/internal/auth"
	"techcrew/internal/labels"
	"techcrew/internal/logger"
	"techcrew/internal/models"
	"techcrew/internal/repo"
	"techcrew/internal/session"
	"techcrew/internal/utils"
)

type Profiles interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.User, error)
}

type DashboardLoader interface {
	Load(ctx context.Context) (*repo.Dashboard, error)
}

type ChangeSource interface {
	Subscribe(ctx context.Context, table string) <-chan models.Change
}

type Server struct {
	Bands     repo.Bands
	GigLogs   repo.GigLogs
	Schedules repo.Schedules
	Issues    repo.IssueRepository
	Inventory repo.InventoryRepository
	Users     Profiles
	Dashboard DashboardLoader
	Changes   ChangeSource
	Labels    *labels.Generator

	Verifier auth.Verifier
	Sync     auth.ProfileSync
	APIKey   string
	Log      *logger.Logger
}

// Router builds the chi router. Everything under /api requires the API
// key and a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.APIKey(s.APIKey, s.Log))
		r.Use(auth.Middleware(s.Verifier, s.Sync, s.Log))

		r.Get("/me", s.me)
		r.Patch("/me", s.updateMe)
		r.Get("/dashboard", s.dashboard)
		r.Get("/changes", s.changes)

		mount(r, s, "/bands", "bands", s.Bands, nil)
		mount(r, s, "/gig-logs", "gig logs", s.GigLogs, nil)
		mount(r, s, "/schedules", "schedules", s.Schedules, nil)
		mount[models.Issue, models.IssueInput](r, s, "/issues", "issues", s.Issues, func(r chi.Router) {
			r.Post("/{id}/toggle", s.toggleIssue)
		})
		mount[models.InventoryItem, models.InventoryItemInput](r, s, "/inventory", "inventory items", s.Inventory, func(r chi.Router) {
			r.Get("/categories", s.categories)
			r.Get("/overview", s.overview)
			r.Get("/{id}/label.png", s.label)
		})
	})

	s.Log.Info("ROUTER", "API routes registered under /api")
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.LogAPI(r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.Me(r.Context())
	if err != nil {
		s.fail(w, r, "failed to load profile", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", u)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[models.ProfileInput](r)
	if err != nil {
		s.fail(w, r, "invalid request body", err)
		return
	}
	u, err := s.Users.UpdateProfile(r.Context(), in)
	if err != nil {
		s.fail(w, r, "failed to update profile", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "updated", u)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.Dashboard.Load(r.Context())
	if err != nil {
		s.fail(w, r, "failed to load dashboard", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", d)
}

func (s *Server) toggleIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.Issues.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "failed to toggle issue", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("issue %s", issue.Status), issue)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.Inventory.Categories(r.Context())
	if err != nil {
		s.fail(w, r, "failed to list categories", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", cats)
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	totals, err := s.Inventory.Overview(r.Context())
	if err != nil {
		s.fail(w, r, "failed to load inventory overview", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", totals)
}

func (s *Server) label(w http.ResponseWriter, r *http.Request) {
	item, err := s.Inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "failed to load inventory item", err)
		return
	}
	png, err := s.Labels.PNG(*item)
	if err != nil {
		s.fail(w, r, "failed to render label", err)
		return
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		s.Log.Info("LABEL", fmt.Sprintf("%s printed label for %s", sess.UserID, item.ID))
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
