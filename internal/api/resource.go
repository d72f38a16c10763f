package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"techcrew/internal/models"
	"techcrew/internal/repo"
	"techcrew/internal/utils"
)

// resource serves the CRUD routes of one entity.
type resource[T models.Record, I any] struct {
	srv  *Server
	name string
	repo repo.Repository[T, I]
}

func mount[T models.Record, I any](r chi.Router, s *Server, path, name string, rp repo.Repository[T, I], extra func(chi.Router)) {
	res := &resource[T, I]{srv: s, name: name, repo: rp}
	r.Route(path, func(r chi.Router) {
		r.Get("/", res.list)
		r.Post("/", res.create)
		if extra != nil {
			extra(r)
		}
		r.Get("/{id}", res.get)
		r.Patch("/{id}", res.update)
		r.Delete("/{id}", res.remove)
	})
}

func (res *resource[T, I]) list(w http.ResponseWriter, r *http.Request) {
	q, err := models.ParseListQuery(r.URL.Query())
	if err != nil {
		res.srv.fail(w, r, "invalid query", err)
		return
	}
	rows, err := res.repo.List(r.Context(), q)
	if err != nil {
		res.srv.fail(w, r, "failed to list "+res.name, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d %s", len(rows), res.name), rows)
}

func (res *resource[T, I]) get(w http.ResponseWriter, r *http.Request) {
	row, err := res.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		res.srv.fail(w, r, "failed to load "+res.name, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ok", row)
}

func decodeInput[I any](r *http.Request) (I, error) {
	var in I
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, &models.FieldError{Field: "body", Reason: "is not valid JSON: " + err.Error()}
	}
	return in, nil
}

func (res *resource[T, I]) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[I](r)
	if err != nil {
		res.srv.fail(w, r, "invalid request body", err)
		return
	}
	row, err := res.repo.Create(r.Context(), in)
	if err != nil {
		res.srv.fail(w, r, "failed to create "+res.name, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "created", row)
}

func (res *resource[T, I]) update(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[I](r)
	if err != nil {
		res.srv.fail(w, r, "invalid request body", err)
		return
	}
	row, err := res.repo.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		res.srv.fail(w, r, "failed to update "+res.name, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "updated", row)
}

func (res *resource[T, I]) remove(w http.ResponseWriter, r *http.Request) {
	if err := res.repo.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		res.srv.fail(w, r, "failed to delete "+res.name, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "deleted", nil)
}
