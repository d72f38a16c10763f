package api

import (
	"errors"
	"fmt"
	"net/http"

	"techcrew/internal/models"
	"techcrew/internal/utils"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail maps err onto the response and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.Log.Error("API", fmt.Sprintf("%s %s: %s: %v", r.Method, r.URL.Path, msg, err))
	} else {
		s.Log.Debug("API", fmt.Sprintf("%s %s: %s: %v", r.Method, r.URL.Path, msg, err))
	}
	utils.WriteError(w, status, msg, err)
}
