package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"techcrew/internal/logger"
	"techcrew/internal/session"
	"techcrew/internal/utils"
)

// ProfileSync records the caller's profile and returns the session with
// the stored role filled in.
type ProfileSync interface {
	SyncProfile(ctx context.Context, s session.Session) (session.Session, error)
}

// Middleware verifies the bearer token and puts the resulting session on
// the request context. profiles may be nil.
func Middleware(v Verifier, profiles ProfileSync, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			claims, err := v.Verify(r.Context(), raw)
			if err != nil {
				sub, _ := UnverifiedSubject(raw)
				log.LogSecurity("INVALID_TOKEN", fmt.Sprintf("%s %s sub=%q: %v", r.Method, r.URL.Path, sub, err))
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", errors.New("invalid token"))
				return
			}

			s := session.Session{UserID: claims.Subject, Email: claims.Email, FullName: claims.Name}
			if profiles != nil {
				synced, err := profiles.SyncProfile(r.Context(), s)
				if err != nil {
					log.Error("AUTH", fmt.Sprintf("Profile sync for %s failed: %v", s.UserID, err))
					utils.WriteError(w, http.StatusInternalServerError, "profile sync failed", err)
					return
				}
				s = synced
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}

// APIKey rejects requests whose apikey header does not match key. An
// empty key disables the check.
func APIKey(key string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get("apikey")
			if got == "" {
				got = r.URL.Query().Get("apikey")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				log.LogSecurity("INVALID_API_KEY", fmt.Sprintf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr))
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", errors.New("invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
