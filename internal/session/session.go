// Package session carries the authenticated user through a request.
package session

import (
	"context"

	"techcrew/internal/models"
)

type Session struct {
	UserID   string
	Email    string
	FullName string
	Role     models.Role
}

// DisplayName falls back to the email when no full name is known.
func (s Session) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Email
}

// Owns reports whether the session may modify a record owned by ownerID.
func (s Session) Owns(ownerID string) bool {
	return s.UserID != "" && s.UserID == ownerID
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.UserID != ""
}

// Require returns the session or models.ErrUnauthorized.
func Require(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, models.ErrUnauthorized
	}
	return s, nil
}
