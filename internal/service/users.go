package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techcrew/internal/models"
	"techcrew/internal/session"
	"techcrew/internal/store"
)

type Users struct {
	deps Deps
}

func NewUsers(deps Deps) *Users {
	return &Users{deps: deps}
}

// SyncProfile upserts the profile behind a verified token and returns the
// session with the stored role and name.
func (u *Users) SyncProfile(ctx context.Context, s session.Session) (session.Session, error) {
	now := u.deps.now()
	email := s.Email
	if email == "" {
		email = s.UserID
	}
	// A name set through UpdateProfile wins over the token's claim.
	name := s.FullName
	existing, err := store.GetUser(ctx, u.deps.DB, s.UserID)
	switch {
	case err == nil:
		if existing.FullName != "" {
			name = existing.FullName
		}
	case !errors.Is(err, models.ErrNotFound):
		return s, err
	}
	row := &models.User{
		ID:        s.UserID,
		Email:     email,
		FullName:  name,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.UpsertUser(ctx, u.deps.DB, row); err != nil {
		return s, err
	}
	stored, err := store.GetUser(ctx, u.deps.DB, s.UserID)
	if err != nil {
		return s, fmt.Errorf("reload profile: %w", err)
	}
	s.Role = stored.Role
	s.FullName = stored.FullName
	return s, nil
}

// Me returns the profile of the calling session.
func (u *Users) Me(ctx context.Context) (*models.User, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.GetUser(ctx, u.deps.DB, s.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.User{ID: s.UserID, Email: s.Email, FullName: s.FullName, Role: s.Role}, nil
	}
	return user, err
}

// UpdateProfile changes the caller's display name. A blank name clears it
// so the email is shown instead.
func (u *Users) UpdateProfile(ctx context.Context, in models.ProfileInput) (*models.User, error) {
	s, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := u.deps.DB.NewUpdate().Model((*models.User)(nil)).
		Set("full_name = ?", strings.TrimSpace(*in.FullName)).
		Set("updated_at = ?", u.deps.now()).
		Where("id = ?", s.UserID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", s.UserID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("profile %s: %w", s.UserID, models.ErrNotFound)
	}
	u.deps.Log.Info("USERS", fmt.Sprintf("Profile %s updated", s.UserID))
	return store.GetUser(ctx, u.deps.DB, s.UserID)
}
