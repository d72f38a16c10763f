package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleTech  Role = "tech"
	RoleUser  Role = "user"
)

// User is the profile row behind a token subject.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,notnull" json:"email"`
	FullName  string    `bun:"full_name,notnull" json:"full_name"`
	Role      Role      `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// ProfileInput carries the editable profile fields. Email and role come
// from the identity provider and an admin respectively.
type ProfileInput struct {
	FullName *string `json:"full_name,omitempty"`
}

func (in ProfileInput) Validate() error {
	if in.FullName == nil {
		return required("full_name")
	}
	if len([]rune(*in.FullName)) > 120 {
		return invalid("full_name", "must be at most 120 characters")
	}
	return nil
}
