package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at signup
	RoleUser UserRole = "user"
	// RoleAdmin grants access to the user management routes
	RoleAdmin UserRole = "admin"
)

// User is the user model. Role, Email, PasswordHash, and PasswordChangedAt
// map to hidden columns: store reads leave them zero unless a select
// criteria opts in.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName          string     `bun:"full_name,notnull" json:"fullName,omitempty"`
	Username          string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Bio               string     `bun:"bio" json:"bio,omitempty"`
	Role              UserRole   `bun:"user_role,notnull,default:'user'" json:"role,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// PasswordChangedAfter reports whether the password changed after the given
// instant. Comparison is in epoch seconds to match token issued-at claims.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return t.Unix() < u.PasswordChangedAt.Unix()
}

// PublicUser is the client-facing projection of a user record. It has no
// password hash or password-changed-at fields, so serializing one can never
// leak them. Email and Role are populated only when the source record was
// loaded with the matching columns.
type PublicUser struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName,omitempty"`
	Username  string     `json:"username,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      UserRole   `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Public returns the client-facing view of the record
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Username:  u.Username,
		Bio:       u.Bio,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
