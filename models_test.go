package accounts_test

import (
	"encoding/json"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPublic(t *testing.T) {
	now := time.Now()
	user := &accounts.User{
		ID:                uuid.New(),
		FullName:          "Ada Lovelace",
		Username:          "ada_l",
		Bio:               "first programmer",
		Role:              accounts.RoleAdmin,
		Email:             "ada@example.com",
		PasswordHash:      "$2a$12$secret-hash",
		PasswordChangedAt: &now,
		CreatedAt:         &now,
	}

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "secret-hash")
	assert.NotContains(t, body, "password")
	assert.Contains(t, body, "ada_l")
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, accounts.RoleAdmin)
}

func TestUserPublicOmitsUnloadedColumns(t *testing.T) {
	user := &accounts.User{
		ID:       uuid.New(),
		FullName: "Ada Lovelace",
		Username: "ada_l",
	}

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "role")
}

func TestPasswordChangedAfter(t *testing.T) {
	now := time.Now()

	t.Run("never changed", func(t *testing.T) {
		user := &accounts.User{}
		assert.False(t, user.PasswordChangedAfter(now))
	})

	t.Run("token issued before the change", func(t *testing.T) {
		changed := now
		user := &accounts.User{PasswordChangedAt: &changed}
		assert.True(t, user.PasswordChangedAfter(now.Add(-10*time.Second)))
	})

	t.Run("token issued after the change", func(t *testing.T) {
		changed := now.Add(-time.Hour)
		user := &accounts.User{PasswordChangedAt: &changed}
		assert.False(t, user.PasswordChangedAfter(now))
	})

	t.Run("token minted in the same second as the skewed timestamp", func(t *testing.T) {
		// the store writes password_changed_at = now - 1s, so a token
		// issued right at the change stays valid
		changed := now.Add(-time.Second)
		user := &accounts.User{PasswordChangedAt: &changed}
		assert.False(t, user.PasswordChangedAfter(now))
	})
}

func TestSignupRequestValidate(t *testing.T) {
	valid := accounts.SignupRequest{
		FullName:        "Ada Lovelace",
		Username:        "ada_l",
		Email:           "ada@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	}

	t.Run("valid payload", func(t *testing.T) {
		assert.Nil(t, valid.Validate())
	})

	tests := []struct {
		name   string
		mutate func(r *accounts.SignupRequest)
	}{
		{"uppercase username", func(r *accounts.SignupRequest) { r.Username = "AB!" }},
		{"short username", func(r *accounts.SignupRequest) { r.Username = "ab" }},
		{"missing email", func(r *accounts.SignupRequest) { r.Email = "" }},
		{"bad email", func(r *accounts.SignupRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *accounts.SignupRequest) { r.Password, r.PasswordConfirm = "short", "short" }},
		{"confirmation mismatch", func(r *accounts.SignupRequest) { r.PasswordConfirm = "different123" }},
		{"missing full name", func(r *accounts.SignupRequest) { r.FullName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid
			tt.mutate(&payload)
			assert.NotNil(t, payload.Validate())
		})
	}
}

func TestUpdateUserRequestFilter(t *testing.T) {
	t.Run("strips role for regular users", func(t *testing.T) {
		payload := accounts.UpdateUserRequest{Username: "ada_l", Role: accounts.RoleAdmin}
		payload.Filter(accounts.RoleUser)
		assert.Empty(t, payload.Role)
	})

	t.Run("keeps role for admins", func(t *testing.T) {
		payload := accounts.UpdateUserRequest{Username: "ada_l", Role: accounts.RoleAdmin}
		payload.Filter(accounts.RoleAdmin)
		assert.Equal(t, accounts.RoleAdmin, payload.Role)
	})
}

func TestUpdateUserRequestValidate(t *testing.T) {
	t.Run("empty payload is a valid partial update", func(t *testing.T) {
		payload := accounts.UpdateUserRequest{}
		assert.Nil(t, payload.Validate())
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		payload := accounts.UpdateUserRequest{Role: "superuser"}
		assert.NotNil(t, payload.Validate())
	})

	t.Run("rejects bad username format", func(t *testing.T) {
		payload := accounts.UpdateUserRequest{Username: "Ada Lovelace"}
		assert.NotNil(t, payload.Validate())
	})
}
