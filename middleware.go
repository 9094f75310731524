package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// currentUserKey is the fiber locals key the Protect middleware stores the
// loaded user under
const currentUserKey = "current_user"

// CurrentUser returns the user loaded by the Protect middleware
func CurrentUser(c *fiber.Ctx) (*User, error) {
	user, ok := c.Locals(currentUserKey).(*User)
	if !ok || user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

// Protect authenticates the request: it extracts the bearer token, verifies
// it, loads the user with the auth columns, and rejects tokens issued
// before the last password change. The loaded user is stored in the request
// locals for handlers and role gates.
func Protect(tokens TokenService, users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := tokenFromHeader(c.Get(fiber.HeaderAuthorization), "Bearer")
		if err != nil {
			return ErrNotLoggedIn
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return err
		}

		user, err := users.GetByID(c.Context(), claims.UserID(), SelectAuthColumns)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserGone
			}
			return err
		}

		if user.PasswordChangedAfter(claims.IssuedAtTime()) {
			return ErrPasswordChanged
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// RestrictTo gates a route to the given roles. It must run after Protect.
func RestrictTo(roles ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return ErrPermissionDenied
	}
}

// tokenFromHeader extracts the raw token from an Authorization header value
// using a case-insensitive scheme match
func tokenFromHeader(header, authScheme string) (string, error) {
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}
	return "", ErrNotLoggedIn
}
