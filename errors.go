package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotLoggedIn      = "accounts_not_logged_in"
	TextCodeTokenExpired     = "accounts_token_expired"
	TextCodeTokenMalformed   = "accounts_token_malformed"
	TextCodeUserGone         = "accounts_user_gone"
	TextCodePasswordChanged  = "accounts_password_changed"
	TextCodeBadCredentials   = "accounts_bad_credentials"
	TextCodeWrongPassword    = "accounts_wrong_current_password"
	TextCodeForbidden        = "accounts_forbidden"
	TextCodeUserNotFound     = "accounts_user_not_found"
	TextCodeDuplicateField   = "accounts_duplicate_field"
	TextCodePasswordMismatch = "accounts_password_mismatch"
)

// ErrNoEmptyPassword rejects hashing an empty string
var ErrNoEmptyPassword = goerrors.New("Password must not be empty.", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned for any failed password
// comparison, including malformed stored hashes
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodePasswordMismatch)

// ErrNotLoggedIn is returned when no bearer token is present
var ErrNotLoggedIn = goerrors.New("You are not logged in. Please login to get access.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeNotLoggedIn)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = goerrors.New("Your session has expired. Please log in again to continue.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail signature or format checks
var ErrTokenMalformed = goerrors.New("Invalid token. Please log in again.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUserGone is returned when a valid token references a deleted user
var ErrUserGone = goerrors.New("The user associated with this token no longer exists. Please log in again.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeUserGone)

// ErrPasswordChanged rejects tokens issued before the last password change
var ErrPasswordChanged = goerrors.New("The user recently changed the password. Please log in again.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodePasswordChanged)

// ErrInvalidCredentials is the single login failure message. Unknown email
// and wrong password produce this same value so the response does not leak
// which one occurred.
var ErrInvalidCredentials = goerrors.New("Invalid email or password. Please check your credentials.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeBadCredentials)

// ErrCurrentPasswordWrong is returned by the password change flow
var ErrCurrentPasswordWrong = goerrors.New("Your current password is incorrect. Please provide the correct current password.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeWrongPassword)

// ErrPermissionDenied is returned by role gates
var ErrPermissionDenied = goerrors.New("You do not have permission to perform this action.", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrUserNotFound is returned for reads, updates, and deletes of unknown ids
var ErrUserNotFound = goerrors.New("No user found with that ID.", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode(TextCodeUserNotFound)
