// Package accounts implements a minimal user-account service: registration,
// login, JWT issuance and verification, self-service profile and password
// updates, and admin-restricted user CRUD.
//
// The authentication core is stateless: tokens are verified against a shared
// secret and invalidated solely by comparing the token's issued-at timestamp
// with the user's password_changed_at column. Sensitive columns (password
// hash, role, email, password_changed_at) are excluded from store reads
// unless a select criteria opts in, and client responses go through the
// PublicUser projection which cannot carry the hash at all.
package accounts
