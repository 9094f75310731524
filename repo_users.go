package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// sensitiveColumns are excluded from every read unless a criteria opts in
var sensitiveColumns = []string{"password_hash", "user_role", "email", "password_changed_at"}

// SelectPassword loads the password hash, keeping the other hidden columns
// hidden. Used by login and the password change flow.
func SelectPassword(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("user_role", "email", "password_changed_at")
}

// SelectAuthColumns loads role and password_changed_at for the auth
// middleware, keeping the hash and email hidden.
func SelectAuthColumns(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("password_hash", "email")
}

// SelectProfile loads email and role for admin-facing responses, keeping
// the hash and change timestamp hidden.
func SelectProfile(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("password_hash", "password_changed_at")
}

var updateUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"password_changed_at" = ?,
	"updated_at" = ?
WHERE (
	"usr"."id" = ?
) RETURNING *;`

// Users is the store for user records
type Users interface {
	Create(ctx context.Context, record *User) (*User, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the bun-backed user store
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, a.db, record)
	if err != nil {
		return nil, translateStoreError(err)
	}

	return created, nil
}

func (a *users) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, goerrors.New(fmt.Sprintf("Invalid id: %s.", id), goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	record := &User{}
	q := a.db.NewSelect().Model(record).Where("?TableAlias.id = ?", uid)
	applyVisibility(q, criteria)

	if err := q.Limit(1).Scan(ctx); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, translateStoreError(err)
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record).Where("?TableAlias.email = ?", strings.TrimSpace(email))
	applyVisibility(q, criteria)

	if err := q.Limit(1).Scan(ctx); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, translateStoreError(err)
	}

	return record, nil
}

func (a *users) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*User, error) {
	records := []*User{}
	q := a.db.NewSelect().Model(&records).Order("created_at ASC")
	applyVisibility(q, criteria)

	if err := q.Scan(ctx); err != nil {
		return nil, translateStoreError(err)
	}

	return records, nil
}

// Update applies the non-zero fields of record to the stored row and
// returns the admin-facing view of the result.
func (a *users) Update(ctx context.Context, record *User) (*User, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := a.db.NewUpdate().
		Model(record).
		OmitZero().
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, translateStoreError(err)
	}
	if rows == 0 {
		return nil, ErrUserNotFound
	}

	return a.GetByID(ctx, record.ID.String(), SelectProfile)
}

// UpdatePassword swaps the hash and stamps password_changed_at in a single
// statement. The timestamp is skewed one second into the past so a token
// minted alongside the change is not rejected by the issued-at comparison.
func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	now := time.Now()
	changedAt := now.Add(-time.Second)

	res, err := a.Repository.RawTx(ctx, a.db, updateUserPasswordSQL, passwordHash, changedAt, now, id.String())
	if err != nil {
		return translateStoreError(err)
	}

	if len(res) == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return translateStoreError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return translateStoreError(err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func applyVisibility(q *bun.SelectQuery, criteria []repository.SelectCriteria) {
	if len(criteria) == 0 {
		q.ExcludeColumn(sensitiveColumns...)
		return
	}
	for _, c := range criteria {
		q.Apply(c)
	}
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}

// translateStoreError maps driver failures onto the client-facing taxonomy:
// unique constraint violations become bad-request duplicates, everything
// else is internal.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		field := "value"
		switch {
		case strings.Contains(msg, "email"):
			field = "email"
		case strings.Contains(msg, "username"):
			field = "username"
		}
		return goerrors.New(fmt.Sprintf("Duplicate field value: %s. Please use another value.", field), goerrors.CategoryConflict).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeDuplicateField)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "user store query failed")
}
