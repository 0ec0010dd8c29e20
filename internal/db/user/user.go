package user

import (
	"context"
	"errors"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxUserRepository struct {
	db DBTX
}

func NewPgxRepository(db DBTX) *PgxUserRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxUserRepository{db: db}
}

const getByEmail = `
SELECT email, username, password_hash, updated_at
FROM account
WHERE email = $1
`

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	var row dbAccount
	err = r.db.QueryRow(ctx, getByEmail, string(email)).Scan(
		&row.Email,
		&row.Username,
		&row.PasswordHash,
		&row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, user.ErrUserDoesNotExist
	}
	if err != nil {
		return a, err
	}
	a = decodeDBAccount(row)
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}

// A single keyed UPDATE, so concurrent writers never overwrite each other's rows.
const setPassword = `
UPDATE account
SET password_hash = $2, updated_at = $3
WHERE email = $1
`

func (r *PgxUserRepository) SetPassword(
	ctx context.Context,
	email c.Email,
	password user.PasswordHash,
	at time.Time,
) error {
	tag, err := r.db.Exec(ctx, setPassword, string(email), string(password), encodeTime(at))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

const createAccount = `
INSERT INTO account (email, username, password_hash, updated_at)
VALUES ($1, $2, $3, $4)
`

// Create inserts a new account. Used to seed the table.
func (r *PgxUserRepository) Create(ctx context.Context, a user.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	updatedAt := pgtype.Timestamptz{Status: pgtype.Null}
	if a.UpdatedAt.IsPresent {
		updatedAt = encodeTime(a.UpdatedAt.Value)
	}
	_, err := r.db.Exec(
		ctx,
		createAccount,
		string(a.Email),
		string(a.Username),
		string(a.PasswordHash),
		updatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE {
		return e.NewInvalidStateError("account %s already exists", a.Email)
	}
	return err
}

type dbAccount struct {
	Email        string
	Username     string
	PasswordHash string
	UpdatedAt    pgtype.Timestamptz
}

func encodeTime(at time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: at.UTC(), Status: pgtype.Present}
}

func decodeDBAccount(row dbAccount) user.Account {
	return user.Account{
		Email:        c.Email(row.Email),
		Username:     user.Username(row.Username),
		PasswordHash: user.PasswordHash(row.PasswordHash),
		UpdatedAt:    c.NewOptional(row.UpdatedAt.Time.UTC(), row.UpdatedAt.Status == pgtype.Present),
	}
}
