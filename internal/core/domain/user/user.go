package user

import (
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"time"
)

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type Username string

// Account is the persisted identity and credential of one user.
// Accounts resolved outside the store carry no password hash.
type Account struct {
	Email        c.Email
	Username     Username
	PasswordHash PasswordHash
	UpdatedAt    c.Optional[time.Time]
}

func (a *Account) Validate() error {
	if a.Email == "" {
		return e.NewInvalidStateError("email is not set for account %q", a.Username)
	}
	if a.PasswordHash == "" {
		return e.NewInvalidStateError("password hash is not set for account %s", a.Email)
	}
	return nil
}
