package user

import (
	c "resetkit/internal/core/domain/common"
	"resetkit/internal/core/domain/user"
	"time"
)

// record is the JSON shape of an account in the file and redis stores.
type record struct {
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func encodeAccount(a user.Account) record {
	r := record{
		Email:        string(a.Email),
		Username:     string(a.Username),
		PasswordHash: string(a.PasswordHash),
	}
	if a.UpdatedAt.IsPresent {
		at := a.UpdatedAt.Value.UTC()
		r.UpdatedAt = &at
	}
	return r
}

func decodeAccount(r record) (user.Account, error) {
	a := user.Account{
		Email:        c.Email(r.Email),
		Username:     user.Username(r.Username),
		PasswordHash: user.PasswordHash(r.PasswordHash),
	}
	if r.UpdatedAt != nil {
		a.UpdatedAt = c.NewOptional(*r.UpdatedAt, true)
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}
