package user

import (
	"context"
	c "resetkit/internal/core/domain/common"
	"time"
)

// UserRepository owns the account collection. SetPassword must be atomic with
// respect to every other mutation of the collection.
type UserRepository interface {
	GetByEmail(ctx context.Context, email c.Email) (Account, error)
	SetPassword(ctx context.Context, email c.Email, password PasswordHash, at time.Time) error
}

// AccountResolver finds accounts that may live in the store or elsewhere,
// such as seeded demo accounts. Returns ErrUserDoesNotExist when nobody knows the email.
type AccountResolver interface {
	ResolveByEmail(ctx context.Context, email c.Email) (Account, error)
}
