package user

import (
	"context"
	"errors"
	"fmt"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultRetryCount     = 3
	DefaultRetryBaseDelay = 50 * time.Millisecond
)

// RetryingUserRepository retries transient failures of the wrapped
// repository with exponential backoff. Once the retries are spent it fails
// with ErrStoreUnavailable.
type RetryingUserRepository struct {
	repository user.UserRepository
	log        logging.Logger
	count      uint64
	baseDelay  time.Duration
}

func NewRetryingRepository(
	repository user.UserRepository,
	log logging.Logger,
	count uint64,
	baseDelay time.Duration,
) *RetryingUserRepository {
	if repository == nil {
		panic(e.NewNilArgumentError("repository"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if baseDelay <= 0 {
		panic(e.NewInvalidArgumentError("baseDelay", "must be positive"))
	}
	return &RetryingUserRepository{
		repository: repository,
		log:        log,
		count:      count,
		baseDelay:  baseDelay,
	}
}

func (r *RetryingUserRepository) GetByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	err = r.do(ctx, "GetByEmail", func(ctx context.Context) error {
		a, err = r.repository.GetByEmail(ctx, email)
		return err
	})
	return a, err
}

func (r *RetryingUserRepository) SetPassword(
	ctx context.Context,
	email c.Email,
	password user.PasswordHash,
	at time.Time,
) error {
	return r.do(ctx, "SetPassword", func(ctx context.Context) error {
		return r.repository.SetPassword(ctx, email, password, at)
	})
}

func (r *RetryingUserRepository) do(ctx context.Context, operation string, f func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(r.count, retry.NewExponential(r.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f(ctx)
		if err == nil || isPermanent(err) {
			return err
		}
		r.log.Warning(
			ctx,
			"User store operation failed.",
			logging.Entry("operation", operation),
			logging.Entry("attempt", attempt),
			logging.Entry("err", err),
		)
		return retry.RetryableError(err)
	})
	if err == nil || errors.Is(err, user.ErrUserDoesNotExist) || isContextError(err) {
		return err
	}
	if errors.Is(err, user.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", user.ErrStoreUnavailable, err)
}

// isPermanent reports whether repeating the call cannot change the outcome.
func isPermanent(err error) bool {
	var invalidState *e.InvalidStateError
	return errors.Is(err, user.ErrUserDoesNotExist) ||
		errors.As(err, &invalidState) ||
		isContextError(err)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
