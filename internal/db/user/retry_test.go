package user

import (
	"context"
	"errors"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("connection reset by peer")

// flakyRepository fails the first failures calls with err.
type flakyRepository struct {
	*user.FakeUserRepository
	err      error
	failures int
	lock     sync.Mutex
	calls    int
}

func (r *flakyRepository) fail() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return r.err
	}
	return nil
}

func (r *flakyRepository) GetByEmail(ctx context.Context, email c.Email) (user.Account, error) {
	if err := r.fail(); err != nil {
		return user.Account{}, err
	}
	return r.FakeUserRepository.GetByEmail(ctx, email)
}

func (r *flakyRepository) SetPassword(ctx context.Context, email c.Email, password user.PasswordHash, at time.Time) error {
	if err := r.fail(); err != nil {
		return err
	}
	return r.FakeUserRepository.SetPassword(ctx, email, password, at)
}

func newFlaky(err error, failures int) *flakyRepository {
	return &flakyRepository{
		FakeUserRepository: user.NewFakeUserRepository(user.Account{
			Email:        EMAIL,
			Username:     USERNAME,
			PasswordHash: PASSWORD_HASH,
		}),
		err:      err,
		failures: failures,
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	flaky := newFlaky(errTransient, 2)
	log := logging.NewFakeLogger()
	repo := NewRetryingRepository(flaky, log, 3, time.Millisecond)

	err := repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW)

	require.NoError(t, err)
	require.Equal(t, 3, flaky.calls)
	require.Equal(t, 2, log.CountAt(logging.WARNING))
	require.Equal(t, user.PasswordHash("new-hash"), flaky.Snapshot()[EMAIL].PasswordHash)
}

func TestRetryEscalatesWhenExhausted(t *testing.T) {
	flaky := newFlaky(errTransient, 100)
	repo := NewRetryingRepository(flaky, logging.NewFakeLogger(), 3, time.Millisecond)

	err := repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW)

	require.ErrorIs(t, err, user.ErrStoreUnavailable)
	require.ErrorIs(t, err, errTransient)
	require.Equal(t, 4, flaky.calls)
	require.Equal(t, user.PasswordHash(PASSWORD_HASH), flaky.Snapshot()[EMAIL].PasswordHash)
}

func TestRetryGetByEmail(t *testing.T) {
	flaky := newFlaky(errTransient, 1)
	repo := NewRetryingRepository(flaky, logging.NewFakeLogger(), 3, time.Millisecond)

	a, err := repo.GetByEmail(context.Background(), EMAIL)

	require.NoError(t, err)
	require.Equal(t, user.Username(USERNAME), a.Username)
	require.Equal(t, 2, flaky.calls)
}

func TestNoRetryForPermanentErrors(t *testing.T) {
	cases := []struct {
		id       string
		err      error
		expected error
	}{
		{id: "not-found", err: user.ErrUserDoesNotExist, expected: user.ErrUserDoesNotExist},
		{id: "canceled", err: context.Canceled, expected: context.Canceled},
		{id: "corrupt", err: e.NewInvalidStateError("corrupt"), expected: user.ErrStoreUnavailable},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			flaky := newFlaky(testcase.err, 100)
			repo := NewRetryingRepository(flaky, logging.NewFakeLogger(), 3, time.Millisecond)

			err := repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW)

			require.ErrorIs(t, err, testcase.expected)
			require.Equal(t, 1, flaky.calls)
		})
	}
}

func TestMissingAccountIsNotRetried(t *testing.T) {
	flaky := newFlaky(nil, 0)
	repo := NewRetryingRepository(flaky, logging.NewFakeLogger(), 3, time.Millisecond)

	err := repo.SetPassword(context.Background(), "x@b.com", "new-hash", NOW)

	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
	require.False(t, errors.Is(err, user.ErrStoreUnavailable))
	require.Equal(t, 1, flaky.calls)
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	flaky := newFlaky(errTransient, 100)
	repo := NewRetryingRepository(flaky, logging.NewFakeLogger(), 100, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := repo.SetPassword(ctx, EMAIL, "new-hash", NOW)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, flaky.calls)
}
