package accountresolver

import (
	"context"
	"resetkit/internal/core/domain/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreResolver(t *testing.T) {
	repo := user.NewFakeUserRepository(user.Account{Email: "a@b.com", Username: "eiz", PasswordHash: "hash"})
	r := NewStore(repo)

	a, err := r.ResolveByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.Username("eiz"), a.Username)

	_, err = r.ResolveByEmail(context.Background(), "x@b.com")
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}

func TestStaticResolver(t *testing.T) {
	r := NewStatic(user.Account{Email: "lab@b.com", Username: "eiz"})

	a, err := r.ResolveByEmail(context.Background(), "lab@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.Username("eiz"), a.Username)
	assert.Empty(t, a.PasswordHash)

	_, err = r.ResolveByEmail(context.Background(), "LAB@b.com")
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}

func TestChainPrefersFirstResolver(t *testing.T) {
	store := user.NewFakeAccountResolver(user.Account{Email: "a@b.com", Username: "from-store"})
	static := NewStatic(
		user.Account{Email: "a@b.com", Username: "from-static"},
		user.Account{Email: "lab@b.com", Username: "eiz"},
	)
	r := NewChain(store, static)

	a, err := r.ResolveByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.Username("from-store"), a.Username)

	a, err = r.ResolveByEmail(context.Background(), "lab@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.Username("eiz"), a.Username)

	_, err = r.ResolveByEmail(context.Background(), "nobody@b.com")
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}

func TestChainStopsOnStoreError(t *testing.T) {
	store := user.NewFakeAccountResolver()
	store.ReturnError = user.ErrStoreUnavailable
	r := NewChain(store, NewStatic(user.Account{Email: "lab@b.com", Username: "eiz"}))

	_, err := r.ResolveByEmail(context.Background(), "lab@b.com")
	require.ErrorIs(t, err, user.ErrStoreUnavailable)
}

func TestEmptyChain(t *testing.T) {
	_, err := NewChain().ResolveByEmail(context.Background(), "a@b.com")
	require.ErrorIs(t, err, user.ErrUserDoesNotExist)
}

func TestParseStatic(t *testing.T) {
	accounts, err := ParseStatic(" lab@b.com:eiz , a@b.com:Alice,")
	require.NoError(t, err)
	require.Equal(t, []user.Account{
		{Email: "lab@b.com", Username: "eiz"},
		{Email: "a@b.com", Username: "Alice"},
	}, accounts)

	accounts, err = ParseStatic("")
	require.NoError(t, err)
	require.Empty(t, accounts)

	for _, raw := range []string{"lab@b.com", "lab@b.com:", "not-an-email:eiz"} {
		_, err := ParseStatic(raw)
		require.Error(t, err, raw)
	}
}
