package accountresolver

import (
	"context"
	"errors"
	"fmt"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"strings"
)

// Store resolves accounts kept in the user repository.
type Store struct {
	repository user.UserRepository
}

func NewStore(repository user.UserRepository) *Store {
	if repository == nil {
		panic(e.NewNilArgumentError("repository"))
	}
	return &Store{repository: repository}
}

func (r *Store) ResolveByEmail(ctx context.Context, email c.Email) (user.Account, error) {
	return r.repository.GetByEmail(ctx, email)
}

// Static resolves a fixed set of accounts managed outside the store.
// They have no password hash, so a reset of such an account writes nothing.
type Static struct {
	accounts map[c.Email]user.Account
}

func NewStatic(accounts ...user.Account) *Static {
	r := &Static{accounts: make(map[c.Email]user.Account, len(accounts))}
	for _, a := range accounts {
		r.accounts[a.Email] = a
	}
	return r
}

func (r *Static) ResolveByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	a, ok := r.accounts[email]
	if !ok {
		return a, user.ErrUserDoesNotExist
	}
	return a, nil
}

// ParseStatic reads accounts in the "email:username,email:username" form.
func ParseStatic(raw string) ([]user.Account, error) {
	accounts := make([]user.Account, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		email, username, ok := strings.Cut(item, ":")
		if !ok || username == "" {
			return nil, fmt.Errorf("account %q must have the email:username form", item)
		}
		if !c.Email(email).IsValid() {
			return nil, fmt.Errorf("account %q: %w", item, user.ErrInvalidEmail)
		}
		accounts = append(accounts, user.Account{Email: c.Email(email), Username: user.Username(username)})
	}
	return accounts, nil
}

// Chain asks every resolver in order and returns the first account found.
type Chain struct {
	resolvers []user.AccountResolver
}

func NewChain(resolvers ...user.AccountResolver) *Chain {
	for ix, r := range resolvers {
		if r == nil {
			panic(e.NewNilArgumentError(fmt.Sprintf("resolvers[%d]", ix)))
		}
	}
	return &Chain{resolvers: resolvers}
}

func (r *Chain) ResolveByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	for _, resolver := range r.resolvers {
		a, err = resolver.ResolveByEmail(ctx, email)
		if errors.Is(err, user.ErrUserDoesNotExist) {
			continue
		}
		return a, err
	}
	return a, user.ErrUserDoesNotExist
}
