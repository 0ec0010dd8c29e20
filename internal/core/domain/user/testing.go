package user

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	c "resetkit/internal/core/domain/common"
	"sync"
	"time"
)

type FakePasswordHasher struct {
	ReturnError bool
	lock        sync.Mutex
	calls       int
}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	h.lock.Lock()
	h.calls++
	h.lock.Unlock()
	if h.ReturnError {
		return PasswordHash(""), fmt.Errorf("%w: entropy source unavailable", ErrHashingFailure)
	}
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	hash2 := md5.New()
	io.WriteString(hash2, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash2.Sum(nil))) == hash
}

func (h *FakePasswordHasher) Calls() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.calls
}

type FakeUserRepository struct {
	Accounts    map[c.Email]Account
	ReturnError error
	lock        sync.Mutex
}

func NewFakeUserRepository(accounts ...Account) *FakeUserRepository {
	r := &FakeUserRepository{Accounts: make(map[c.Email]Account, len(accounts))}
	for _, a := range accounts {
		r.Accounts[a.Email] = a
	}
	return r
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email c.Email) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ReturnError != nil {
		return a, r.ReturnError
	}
	a, ok := r.Accounts[email]
	if !ok {
		return a, ErrUserDoesNotExist
	}
	return a, nil
}

func (r *FakeUserRepository) SetPassword(ctx context.Context, email c.Email, password PasswordHash, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ReturnError != nil {
		return r.ReturnError
	}
	a, ok := r.Accounts[email]
	if !ok {
		return ErrUserDoesNotExist
	}
	a.PasswordHash = password
	a.UpdatedAt = c.NewOptional(at, true)
	r.Accounts[email] = a
	return nil
}

// Snapshot returns a copy of the stored accounts.
func (r *FakeUserRepository) Snapshot() map[c.Email]Account {
	r.lock.Lock()
	defer r.lock.Unlock()
	accounts := make(map[c.Email]Account, len(r.Accounts))
	for k, v := range r.Accounts {
		accounts[k] = v
	}
	return accounts
}

type FakeAccountResolver struct {
	Accounts    map[c.Email]Account
	ReturnError error
}

func NewFakeAccountResolver(accounts ...Account) *FakeAccountResolver {
	r := &FakeAccountResolver{Accounts: make(map[c.Email]Account, len(accounts))}
	for _, a := range accounts {
		r.Accounts[a.Email] = a
	}
	return r
}

func (r *FakeAccountResolver) ResolveByEmail(ctx context.Context, email c.Email) (a Account, err error) {
	if r.ReturnError != nil {
		return a, r.ReturnError
	}
	a, ok := r.Accounts[email]
	if !ok {
		return a, ErrUserDoesNotExist
	}
	return a, nil
}

type FakePasswordResetter struct {
	Token         PasswordResetToken
	Claims        PasswordResetClaims
	GenerateError error
	ValidateError error
	Generated     []Account
	lock          sync.Mutex
}

func NewFakePasswordResetter(token string, claims PasswordResetClaims) *FakePasswordResetter {
	return &FakePasswordResetter{Token: PasswordResetToken(token), Claims: claims}
}

func (r *FakePasswordResetter) GenerateToken(account Account) (PasswordResetToken, error) {
	if r.GenerateError != nil {
		return "", r.GenerateError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Generated = append(r.Generated, account)
	return r.Token, nil
}

func (r *FakePasswordResetter) ValidateToken(token PasswordResetToken) (claims PasswordResetClaims, err error) {
	if r.ValidateError != nil {
		return claims, r.ValidateError
	}
	if token != r.Token {
		return claims, ErrInvalidPasswordResetToken
	}
	return r.Claims, nil
}

type FakePasswordResetTokenSender struct {
	Sent        []PasswordResetToken
	SentTo      []Account
	ReturnError bool
	lock        sync.Mutex
}

func NewFakePasswordResetTokenSender() *FakePasswordResetTokenSender {
	return &FakePasswordResetTokenSender{}
}

func (s *FakePasswordResetTokenSender) SendPasswordResetToken(
	ctx context.Context,
	account Account,
	token PasswordResetToken,
) error {
	if s.ReturnError {
		return errors.New("could not send password reset token")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, token)
	s.SentTo = append(s.SentTo, account)
	return nil
}

func (s *FakePasswordResetTokenSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}
