package user

import (
	"context"
	c "resetkit/internal/core/domain/common"
	"time"
)

const (
	PasswordResetPurpose       = "password-reset"
	PasswordResetValidDuration = time.Hour
)

type PasswordResetToken string

func (t PasswordResetToken) String() string {
	return "***"
}

// PasswordResetClaims is a snapshot of the account taken when the token was issued.
type PasswordResetClaims struct {
	Email     c.Email
	Username  Username
	Purpose   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type PasswordResetter interface {
	GenerateToken(account Account) (PasswordResetToken, error)
	// ValidateToken fails with ErrInvalidPasswordResetToken, ErrWrongPasswordResetTokenPurpose
	// or ErrPasswordResetTokenExpired, checked in that order.
	ValidateToken(token PasswordResetToken) (PasswordResetClaims, error)
}

type PasswordResetTokenSender interface {
	SendPasswordResetToken(ctx context.Context, account Account, token PasswordResetToken) error
}
