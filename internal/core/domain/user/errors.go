package user

import (
	"errors"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrUserDoesNotExist = errors.New("user does not exist")
)

var (
	ErrInvalidPasswordResetToken      = errors.New("invalid password reset token")
	ErrPasswordResetTokenExpired      = errors.New("password reset token expired")
	ErrWrongPasswordResetTokenPurpose = errors.New("token is not a password reset token")
)

var (
	ErrStoreUnavailable = errors.New("user store is unavailable")
	ErrHashingFailure   = errors.New("could not hash password")
)

// IsValidationError reports whether err was caused by caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrPasswordTooLong)
}

// IsPasswordResetTokenError reports whether err rejects a password reset token.
func IsPasswordResetTokenError(err error) bool {
	return errors.Is(err, ErrInvalidPasswordResetToken) ||
		errors.Is(err, ErrPasswordResetTokenExpired) ||
		errors.Is(err, ErrWrongPasswordResetTokenPurpose)
}
