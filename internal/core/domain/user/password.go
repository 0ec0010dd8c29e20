package user

import "unicode/utf8"

const (
	MinPasswordLength = 5
	// bcrypt ignores everything after 72 bytes.
	MaxPasswordBytes = 72
)

type PasswordHasher interface {
	HashPassword(password RawPassword) (PasswordHash, error)
	ValidatePassword(password RawPassword, hash PasswordHash) bool
}

func (p RawPassword) Validate() error {
	if utf8.RuneCountInString(string(p)) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(p) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
