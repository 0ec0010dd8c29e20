package passwordresetter

import (
	"fmt"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Purpose  string `json:"type"`
	jwt.RegisteredClaims
}

// JWT issues HS256 signed tokens carrying a snapshot of the account.
type JWT struct {
	secretKey     []byte
	validDuration time.Duration
	now           func() time.Time
	parser        *jwt.Parser
}

func NewJWT(secretKey string, validDuration time.Duration, now func() time.Time) *JWT {
	if secretKey == "" {
		panic(e.NewInvalidArgumentError("secretKey", "must not be empty"))
	}
	if validDuration <= 0 {
		panic(e.NewInvalidArgumentError("validDuration", "must be positive"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &JWT{
		secretKey:     []byte(secretKey),
		validDuration: validDuration,
		now:           now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (j *JWT) GenerateToken(account user.Account) (user.PasswordResetToken, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:    string(account.Email),
		Username: string(account.Username),
		Purpose:  user.PasswordResetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validDuration)),
		},
	})
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("could not sign password reset token: %w", err)
	}
	return user.PasswordResetToken(signed), nil
}

func (j *JWT) ValidateToken(token user.PasswordResetToken) (result user.PasswordResetClaims, err error) {
	if err := j.verifySignature(string(token)); err != nil {
		return result, err
	}

	parsed := claims{}
	if _, err := j.parser.ParseWithClaims(string(token), &parsed, j.key); err != nil {
		return result, fmt.Errorf("%w: %w", user.ErrInvalidPasswordResetToken, err)
	}

	if parsed.Purpose != user.PasswordResetPurpose {
		return result, user.ErrWrongPasswordResetTokenPurpose
	}
	if parsed.ExpiresAt == nil || !j.now().Before(parsed.ExpiresAt.Time) {
		return result, user.ErrPasswordResetTokenExpired
	}
	if !c.Email(parsed.Email).IsValid() {
		return result, fmt.Errorf("%w: email claim is not valid", user.ErrInvalidPasswordResetToken)
	}

	result = user.PasswordResetClaims{
		Email:     c.Email(parsed.Email),
		Username:  user.Username(parsed.Username),
		Purpose:   parsed.Purpose,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		result.IssuedAt = parsed.IssuedAt.Time
	}
	return result, nil
}

// verifySignature checks the MAC over the raw header and payload segments,
// nothing of the token is decoded before it passes.
func (j *JWT) verifySignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: token must have 3 segments", user.ErrInvalidPasswordResetToken)
	}
	signature, err := j.parser.DecodeSegment(parts[2])
	if err != nil {
		return fmt.Errorf("%w: %w", user.ErrInvalidPasswordResetToken, err)
	}
	signingString := parts[0] + "." + parts[1]
	if err := jwt.SigningMethodHS256.Verify(signingString, signature, j.secretKey); err != nil {
		return fmt.Errorf("%w: %w", user.ErrInvalidPasswordResetToken, err)
	}
	return nil
}

func (j *JWT) key(token *jwt.Token) (interface{}, error) {
	return j.secretKey, nil
}
