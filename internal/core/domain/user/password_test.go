package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawPasswordValidate(t *testing.T) {
	cases := []struct {
		id       string
		password RawPassword
		err      error
	}{
		{id: "empty", password: "", err: ErrWeakPassword},
		{id: "four", password: "abcd", err: ErrWeakPassword},
		{id: "five", password: "abcde", err: nil},
		{id: "four-runes-more-bytes", password: "ąčęė", err: ErrWeakPassword},
		{id: "five-runes", password: "ąčęėį", err: nil},
		{id: "max", password: RawPassword(strings.Repeat("a", MaxPasswordBytes)), err: nil},
		{id: "too-long", password: RawPassword(strings.Repeat("a", MaxPasswordBytes+1)), err: ErrPasswordTooLong},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			err := testcase.password.Validate()
			if testcase.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, testcase.err)
			require.True(t, IsValidationError(err))
		})
	}
}

func TestSecretsAreMaskedWhenPrinted(t *testing.T) {
	require.Equal(t, "***", RawPassword("secret").String())
	require.Equal(t, "***", PasswordHash("$2a$10$abc").String())
	require.Equal(t, "***", PasswordResetToken("a.b.c").String())
}
