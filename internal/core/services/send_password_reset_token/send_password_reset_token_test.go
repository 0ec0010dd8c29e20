package sendpasswordresettoken

import (
	"context"
	"errors"
	c "resetkit/internal/core/domain/common"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/core/services"
	"testing"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL    = "a@b.com"
	USERNAME = "eiz"
	TOKEN    = "test-password-reset-token"
)

type testSuite struct {
	suite.Suite
	Logger   *logging.FakeLogger
	Resolver *user.FakeAccountResolver
	Resetter *user.FakePasswordResetter
	Sender   *user.FakePasswordResetTokenSender
	Service  services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.Resolver = user.NewFakeAccountResolver(user.Account{
		Email:        EMAIL,
		Username:     USERNAME,
		PasswordHash: "test-hash",
	})
	suite.Resetter = user.NewFakePasswordResetter(TOKEN, user.PasswordResetClaims{})
	suite.Sender = user.NewFakePasswordResetTokenSender()
	suite.Service = New(suite.Logger, suite.Resolver, suite.Resetter, suite.Sender)
}

func TestSendPasswordResetTokenService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestTokenSentToExistingAccount() {
	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := s.Require()
	assert.NoError(err)
	assert.Equal(Result{}, result)
	assert.Equal(1, s.Sender.SentCount())
	assert.Equal(user.PasswordResetToken(TOKEN), s.Sender.Sent[0])
	assert.Equal(user.Username(USERNAME), s.Sender.SentTo[0].Username)
	assert.Len(s.Resetter.Generated, 1)
}

func (s *testSuite) TestExistingAndAbsentEmailsLookTheSame() {
	existing, errExisting := s.Service.Run(context.Background(), Input{Email: EMAIL})
	absent, errAbsent := s.Service.Run(context.Background(), Input{Email: "absent@b.com"})

	assert := s.Require()
	assert.NoError(errExisting)
	assert.NoError(errAbsent)
	assert.Equal(existing, absent)
}

func (s *testSuite) TestNoTokenIssuedForAbsentEmail() {
	_, err := s.Service.Run(context.Background(), Input{Email: "absent@b.com"})

	assert := s.Require()
	assert.NoError(err)
	assert.Empty(s.Resetter.Generated)
	assert.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestEmailIsCaseSensitive() {
	_, err := s.Service.Run(context.Background(), Input{Email: "A@b.com"})

	assert := s.Require()
	assert.NoError(err)
	assert.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestInvalidEmail() {
	for _, email := range []string{"", "no-at-sign", "@b.com", "a@"} {
		s.Run(email, func() {
			_, err := s.Service.Run(context.Background(), Input{Email: c.Email(email)})

			s.Require().ErrorIs(err, user.ErrInvalidEmail)
			s.Require().Equal(0, s.Sender.SentCount())
		})
	}
}

func (s *testSuite) TestDeliveryFailureIsNotRevealed() {
	s.Sender.ReturnError = true

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := s.Require()
	assert.NoError(err)
	assert.Equal(Result{}, result)
	assert.Equal(1, s.Logger.CountAt(logging.ERROR))
}

func (s *testSuite) TestTokenGenerationFailureIsNotRevealed() {
	s.Resetter.GenerateError = errors.New("could not sign")

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := s.Require()
	assert.NoError(err)
	assert.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestResolverFailure() {
	s.Resolver.ReturnError = user.ErrStoreUnavailable

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Require().ErrorIs(err, user.ErrStoreUnavailable)
}

func (s *testSuite) TestCanceledContext() {
	s.Resolver.ReturnError = context.Canceled

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Require().ErrorIs(err, context.Canceled)
}
