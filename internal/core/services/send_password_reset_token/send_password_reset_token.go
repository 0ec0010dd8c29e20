package sendpasswordresettoken

import (
	"context"
	"errors"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/core/services"
)

type Input struct {
	Email c.Email
}

// Result is the same whether the email belongs to an account or not.
type Result struct{}

type service struct {
	log              logging.Logger
	accountResolver  user.AccountResolver
	passwordResetter user.PasswordResetter
	sender           user.PasswordResetTokenSender
}

func New(
	log logging.Logger,
	accountResolver user.AccountResolver,
	passwordResetter user.PasswordResetter,
	sender user.PasswordResetTokenSender,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if accountResolver == nil {
		panic(e.NewNilArgumentError("accountResolver"))
	}
	if passwordResetter == nil {
		panic(e.NewNilArgumentError("passwordResetter"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &service{
		log:              log,
		accountResolver:  accountResolver,
		passwordResetter: passwordResetter,
		sender:           sender,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if !input.Email.IsValid() {
		return result, user.ErrInvalidEmail
	}

	account, err := s.accountResolver.ResolveByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(ctx, "Password reset requested for unknown email, skip sending token.")
		return result, nil
	}
	if err != nil {
		logging.Error(ctx, s.log, "Could not resolve account for password reset.", err)
		return result, err
	}

	token, err := s.passwordResetter.GenerateToken(account)
	if err != nil {
		logging.Error(ctx, s.log, "Could not generate password reset token.", err, logging.Entry("email", account.Email))
		return result, nil
	}

	err = s.sender.SendPasswordResetToken(ctx, account, token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, "Could not send password reset token.", err, logging.Entry("email", account.Email))
		return result, nil
	}

	s.log.Info(
		ctx,
		"Password reset token has been sent.",
		logging.Entry("email", account.Email),
		logging.Entry("username", account.Username),
	)
	return result, nil
}
