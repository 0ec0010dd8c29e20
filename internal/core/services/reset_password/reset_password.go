package resetpassword

import (
	"context"
	"errors"
	"fmt"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/core/services"
	"time"
)

type Input struct {
	Token       user.PasswordResetToken
	NewPassword user.RawPassword
}

type Result struct {
	Username user.Username
	// IsExternallyManaged is set when the account lives outside the store,
	// so nothing was written.
	IsExternallyManaged bool
}

type service struct {
	log              logging.Logger
	userRepository   user.UserRepository
	passwordResetter user.PasswordResetter
	passwordHasher   user.PasswordHasher
	now              func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordResetter user.PasswordResetter,
	passwordHasher user.PasswordHasher,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordResetter == nil {
		panic(e.NewNilArgumentError("passwordResetter"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:              log,
		userRepository:   userRepository,
		passwordResetter: passwordResetter,
		passwordHasher:   passwordHasher,
		now:              now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if err := input.NewPassword.Validate(); err != nil {
		return result, err
	}

	claims, err := s.passwordResetter.ValidateToken(input.Token)
	if err != nil {
		if !user.IsPasswordResetTokenError(err) {
			err = fmt.Errorf("%w: %w", user.ErrInvalidPasswordResetToken, err)
		}
		s.log.Info(ctx, "Password reset token rejected.", logging.Entry("reason", err))
		return result, err
	}

	// Hash before the store is consulted, so the response time does not
	// depend on whether the account is in the store.
	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		if !errors.Is(err, user.ErrHashingFailure) {
			err = fmt.Errorf("%w: %w", user.ErrHashingFailure, err)
		}
		logging.Error(ctx, s.log, "Could not hash new password.", err, logging.Entry("email", claims.Email))
		return result, err
	}

	err = s.userRepository.SetPassword(ctx, claims.Email, newPasswordHash, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(
			ctx,
			"Account is not in the store, password reset is a no-op.",
			logging.Entry("email", claims.Email),
		)
		return Result{Username: claims.Username, IsExternallyManaged: true}, nil
	}
	if err != nil {
		if !errors.Is(err, user.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", user.ErrStoreUnavailable, err)
		}
		logging.Error(ctx, s.log, "Could not update user password.", err, logging.Entry("email", claims.Email))
		return result, err
	}

	s.log.Info(
		ctx,
		"New password has been successfully set.",
		logging.Entry("email", claims.Email),
	)
	return Result{Username: claims.Username}, nil
}
