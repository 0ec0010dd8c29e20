package services

import (
	"resetkit/internal/app/deps"
	"resetkit/internal/core/services"
	resetpassword "resetkit/internal/core/services/reset_password"
	sendpasswordresettoken "resetkit/internal/core/services/send_password_reset_token"
)

type Services struct {
	SendPasswordResetToken services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
	ResetPassword          services.Service[resetpassword.Input, resetpassword.Result]
}

func InitServices(deps *deps.Deps) *Services {
	return &Services{
		SendPasswordResetToken: sendpasswordresettoken.New(
			deps.Logger,
			deps.AccountResolver,
			deps.PasswordResetter,
			deps.PasswordResetTokenSender,
		),
		ResetPassword: resetpassword.New(
			deps.Logger,
			deps.UserRepository,
			deps.PasswordResetter,
			deps.PasswordHasher,
			deps.Now,
		),
	}
}
