package resetpassword

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/core/services"
	resetpassword "resetkit/internal/core/services/reset_password"
	"resetkit/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

const SuccessMessage = "Password has been reset. Log in with the new password."

type Handler struct {
	service services.Service[resetpassword.Input, resetpassword.Result]
}

func New(
	service services.Service[resetpassword.Input, resetpassword.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

// Password length is checked by the service, so every weak password gets
// the same error.
func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Required, validation.Length(0, 4096)),
	)
}

type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		resetpassword.Input{
			Token:       user.PasswordResetToken(input.Token),
			NewPassword: user.RawPassword(input.Password),
		},
	)
	switch {
	case err == nil:
	case user.IsValidationError(err):
		response.RenderError(rw, validationMessage(err), http.StatusBadRequest)
		return
	case errors.Is(err, user.ErrPasswordResetTokenExpired):
		response.RenderUnauthorized(rw, "token expired")
		return
	case errors.Is(err, user.ErrWrongPasswordResetTokenPurpose):
		response.RenderUnauthorized(rw, "token is not a password reset token")
		return
	case errors.Is(err, user.ErrInvalidPasswordResetToken):
		response.RenderUnauthorized(rw, "invalid token")
		return
	default:
		response.RenderInternalError(rw)
		return
	}

	response.Render(
		rw,
		Result{Success: true, Message: SuccessMessage, Username: string(result.Username)},
		http.StatusOK,
	)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, user.ErrWeakPassword):
		return user.ErrWeakPassword.Error()
	case errors.Is(err, user.ErrPasswordTooLong):
		return user.ErrPasswordTooLong.Error()
	default:
		return user.ErrInvalidEmail.Error()
	}
}
