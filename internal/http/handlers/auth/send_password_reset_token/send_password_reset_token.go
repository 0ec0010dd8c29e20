package sendpasswordresettoken

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/core/services"
	service "resetkit/internal/core/services/send_password_reset_token"
	"resetkit/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

const AcceptedMessage = "If the email is registered, password reset instructions have been sent."

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(service services.Service[service.Input, service.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email string `json:"email"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.Email,
			validation.Required,
			validation.Length(0, 512),
			validation.By(validEmail),
		),
	)
}

func validEmail(value interface{}) error {
	email, _ := value.(string)
	if !c.Email(email).IsValid() {
		return user.ErrInvalidEmail
	}
	return nil
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
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

	_, err := h.service.Run(r.Context(), service.Input{Email: c.Email(input.Email)})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidEmail):
			response.RenderError(rw, err.Error(), http.StatusBadRequest)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	response.Render(rw, Result{Success: true, Message: AcceptedMessage}, http.StatusOK)
}
