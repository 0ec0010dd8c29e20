package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// PasswordResetURL appends the token as the "token" query parameter of base.
func PasswordResetURL(base url.URL, token user.PasswordResetToken) string {
	query := base.Query()
	query.Set("token", string(token))
	base.RawQuery = query.Encode()
	return base.String()
}

type sesClient interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

type EmailSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                string
	passwordResetTemplate string
	passwordResetBaseUrl  url.URL
}

func NewEmailSender(
	awsConfig aws.Config,
	sender string,
	passwordResetTemplate string,
	passwordResetBaseUrl url.URL,
) *EmailSender {
	return newEmailSender(ses.NewFromConfig(awsConfig), sender, passwordResetTemplate, passwordResetBaseUrl)
}

func newEmailSender(
	client sesClient,
	sender string,
	passwordResetTemplate string,
	passwordResetBaseUrl url.URL,
) *EmailSender {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	return &EmailSender{
		ses:                   client,
		sender:                sender,
		passwordResetTemplate: passwordResetTemplate,
		passwordResetBaseUrl:  passwordResetBaseUrl,
	}
}

func (s *EmailSender) SendPasswordResetToken(ctx context.Context, a user.Account, token user.PasswordResetToken) error {
	if a.Email == "" {
		return errors.New("account email is not defined")
	}

	templateParamsBytes, err := json.Marshal(
		passwordResetTemplateParams{
			Username:         string(a.Username),
			PasswordResetUrl: PasswordResetURL(s.passwordResetBaseUrl, token),
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(a.Email)},
			},
			Template:     &s.passwordResetTemplate,
			TemplateData: &templateParams,
		},
	)
	if err != nil {
		return fmt.Errorf("could not send password reset email: %w", err)
	}
	return nil
}

type passwordResetTemplateParams struct {
	Username         string `json:"username"`
	PasswordResetUrl string `json:"passwordResetUrl"`
}

// LogSender writes the reset link to the log instead of delivering it.
// Only meant for development.
type LogSender struct {
	log                  logging.Logger
	passwordResetBaseUrl url.URL
}

func NewLogSender(log logging.Logger, passwordResetBaseUrl url.URL) *LogSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &LogSender{log: log, passwordResetBaseUrl: passwordResetBaseUrl}
}

func (s *LogSender) SendPasswordResetToken(ctx context.Context, a user.Account, token user.PasswordResetToken) error {
	s.log.Info(
		ctx,
		"Password reset link.",
		logging.Entry("email", a.Email),
		logging.Entry("username", a.Username),
		logging.Entry("passwordResetUrl", PasswordResetURL(s.passwordResetBaseUrl, token)),
	)
	return nil
}
