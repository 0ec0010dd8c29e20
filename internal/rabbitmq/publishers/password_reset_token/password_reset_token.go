package passwordresettoken

import (
	"context"
	"fmt"
	"net/url"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/implementations/email"
	"resetkit/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ delivers password reset tokens by publishing them for an
// external mailer.
type RabbitMQ struct {
	log                  logging.Logger
	channel              publisher
	exchange             string
	routingKey           string
	passwordResetBaseUrl url.URL
}

func NewRabbitMQ(
	log logging.Logger,
	channel publisher,
	exchange string,
	routingKey string,
	passwordResetBaseUrl url.URL,
) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &RabbitMQ{
		log:                  log,
		channel:              channel,
		exchange:             exchange,
		routingKey:           routingKey,
		passwordResetBaseUrl: passwordResetBaseUrl,
	}
}

func (s *RabbitMQ) SendPasswordResetToken(ctx context.Context, a user.Account, token user.PasswordResetToken) error {
	message := schema.PasswordResetToken{
		RecipientEmail: string(a.Email),
		RecipientName:  string(a.Username),
		ResetToken:     string(token),
		ResetURL:       email.PasswordResetURL(s.passwordResetBaseUrl, token),
	}
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("could not publish password reset token: %w", err)
	}
	s.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", s.exchange),
		logging.Entry("RK", s.routingKey),
		logging.Entry("email", a.Email),
	)
	return nil
}
