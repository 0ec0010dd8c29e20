package passwordresettoken

import (
	"context"
	"errors"
	"net/url"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/core/domain/user"
	"resetkit/internal/rabbitmq/schema"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange    string
	routingKey  string
	published   []amqp091.Publishing
	returnError error
}

func (f *fakeChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	if f.returnError != nil {
		return f.returnError
	}
	f.exchange = exchange
	f.routingKey = key
	f.published = append(f.published, msg)
	return nil
}

func baseURL(t *testing.T) url.URL {
	u, err := url.Parse("https://b.com/reset-password.html")
	require.NoError(t, err)
	return *u
}

func TestPublish(t *testing.T) {
	channel := &fakeChannel{}
	log := logging.NewFakeLogger()
	publisher := NewRabbitMQ(log, channel, "password-reset", "token", baseURL(t))

	err := publisher.SendPasswordResetToken(
		context.Background(),
		user.Account{Email: "a@b.com", Username: "eiz"},
		"a.b.c",
	)

	require.NoError(t, err)
	require.Equal(t, "password-reset", channel.exchange)
	require.Equal(t, "token", channel.routingKey)
	require.Len(t, channel.published, 1)
	require.Equal(t, "application/json", channel.published[0].ContentType)
	require.Equal(t, amqp091.Persistent, channel.published[0].DeliveryMode)

	message := schema.PasswordResetToken{}
	require.NoError(t, message.Unmarshal(channel.published[0].Body))
	require.Equal(t, schema.PasswordResetToken{
		RecipientEmail: "a@b.com",
		RecipientName:  "eiz",
		ResetToken:     "a.b.c",
		ResetURL:       "https://b.com/reset-password.html?token=a.b.c",
	}, message)
	require.Equal(t, 1, log.CountAt(logging.INFO))
}

func TestPublishFailure(t *testing.T) {
	channel := &fakeChannel{returnError: errors.New("channel closed")}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), channel, "password-reset", "token", baseURL(t))

	err := publisher.SendPasswordResetToken(context.Background(), user.Account{Email: "a@b.com"}, "a.b.c")

	require.Error(t, err)
}
