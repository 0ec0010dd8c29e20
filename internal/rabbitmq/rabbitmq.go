package rabbitmq

import (
	"context"
	"fmt"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection redials the broker when the server closes it.
type Connection struct {
	url  string
	log  logging.Logger
	lock sync.RWMutex
	conn *amqp.Connection
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}
	connection := &Connection{url: url, log: log, conn: conn}
	go connection.watch(conn)
	return connection, nil
}

func (c *Connection) watch(conn *amqp.Connection) {
	for {
		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			c.log.Info(context.Background(), "RabbitMQ connection closed.")
			return
		}
		c.log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)
			next, err := amqp.Dial(c.url)
			if err != nil {
				c.log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
				continue
			}
			c.lock.Lock()
			c.conn = next
			c.lock.Unlock()
			conn = next
			c.log.Info(context.Background(), "RabbitMQ reconnect success.")
			break
		}
	}
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel opens a channel that is reopened whenever the broker closes it.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}
	channel := &Channel{conn: c, ch: ch, log: c.log}
	go channel.watch(ch)
	return channel, nil
}

type Channel struct {
	conn   *Connection
	log    logging.Logger
	lock   sync.RWMutex
	ch     *amqp.Channel
	closed int32
}

func (ch *Channel) watch(current *amqp.Channel) {
	for {
		reason, ok := <-current.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || ch.IsClosed() {
			return
		}
		ch.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)
			next, err := ch.conn.current().Channel()
			if err != nil {
				ch.log.Error(context.Background(), "Channel recreate failed.", logging.Entry("err", err))
				continue
			}
			ch.lock.Lock()
			ch.ch = next
			ch.lock.Unlock()
			current = next
			ch.log.Info(context.Background(), "Channel recreate success.")
			break
		}
	}
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.ch
}

// IsClosed reports whether Close has been called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// DeclareQueue declares a durable direct exchange with one durable queue bound
// to it by routingKey.
func (ch *Channel) DeclareQueue(exchange string, queue string, routingKey string) error {
	current := ch.current()
	if err := current.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("could not declare exchange %s: %w", exchange, err)
	}
	if _, err := current.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("could not declare queue %s: %w", queue, err)
	}
	if err := current.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("could not bind queue %s: %w", queue, err)
	}
	return nil
}
