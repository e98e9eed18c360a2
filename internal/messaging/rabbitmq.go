package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

const (
	connectRetries    = 3
	connectRetryDelay = 5 * time.Second
)

// Client wraps a RabbitMQ connection and channel with retrying connect and
// reconnect-on-drop behaviour.
type Client struct {
	url      string
	exchange string

	mu         sync.RWMutex
	connection *amqp.Connection
	channel    *amqp.Channel
	isClosing  bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(url, exchange string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		url:      url,
		exchange: exchange,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for i := 0; i < connectRetries; i++ {
		c.connection, err = amqp.Dial(c.url)
		if err != nil {
			log.Warn().Err(err).Int("attempt", i+1).Int("max", connectRetries).Msg("RabbitMQ connection failed")
			if i < connectRetries-1 {
				time.Sleep(connectRetryDelay)
				continue
			}
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		c.channel, err = c.connection.Channel()
		if err != nil {
			c.connection.Close()
			return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
		}

		err = c.channel.ExchangeDeclare(
			c.exchange, // name
			"topic",    // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			c.channel.Close()
			c.connection.Close()
			return fmt.Errorf("failed to declare exchange: %w", err)
		}

		log.Info().Str("exchange", c.exchange).Msg("Connected to RabbitMQ")

		go c.handleReconnection()
		return nil
	}

	return err
}

func (c *Client) handleReconnection() {
	notifyClose := make(chan *amqp.Error)
	c.connection.NotifyClose(notifyClose)

	if err := <-notifyClose; err != nil && !c.isClosing {
		log.Warn().Err(err).Msg("RabbitMQ connection lost, reconnecting...")
		time.Sleep(2 * time.Second)
		if reconnectErr := c.Connect(); reconnectErr != nil {
			log.Error().Err(reconnectErr).Msg("RabbitMQ reconnect failed")
		}
	}
}

func (c *Client) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connection != nil && !c.connection.IsClosed()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosing {
		return nil
	}
	c.isClosing = true
	c.cancel()

	var closeErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			closeErr = fmt.Errorf("channel close error: %w", err)
		}
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; connection close error: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("connection close error: %w", err)
			}
		}
	}

	if closeErr == nil {
		log.Info().Msg("RabbitMQ connection closed")
	}
	return closeErr
}
