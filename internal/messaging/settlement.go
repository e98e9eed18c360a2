package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// SettlementSucceededKey routes settlement success tasks from the payment
// simulator to the order workflow.
const SettlementSucceededKey = "payment.settlement.succeeded"

// PaymentSettledEvent is the queue task carrying a successful settlement
// outcome. Delivery is at-least-once; the consuming handler is idempotent.
type PaymentSettledEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	TransactionID string    `json:"transaction_id"`
	SettledAt     time.Time `json:"settled_at"`
}

// Publisher emits settlement tasks to the exchange.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishPaymentSettled(event PaymentSettledEvent) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	if event.SettledAt.IsZero() {
		event.SettledAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %w", err)
	}

	err = p.client.Channel().Publish(
		p.client.exchange,
		SettlementSucceededKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    event.SettledAt,
			Headers: amqp.Table{
				"order_id":       event.OrderID.String(),
				"transaction_id": event.TransactionID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	log.Info().
		Str("order_id", event.OrderID.String()).
		Str("routing_key", SettlementSucceededKey).
		Msg("Settlement event published")
	return nil
}

// NotifyPaymentSuccess implements the payment simulator's success notifier on
// top of the broker.
func (p *Publisher) NotifyPaymentSuccess(_ context.Context, orderID uuid.UUID, transactionID string) error {
	return p.PublishPaymentSettled(PaymentSettledEvent{
		OrderID:       orderID,
		TransactionID: transactionID,
	})
}

// SettlementHandler processes one settlement task. Returning an error requeues
// the delivery once; a second failure dead-letters it.
type SettlementHandler func(ctx context.Context, event PaymentSettledEvent) error

// Consumer binds a durable queue to the settlement routing key and feeds
// deliveries to a handler.
type Consumer struct {
	client    *Client
	queueName string
}

func NewConsumer(client *Client, queueName string) *Consumer {
	return &Consumer{client: client, queueName: queueName}
}

func (c *Consumer) ConsumeSettlements(handler SettlementHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	channel := c.client.Channel()

	queue, err := channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("queue declare error: %w", err)
	}

	if err := channel.QueueBind(queue.Name, SettlementSucceededKey, c.client.exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind error: %w", err)
	}

	messages, err := channel.Consume(
		queue.Name,  // queue
		c.queueName, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume start error: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("Consuming settlement events")

	go func() {
		for {
			select {
			case msg := <-messages:
				c.handleMessage(msg, handler)
			case <-c.client.ctx.Done():
				log.Info().Str("queue", c.queueName).Msg("Settlement consumer stopped")
				return
			}
		}
	}()

	return nil
}

func (c *Consumer) handleMessage(msg amqp.Delivery, handler SettlementHandler) {
	var event PaymentSettledEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error().Err(err).Msg("Settlement event deserialize error, dropping")
		msg.Nack(false, false)
		return
	}

	if err := handler(context.Background(), event); err != nil {
		log.Error().Err(err).
			Str("order_id", event.OrderID.String()).
			Msg("Settlement event processing failed")
		msg.Nack(false, !msg.Redelivered)
		return
	}

	msg.Ack(false)
}
