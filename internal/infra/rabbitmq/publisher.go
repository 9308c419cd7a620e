package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

// Envelope wraps every published message so consumers can route on Pattern
// and de-duplicate on ID.
type Envelope struct {
	Pattern string      `json:"pattern"`
	Data    interface{} `json:"data"`
	ID      string      `json:"id,omitempty"`
}

func NewEnvelope(pattern string, data interface{}) Envelope {
	return Envelope{Pattern: pattern, Data: data, ID: uuid.NewString()}
}

func NewPublisher(amqpURL, exchange string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := NewEnvelope(pattern, data)
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.log.Debug("publishing message",
		zap.String("pattern", pattern),
		zap.String("exchange", p.exchange),
		zap.String("message_id", message.ID),
	)

	err = p.channel.Publish(
		p.exchange,
		pattern,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   message.ID,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
