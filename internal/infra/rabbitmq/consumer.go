package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// HandlerFunc processes one decoded message. Returning an error requeues
// nothing: the delivery is logged and acknowledged.
type HandlerFunc func(ctx context.Context, msg Message) error

type Consumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

func NewConsumer(amqpURL, exchange, queue string, routingKeys ...string) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	closeAll := func() {
		channel.Close()
		conn.Close()
	}

	if err := declareExchange(channel, exchange); err != nil {
		closeAll()
		return nil, err
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(queue, key, exchange, false, nil); err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to bind %s to %s: %w", queue, key, err)
		}
	}

	if err := channel.Qos(10, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	return &Consumer{conn: conn, channel: channel, exchange: exchange, queue: queue}, nil
}

// Run blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", c.queue, err)
	}

	log.Printf("Consuming queue '%s' on exchange '%s'", c.queue, c.exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			Dispatch(ctx, d.Body, handle)
			if err := d.Ack(false); err != nil {
				log.Printf("Failed to ack delivery on %s: %v", c.queue, err)
			}
		}
	}
}

// Dispatch decodes body and hands it to handle, logging any failure.
func Dispatch(ctx context.Context, body []byte, handle HandlerFunc) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Printf("Dropping undecodable message: %v", err)
		return
	}
	if err := handle(ctx, msg); err != nil {
		log.Printf("Handler for '%s' (id %s) failed: %v", msg.Pattern, msg.ID, err)
	}
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
