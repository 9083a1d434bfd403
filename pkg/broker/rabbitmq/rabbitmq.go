// Package rabbitmq is a thin, global-free wrapper over amqp091-go, used by
// internal/notify as the dead-letter sink for webhook deliveries that
// exhaust their retry budget.
package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials url and opens a single channel.
func Connect(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitMQ{conn: conn, ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.ch.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// DeclareQueue ensures queueName exists as a durable queue.
func (r *RabbitMQ) DeclareQueue(queueName string) error {
	_, err := r.ch.QueueDeclare(queueName, true, false, false, false, nil)
	return err
}

// Publish sends body to queueName as a persistent message.
func (r *RabbitMQ) Publish(queueName string, body []byte) error {
	return r.ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
