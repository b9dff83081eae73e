// Package queue publishes check-in events to RabbitMQ for downstream
// consumers (attendance dashboards, notifications). Publication is
// best-effort: errors are logged and returned, and callers ignore them
// without interrupting admission.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const checkInQueueName = "checkin.recorded"

// CheckInEvent is the message body published after a durable check-in.
type CheckInEvent struct {
	EventID       string    `json:"event_id"`
	WalletAddress string    `json:"wallet_address"`
	CheckedInAt   time.Time `json:"checked_in_at"`
}

// Publisher fans out check-in events. Implementations must never block
// admission on broker problems.
type Publisher interface {
	PublishCheckIn(ctx context.Context, event CheckInEvent) error
}

// AMQPPublisher dials the broker per publish, which keeps the hot path free
// of connection state to babysit at this volume.
type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) PublishCheckIn(ctx context.Context, event CheckInEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable declare is idempotent; messages survive broker restarts.
	if _, err := ch.QueueDeclare(checkInQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", checkInQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
