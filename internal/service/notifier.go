package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/voyagehub/reservation-checkout/internal/queue"
)

// Notifier delivers toast-equivalent notifications to the shopper-facing
// channel. Implementations must be safe to call from multiple goroutines.
type Notifier interface {
	Notify(ctx context.Context, reservationID uint64, sev queue.Severity, code, message string) error
}

// QueueNotifier publishes NotificationEvents to the durable
// reservation.notifications queue. The function attempts to be robust and
// to never panic; any error is logged and returned so the caller can choose
// to ignore it. Messages are marked as persistent.
type QueueNotifier struct {
	URL string // AMQP connection string; queue.BrokerURL() when empty
}

// NewQueueNotifier returns a QueueNotifier using the broker URL from the
// environment.
func NewQueueNotifier() *QueueNotifier {
	return &QueueNotifier{URL: queue.BrokerURL()}
}

// Notify publishes one NotificationEvent.
func (n *QueueNotifier) Notify(ctx context.Context, reservationID uint64, sev queue.Severity, code, message string) error {
	ev := queue.NotificationEvent{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Severity:      sev,
		Code:          code,
		Message:       message,
		EmittedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	url := n.URL
	if url == "" {
		url = queue.BrokerURL()
	}
	conn, err := amqp.Dial(url)
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

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.NotificationQueueName, // name
		true,                        // durable
		false,                       // autoDelete
		false,                       // exclusive
		false,                       // noWait
		nil,                         // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                          // default exchange
		queue.NotificationQueueName, // routing key = queue name
		false,                       // mandatory
		false,                       // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
