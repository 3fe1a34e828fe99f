// Package service holds adapters that connect domain services to external
// infrastructure.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/queue"
)

// publishChannel is the subset of *amqp.Channel used for publishing.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var openChannel = func(url string) (publishChannel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// AccessPublisher sends access log entries to RabbitMQ.  It dials per
// message; access events are low volume and the broker may come and go.
type AccessPublisher struct {
	url string
}

func NewAccessPublisher(url string) *AccessPublisher { return &AccessPublisher{url: url} }

// PublishAccess publishes a persistent AccessRecordedEvent.  Errors are
// returned for the caller to log; nothing is retried.
func (p *AccessPublisher) PublishAccess(ctx context.Context, entry model.AccessLog) error {
	ch, conn, err := openChannel(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer func() {
		_ = ch.Close()
		_ = conn.Close()
	}()

	if _, err := ch.QueueDeclare(queue.AccessRecordedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	body, err := json.Marshal(queue.NewAccessRecordedEvent(entry))
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.AccessRecordedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
