package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/zenithbooks/zenithbooks/internal/model"
)

// AccessLogWriter persists access log rows.
type AccessLogWriter interface {
	Insert(ctx context.Context, e model.AccessLog) error
}

var errInvalidEvent = errors.New("invalid access event")

// requeueDelay is how long a failed write waits before it is requeued.
var requeueDelay = 2 * time.Second

type nacker interface {
	Nack(multiple, requeue bool) error
}

// StartAccessConsumer consumes AccessRecordedQueue and writes each event to
// w.  It reconnects with backoff until ctx is cancelled.
func StartAccessConsumer(ctx context.Context, url string, w AccessLogWriter, log zerolog.Logger) {
	log = log.With().Str("component", "access-consumer").Logger()
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("broker dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, w, log)
		_ = conn.Close()
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("consume loop ended, reconnecting")
			sleep(ctx, 2*time.Second)
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, w AccessLogWriter, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set qos failed")
	}
	if _, err := ch.QueueDeclare(AccessRecordedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(AccessRecordedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, w, d.Body); err != nil {
				log.Error().Err(err).Msg("access event rejected")
				reject(ctx, d, err)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, w AccessLogWriter, body []byte) error {
	var ev AccessRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errInvalidEvent, err)
	}
	entry := ev.AccessLog()
	if entry.ShareCodeID == "" || !entry.Action.Valid() || entry.AccessedAt.IsZero() {
		return fmt.Errorf("%w: %s", errInvalidEvent, body)
	}
	if err := w.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// reject drops malformed events and requeues write failures after
// requeueDelay.  Shutdown cuts the wait short.
func reject(ctx context.Context, d nacker, err error) {
	if errors.Is(err, errInvalidEvent) {
		_ = d.Nack(false, false)
		return
	}
	sleep(ctx, requeueDelay)
	_ = d.Nack(false, true)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
