package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	maxDialAttempts = 10
	initialBackoff  = time.Second
	maxBackoff      = 30 * time.Second
	publishTimeout  = 5 * time.Second

	routingKeyPrefix = "reservation."
)

var ErrChannelClosed = errors.New("rabbitmq channel not available")

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends committed reservation events to a topic exchange using
// the routing key reservation.<type>.
type Publisher struct {
	exchange string
	logger   *log.Logger
	now      func() time.Time

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   channel
}

// Dial connects to url, retrying with backoff until ctx is done or the
// attempts run out, and declares exchange as a durable topic exchange.
func Dial(ctx context.Context, url, exchange string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.Default()
	}
	delay := initialBackoff
	for attempt := 1; ; attempt++ {
		conn, ch, err := connect(url, exchange)
		if err == nil {
			logger.Printf("rabbitmq connected exchange=%s attempt=%d", exchange, attempt)
			p := newPublisher(ch, exchange, logger)
			p.conn = conn
			return p, nil
		}
		if attempt == maxDialAttempts {
			return nil, fmt.Errorf("connect rabbitmq after %d attempts: %w", attempt, err)
		}
		logger.Printf("WARN: rabbitmq connection attempt %d/%d failed, retrying in %s: %v", attempt, maxDialAttempts, delay, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = nextBackoff(delay)
	}
}

func newPublisher(ch channel, exchange string, logger *log.Logger) *Publisher {
	return &Publisher{exchange: exchange, logger: logger, now: time.Now, ch: ch}
}

func connect(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

func nextBackoff(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * 1.5)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (p *Publisher) PublishReservationEvent(ctx context.Context, ev domain.ReservationEvent) error {
	body, err := json.Marshal(payloadFrom(ev))
	if err != nil {
		return fmt.Errorf("marshal reservation event: %w", err)
	}

	p.mu.RLock()
	ch := p.ch
	p.mu.RUnlock()
	if ch == nil {
		return ErrChannelClosed
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(publishCtx, p.exchange, RoutingKey(ev.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ReservationID + ":" + string(ev.Type) + ":" + ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		Timestamp:    p.now(),
	})
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}

func RoutingKey(t domain.ReservationEventType) string {
	return routingKeyPrefix + string(t)
}

type eventPayload struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	Number        string    `json:"reservation_number"`
	VehicleID     string    `json:"vehicle_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func payloadFrom(ev domain.ReservationEvent) eventPayload {
	return eventPayload{
		Type:          string(ev.Type),
		ReservationID: ev.ReservationID,
		Number:        ev.Number,
		VehicleID:     ev.VehicleID,
		Status:        string(ev.Status),
		PaymentStatus: string(ev.PaymentStatus),
		StartsAt:      ev.Range.Start.UTC(),
		EndsAt:        ev.Range.End.UTC(),
		Actor:         ev.Actor,
		OccurredAt:    ev.OccurredAt.UTC(),
	}
}
