package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	goredis "github.com/go-redis/redis/v8"
)

const (
	defaultAddr   = "localhost:6379"
	keyPrefix     = "calendar:"
	generationKey = keyPrefix + "gen"
)

// CalendarCache keeps projected calendars in Redis. Keys embed a generation
// counter, so Invalidate drops every entry at once by bumping it.
type CalendarCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient builds a client for addr. A redis:// URL is accepted as well as a
// bare host:port.
func NewClient(addr string) (*goredis.Client, error) {
	if addr == "" {
		addr = defaultAddr
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return goredis.NewClient(opts), nil
	}
	return goredis.NewClient(&goredis.Options{Addr: addr}), nil
}

func NewCalendarCache(client *goredis.Client, ttl time.Duration) *CalendarCache {
	return &CalendarCache{client: client, ttl: ttl}
}

func (c *CalendarCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetCalendar looks q up under the current generation and returns that
// generation so a miss can be filled with PutCalendar. A reservation change
// between the two calls bumps the generation and the late write lands under
// a key no reader will ask for.
func (c *CalendarCache) GetCalendar(ctx context.Context, q domain.CalendarQuery) ([]domain.DisplayEvent, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	raw, err := c.client.Get(ctx, calendarKey(gen, q)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("get calendar: %w", err)
	}
	var entries []eventEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, gen, false, fmt.Errorf("decode calendar: %w", err)
	}
	events := make([]domain.DisplayEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, e.toDomain())
	}
	return events, gen, true, nil
}

// PutCalendar stores events under gen, the generation returned by the
// GetCalendar miss they were computed for.
func (c *CalendarCache) PutCalendar(ctx context.Context, gen int64, q domain.CalendarQuery, events []domain.DisplayEvent) error {
	entries := make([]eventEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, entryFrom(ev))
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	if err := c.client.Set(ctx, calendarKey(gen, q), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put calendar: %w", err)
	}
	return nil
}

// Invalidate makes every cached calendar unreachable. Old entries expire on
// their own TTL.
func (c *CalendarCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("invalidate calendar: %w", err)
	}
	return nil
}

// InvalidateOnEvent drops cached calendars for any reservation change. It
// has the shape of a reservation event publisher.
func (c *CalendarCache) InvalidateOnEvent(ctx context.Context, _ domain.ReservationEvent) error {
	return c.Invalidate(ctx)
}

func (c *CalendarCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read calendar generation: %w", err)
	}
	return gen, nil
}

// calendarKey is stable for equivalent queries: statuses are defaulted and
// sorted, times are compared in UTC.
func calendarKey(gen int64, q domain.CalendarQuery) string {
	q = q.Normalize()
	statuses := make([]string, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	var b strings.Builder
	b.WriteString(q.Window.Start.UTC().Format(time.RFC3339Nano))
	b.WriteByte('|')
	b.WriteString(q.Window.End.UTC().Format(time.RFC3339Nano))
	b.WriteByte('|')
	b.WriteString(q.LocationID)
	b.WriteByte('|')
	b.WriteString(q.VehicleID)
	b.WriteByte('|')
	b.WriteString(strings.Join(statuses, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, hex.EncodeToString(sum[:16]))
}

type eventEntry struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Status           string    `json:"status"`
	Color            string    `json:"color"`
	Number           string    `json:"number"`
	VehiclePlate     string    `json:"vehicle_plate"`
	PickupLocation   string    `json:"pickup_location"`
	ReturnLocation   string    `json:"return_location"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	PaymentStatus    string    `json:"payment_status"`
}

func entryFrom(ev domain.DisplayEvent) eventEntry {
	return eventEntry{
		ID:               ev.ID,
		Title:            ev.Title,
		Start:            ev.Start.UTC(),
		End:              ev.End.UTC(),
		Status:           string(ev.Status),
		Color:            ev.Color,
		Number:           ev.Details.Number,
		VehiclePlate:     ev.Details.VehiclePlate,
		PickupLocation:   ev.Details.PickupLocation,
		ReturnLocation:   ev.Details.ReturnLocation,
		TotalAmountCents: ev.Details.TotalAmountCents,
		PaymentStatus:    string(ev.Details.PaymentStatus),
	}
}

func (e eventEntry) toDomain() domain.DisplayEvent {
	return domain.DisplayEvent{
		ID:     e.ID,
		Title:  e.Title,
		Start:  e.Start.UTC(),
		End:    e.End.UTC(),
		Status: domain.Status(e.Status),
		Color:  e.Color,
		Details: domain.EventDetails{
			Number:           e.Number,
			VehiclePlate:     e.VehiclePlate,
			PickupLocation:   e.PickupLocation,
			ReturnLocation:   e.ReturnLocation,
			TotalAmountCents: e.TotalAmountCents,
			PaymentStatus:    domain.PaymentStatus(e.PaymentStatus),
		},
	}
}
