package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Entity string

const (
	Category    Entity = "category"
	Transaction Entity = "transaction"
	Budget      Entity = "budget"
)

type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Event describes a successful mutation. Month and Year name the period the
// entity belongs to, zero when unknown (deletes, categories).
type Event struct {
	ID       string    `json:"id"`
	Entity   Entity    `json:"entity"`
	Action   Action    `json:"action"`
	EntityID string    `json:"entityId"`
	Month    int       `json:"month,omitempty"`
	Year     int       `json:"year,omitempty"`
	At       time.Time `json:"at"`
}

func New(entity Entity, action Action, entityID string) Event {
	return Event{
		ID:       uuid.NewString(),
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		At:       time.Now(),
	}
}

func (e Event) WithPeriod(month, year int) Event {
	e.Month = month
	e.Year = year
	return e
}

// AffectsSummary reports whether the monthly budget summary depends on the
// mutated entity.
func (e Event) AffectsSummary() bool {
	return e.Entity == Transaction || e.Entity == Budget
}

type Handler interface {
	HandleEvent(ctx context.Context, e Event)
}

type HandlerFunc func(ctx context.Context, e Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, e Event) {
	f(ctx, e)
}

// Bus fans events out synchronously on the publishing goroutine, in
// subscription order. Slow handlers hand their work off.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.HandleEvent(ctx, e)
	}
}
