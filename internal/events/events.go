package events

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=events.go -destination=../mocks/events.go -package=mocks

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event describes one change to a stored record.
type Event struct {
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	ID         uuid.UUID `json:"id"`
	At         time.Time `json:"at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers change events. Implementations must not block the
// caller on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Fanout publishes every event to each of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, p := range f {
		p.Publish(ctx, e)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
