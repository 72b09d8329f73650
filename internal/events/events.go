// Package events publishes notifications about ledger changes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a kind of ledger change. It doubles as the routing key.
type Type string

const (
	UserCreated      Type = "user.created"
	GroupCreated     Type = "group.created"
	GroupMemberAdded Type = "group.member_added"
	ExpenseCreated   Type = "expense.created"
	ExpenseUpdated   Type = "expense.updated"
	ExpenseDeleted   Type = "expense.deleted"
)

// Event is a single ledger change. Only the references relevant to Type are set.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Phone      string    `json:"phone,omitempty"`
	GroupID    int64     `json:"group_id,omitempty"`
	ExpenseID  int64     `json:"expense_id,omitempty"`
}

// New creates an event of the given type with a fresh ID.
func New(t Type) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates an event from JSON bytes
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
