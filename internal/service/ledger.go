// Package service implements the ledger operations on top of a storage.Store.
//
// Every mutation is a read-modify-write of a whole collection. The services of
// one Ledger share a guard per collection, so writers of the same collection
// never interleave. Use a single Ledger per store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ledger groups the services operating on one store.
type Ledger struct {
	Users       *UserService
	Groups      *GroupService
	Expenses    *ExpenseService
	Settlements *SettlementService

	state *state
	store storage.Store
}

// Option configures a Ledger.
type Option func(*state)

// WithPublisher sends change events to p after each successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *state) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock replaces the clock used to timestamp expenses created without one.
func WithClock(now func() time.Time) Option {
	return func(s *state) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Ledger on store.
func New(store storage.Store, opts ...Option) *Ledger {
	st := &state{
		users:     storage.Guard(store.Users()),
		groups:    storage.Guard(store.Groups()),
		expenses:  storage.Guard(store.Expenses()),
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}

	users := &UserService{state: st}
	groups := &GroupService{state: st}
	expenses := &ExpenseService{state: st}
	return &Ledger{
		Users:       users,
		Groups:      groups,
		Expenses:    expenses,
		Settlements: &SettlementService{groups: groups, expenses: expenses},
		state:       st,
		store:       store,
	}
}

// Close closes the publisher and the store.
func (l *Ledger) Close() error {
	return errors.Join(l.state.publisher.Close(), l.store.Close())
}

// state is shared by every service of a Ledger.
type state struct {
	users     *storage.Guarded[[]models.User]
	groups    *storage.Guarded[models.GroupBook]
	expenses  *storage.Guarded[models.ExpenseBook]
	publisher events.Publisher
	now       func() time.Time
}

func (s *state) findUser(ctx context.Context, phone string) (models.User, bool, error) {
	users, err := s.users.Read(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if u.Phone == phone {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (s *state) findGroup(ctx context.Context, id int64) (models.Group, bool, error) {
	book, err := s.groups.Read(ctx)
	if err != nil {
		return models.Group{}, false, err
	}
	if i := book.Find(id); i >= 0 {
		return book.Groups[i], true, nil
	}
	return models.Group{}, false, nil
}

// publish sends e. The write it describes has already been committed, so a
// failure is logged and counted but not returned.
func (s *state) publish(ctx context.Context, e events.Event) {
	err := s.publisher.Publish(ctx, e)
	metrics.ObserveEvent(string(e.Type), err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", e.Type,
			"id", e.ID,
			"error", err)
	}
}

// finish records the outcome of operation op. Failures caused by the caller
// are logged as warnings, everything else as errors.
func finish(ctx context.Context, op string, err error, attrs ...any) {
	kind := errorKind(err)
	metrics.ObserveOperation(op, kind)
	if err == nil {
		return
	}

	attrs = append(attrs, "kind", kind, "error", err)
	switch kind {
	case "storage_unavailable", "corrupt_data", "dangling_reference", "internal":
		slog.ErrorContext(ctx, op+" failed", attrs...)
	default:
		slog.WarnContext(ctx, op+" failed", attrs...)
	}
}
