package storage

import (
	"context"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

type instrumented[T any] struct {
	name string
	next Collection[T]
}

// Instrument wraps c so every call is counted and timed under name.
func Instrument[T any](name string, c Collection[T]) Collection[T] {
	return &instrumented[T]{name: name, next: c}
}

func (c *instrumented[T]) Load(ctx context.Context) (T, error) {
	start := time.Now()
	v, err := c.next.Load(ctx)
	metrics.ObserveStorage(c.name, "load", start, err)
	return v, err
}

func (c *instrumented[T]) Replace(ctx context.Context, v T) error {
	start := time.Now()
	err := c.next.Replace(ctx, v)
	metrics.ObserveStorage(c.name, "replace", start, err)
	return err
}

type instrumentedStore struct {
	users    Collection[[]models.User]
	groups   Collection[models.GroupBook]
	expenses Collection[models.ExpenseBook]
	close    func() error
}

// InstrumentStore returns a Store whose collections report metrics.
func InstrumentStore(s Store) Store {
	return &instrumentedStore{
		users:    Instrument(UsersCollection, s.Users()),
		groups:   Instrument(GroupsCollection, s.Groups()),
		expenses: Instrument(ExpensesCollection, s.Expenses()),
		close:    s.Close,
	}
}

func (s *instrumentedStore) Users() Collection[[]models.User]         { return s.users }
func (s *instrumentedStore) Groups() Collection[models.GroupBook]     { return s.groups }
func (s *instrumentedStore) Expenses() Collection[models.ExpenseBook] { return s.expenses }
func (s *instrumentedStore) Close() error                             { return s.close() }
