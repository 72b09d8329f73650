// Package memory provides an in-process implementation of the storage.Store
// interface. Nothing survives Close.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps every collection in memory. Values are copied on the way in
// and out so callers never share slices with the store.
type Store struct {
	users    *collection[[]models.User]
	groups   *collection[models.GroupBook]
	expenses *collection[models.ExpenseBook]
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    &collection[[]models.User]{clone: cloneUsers},
		groups:   &collection[models.GroupBook]{clone: cloneBook},
		expenses: &collection[models.ExpenseBook]{clone: cloneExpenses},
	}
}

func (s *Store) Users() storage.Collection[[]models.User]         { return s.users }
func (s *Store) Groups() storage.Collection[models.GroupBook]     { return s.groups }
func (s *Store) Expenses() storage.Collection[models.ExpenseBook] { return s.expenses }

// Close is a no-op.
func (s *Store) Close() error { return nil }

type collection[T any] struct {
	mu    sync.Mutex
	data  T
	clone func(T) T
}

func (c *collection[T]) Load(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.data), nil
}

func (c *collection[T]) Replace(ctx context.Context, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = c.clone(v)
	return nil
}

func cloneUsers(in []models.User) []models.User {
	return append([]models.User{}, in...)
}

func cloneExpenses(in models.ExpenseBook) models.ExpenseBook {
	return models.ExpenseBook{
		CurrentID: in.CurrentID,
		Expenses:  append([]models.Expense{}, in.Expenses...),
	}
}

func cloneBook(in models.GroupBook) models.GroupBook {
	out := models.GroupBook{CurrentID: in.CurrentID, Groups: make([]models.Group, len(in.Groups))}
	for i, g := range in.Groups {
		g.Members = append([]models.UserRef{}, g.Members...)
		out.Groups[i] = g
	}
	return out
}
