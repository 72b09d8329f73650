// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Collection is one persisted resource, read and written as a whole.
type Collection[T any] interface {
	// Load returns the full collection. A collection that was never written
	// loads as its empty value.
	Load(ctx context.Context) (T, error)

	// Replace overwrites the full collection with v.
	Replace(ctx context.Context, v T) error
}

// Store defines the collections the ledger persists.
// This abstraction allows swapping storage backends (JSON files, SQLite, memory)
// without changing the service layer.
type Store interface {
	Users() Collection[[]models.User]
	Groups() Collection[models.GroupBook]
	Expenses() Collection[models.ExpenseBook]

	// Close releases any resources held by the store.
	Close() error
}

// Collection names used in logs and metrics.
const (
	UsersCollection    = "users"
	GroupsCollection   = "groups"
	ExpensesCollection = "expenses"
)
