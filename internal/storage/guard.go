package storage

import (
	"context"
	"sync"
)

// Guarded serializes access to a collection. Every Update runs its whole
// load, mutate and replace cycle under one lock, so concurrent writers of
// the same collection cannot overwrite each other's changes.
type Guarded[T any] struct {
	mu sync.Mutex
	c  Collection[T]
}

// Guard wraps c. All writers of c must share the returned value.
func Guard[T any](c Collection[T]) *Guarded[T] {
	return &Guarded[T]{c: c}
}

// Read loads the current state of the collection.
func (g *Guarded[T]) Read(ctx context.Context) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Load(ctx)
}

// Update loads the collection, applies fn to it and writes the result back.
// Nothing is written when fn returns an error; that error is returned as is.
func (g *Guarded[T]) Update(ctx context.Context, fn func(v *T) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.c.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return g.c.Replace(ctx, v)
}
