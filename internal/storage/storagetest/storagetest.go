// Package storagetest runs the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"reflect"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Run exercises a fresh store produced by open. open is called once per
// subtest and must return an empty store.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("empty collections", func(t *testing.T) {
		s := open(t)

		users, err := s.Users().Load(ctx)
		if err != nil {
			t.Fatalf("Load users failed: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("expected no users, got %d", len(users))
		}

		book, err := s.Groups().Load(ctx)
		if err != nil {
			t.Fatalf("Load groups failed: %v", err)
		}
		if book.CurrentID != 0 || len(book.Groups) != 0 {
			t.Errorf("expected empty group book, got %+v", book)
		}

		expenses, err := s.Expenses().Load(ctx)
		if err != nil {
			t.Fatalf("Load expenses failed: %v", err)
		}
		if expenses.CurrentID != 0 || len(expenses.Expenses) != 0 {
			t.Errorf("expected empty expense book, got %+v", expenses)
		}
	})

	t.Run("users round trip in order", func(t *testing.T) {
		s := open(t)
		want := []models.User{
			{Name: "Zoe", Phone: "0000-000009"},
			{Name: "Adam", Phone: "0000-000001"},
		}
		if err := s.Users().Replace(ctx, want); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		got, err := s.Users().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("group book round trip", func(t *testing.T) {
		s := open(t)
		want := models.GroupBook{
			CurrentID: 3,
			Groups: []models.Group{
				{ID: 1, Name: "Flat", Members: []models.UserRef{
					{Phone: "0000-000002", Link: "/users/0000-000002"},
					{Phone: "0000-000001"},
				}},
				{ID: 3, Name: "Trip", Members: []models.UserRef{}},
			},
		}
		if err := s.Groups().Replace(ctx, want); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		got, err := s.Groups().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.CurrentID != want.CurrentID {
			t.Errorf("CurrentID = %d, want %d", got.CurrentID, want.CurrentID)
		}
		if len(got.Groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(got.Groups))
		}
		if !reflect.DeepEqual(got.Groups[0], want.Groups[0]) {
			t.Errorf("group 1 = %+v, want %+v", got.Groups[0], want.Groups[0])
		}
		if got.Groups[1].ID != 3 || got.Groups[1].Name != "Trip" || len(got.Groups[1].Members) != 0 {
			t.Errorf("group 3 = %+v", got.Groups[1])
		}
	})

	t.Run("replace overwrites everything", func(t *testing.T) {
		s := open(t)
		first := models.ExpenseBook{CurrentID: 2, Expenses: []models.Expense{
			{ID: 1, Amount: 10, Payer: models.UserRef{Phone: "0000-000001"}, Group: models.GroupRef{ID: 1}, Text: "a", Created: 100},
			{ID: 2, Amount: 20, Payer: models.UserRef{Phone: "0000-000002"}, Group: models.GroupRef{ID: 1}, Text: "b", Created: 100},
		}}
		second := models.ExpenseBook{CurrentID: 7, Expenses: []models.Expense{
			{ID: 2, Amount: 25, Payer: models.UserRef{Phone: "0000-000002", Link: "/u/2"}, Group: models.GroupRef{ID: 1, Link: "/g/1"}, Text: "b2", Created: 200},
		}}
		if err := s.Expenses().Replace(ctx, first); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		if err := s.Expenses().Replace(ctx, second); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		got, err := s.Expenses().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, second) {
			t.Errorf("got %+v, want %+v", got, second)
		}
	})

	t.Run("loaded values are not aliased", func(t *testing.T) {
		s := open(t)
		book := models.GroupBook{CurrentID: 1, Groups: []models.Group{
			{ID: 1, Name: "Flat", Members: []models.UserRef{{Phone: "0000-000001"}}},
		}}
		if err := s.Groups().Replace(ctx, book); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		book.Groups[0].Members[0].Phone = "9999-999999"

		loaded, err := s.Groups().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		loaded.Groups[0].Name = "Changed"

		again, err := s.Groups().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if again.Groups[0].Name != "Flat" || again.Groups[0].Members[0].Phone != "0000-000001" {
			t.Errorf("stored group was mutated: %+v", again.Groups[0])
		}
	})
}
