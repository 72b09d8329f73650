package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

func TestCreateUser(t *testing.T) {
	l, _, pub := newTestLedger(t)
	ctx := context.Background()

	u, err := l.Users.Create(ctx, "  Ann   Lee ", "1234-567890")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Name != "Ann Lee" || u.Phone != "1234-567890" {
		t.Errorf("unexpected user: %+v", u)
	}

	got, err := l.Users.Get(ctx, "1234-567890")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != u {
		t.Errorf("Get = %+v, want %+v", got, u)
	}

	if types := pub.types(); !reflect.DeepEqual(types, []events.Type{events.UserCreated}) {
		t.Errorf("unexpected events: %v", types)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name  string
		uname string
		phone string
	}{
		{"empty name", "   ", "1234-567890"},
		{"digits in name", "R2D2", "1234-567890"},
		{"phone without dash", "Ann", "1234567890"},
		{"phone with short prefix", "Ann", "123-4567890"},
		{"phone too long", "Ann", "1234-5678901"},
		{"phone with letters", "Ann", "1234-56789a"},
		{"empty phone", "Ann", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store, _ := newTestLedger(t)
			_, err := l.Users.Create(context.Background(), tt.uname, tt.phone)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			users, _ := store.Users().Load(context.Background())
			if len(users) != 0 {
				t.Errorf("invalid user was stored: %+v", users)
			}
		})
	}
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreateUser(t, l, "Ann", "1234-567890")

	_, err := l.Users.Create(ctx, "Bob", "1234-567890")
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ErrPhoneTaken should also be a validation error")
	}

	users, err := l.Users.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Ann" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestListAndGetUsers(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	users, err := l.Users.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %+v", users)
	}

	mustCreateUser(t, l, "Zoe", "9999-999999")
	mustCreateUser(t, l, "Adam", "1111-111111")

	users, err = l.Users.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []models.User{{Name: "Zoe", Phone: "9999-999999"}, {Name: "Adam", Phone: "1111-111111"}}
	if !reflect.DeepEqual(users, want) {
		t.Errorf("List = %+v, want registration order %+v", users, want)
	}

	if _, err := l.Users.Get(ctx, "0000-000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
