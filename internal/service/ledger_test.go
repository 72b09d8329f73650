package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/jsonfile"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

// fixedNow is the clock used by test ledgers.
var fixedNow = time.Unix(1700000000, 0)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// newTestLedger creates a Ledger on an empty in-memory store.
func newTestLedger(t *testing.T) (*Ledger, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	l := New(store, WithPublisher(pub), WithClock(func() time.Time { return fixedNow }))
	return l, store, pub
}

func mustCreateUser(t *testing.T, l *Ledger, name, phone string) models.User {
	t.Helper()
	u, err := l.Users.Create(context.Background(), name, phone)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", phone, err)
	}
	return u
}

func mustCreateGroup(t *testing.T, l *Ledger, name string, phones ...string) models.Group {
	t.Helper()
	ctx := context.Background()
	g, err := l.Groups.Create(ctx, name)
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	for _, p := range phones {
		if err := l.Groups.AddMember(ctx, g.ID, p); err != nil {
			t.Fatalf("AddMember(%d, %s) failed: %v", g.ID, p, err)
		}
	}
	return g
}

func TestLedgerClose(t *testing.T) {
	l, _, pub := newTestLedger(t)
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !pub.closed {
		t.Error("expected publisher to be closed")
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	l, _, pub := newTestLedger(t)
	pub.err = errors.New("broker down")

	u, err := l.Users.Create(context.Background(), "Ann", "1111-111111")
	if err != nil {
		t.Fatalf("Create failed despite committed write: %v", err)
	}
	if _, err := l.Users.Get(context.Background(), u.Phone); err != nil {
		t.Fatalf("user was not stored: %v", err)
	}
}

func TestStorageErrorsPropagate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, jsonfile.UsersFile), []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	store, err := jsonfile.New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	l := New(store)
	ctx := context.Background()

	if _, err := l.Users.List(ctx); !errors.Is(err, ErrCorruptData) {
		t.Errorf("List: expected ErrCorruptData, got %v", err)
	}
	if _, err := l.Users.Create(ctx, "Ann", "1111-111111"); !errors.Is(err, ErrCorruptData) {
		t.Errorf("Create: expected ErrCorruptData, got %v", err)
	}

	g, err := l.Groups.Create(ctx, "Flat")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := l.Groups.AddMember(ctx, g.ID, "1111-111111"); !errors.Is(err, ErrCorruptData) {
		t.Errorf("AddMember: expected ErrCorruptData, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrValidation, "validation"},
		{ErrUnknownUser, "unknown_user"},
		{ErrUnknownGroup, "unknown_group"},
		{ErrPhoneTaken, "phone_taken"},
		{ErrNotFound, "not_found"},
		{ErrAlreadyMember, "already_member"},
		{ErrDanglingReference, "dangling_reference"},
		{ErrDivisionUndefined, "division_undefined"},
		{ErrStorageUnavailable, "storage_unavailable"},
		{ErrCorruptData, "corrupt_data"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := errorKind(tt.err); got != tt.want {
				t.Errorf("errorKind(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
