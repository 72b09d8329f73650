package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/logging"
)

func TestCreateGroup(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	t.Run("ids increase without gaps", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			g, err := l.Groups.Create(ctx, "Group")
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if g.ID != want {
				t.Fatalf("expected id %d, got %d", want, g.ID)
			}
			if len(g.Members) != 0 {
				t.Errorf("new group should be empty, got %+v", g.Members)
			}
		}

		book, err := store.Groups().Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if book.CurrentID != 3 || len(book.Groups) != 3 {
			t.Errorf("counter and groups not persisted together: %+v", book)
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", strings.Repeat("x", models.MaxGroupNameLength+1)} {
			if _, err := l.Groups.Create(ctx, name); !errors.Is(err, ErrValidation) {
				t.Errorf("Create(%q): expected ErrValidation, got %v", name, err)
			}
		}
		if _, err := l.Groups.Create(ctx, strings.Repeat("é", models.MaxGroupNameLength)); err != nil {
			t.Errorf("name of exactly %d characters should be accepted: %v", models.MaxGroupNameLength, err)
		}
	})
}

func TestCreateGroupSkipsStaleCounter(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	stale := models.GroupBook{CurrentID: 1, Groups: []models.Group{{ID: 1}, {ID: 4}}}
	if err := store.Groups().Replace(ctx, stale); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	g, err := l.Groups.Create(ctx, "Next")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.ID != 5 {
		t.Errorf("expected id 5, got %d", g.ID)
	}
}

func TestCreateGroupLogsNormalizedName(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(logging.New(&buf, slog.LevelInfo))

	l, _, _ := newTestLedger(t)
	g, err := l.Groups.Create(context.Background(), "  Trip   North ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Name != "Trip North" {
		t.Fatalf("expected normalized name, got %q", g.Name)
	}

	out := buf.String()
	if !strings.Contains(out, "CreateGroup request received") || !strings.Contains(out, "Trip North") {
		t.Errorf("expected request log with the normalized name, got %q", out)
	}
	if strings.Contains(out, "Trip   North") {
		t.Errorf("raw name was logged: %q", out)
	}
}

func TestGetGroup(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	created := mustCreateGroup(t, l, "Flat")

	g, err := l.Groups.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if g.Name != "Flat" {
		t.Errorf("unexpected group: %+v", g)
	}

	if _, err := l.Groups.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMember(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreateUser(t, l, "Ann", "1111-111111")
	g := mustCreateGroup(t, l, "Flat")

	if err := l.Groups.AddMember(ctx, g.ID, "1111-111111"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	t.Run("duplicate is rejected", func(t *testing.T) {
		err := l.Groups.AddMember(ctx, g.ID, "1111-111111")
		if !errors.Is(err, ErrAlreadyMember) {
			t.Fatalf("expected ErrAlreadyMember, got %v", err)
		}
		got, err := l.Groups.Get(ctx, g.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(got.Members) != 1 {
			t.Errorf("expected one membership entry, got %+v", got.Members)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if err := l.Groups.AddMember(ctx, g.ID, "2222-222222"); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("expected ErrUnknownUser, got %v", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if err := l.Groups.AddMember(ctx, 99, "1111-111111"); !errors.Is(err, ErrUnknownGroup) {
			t.Errorf("expected ErrUnknownGroup, got %v", err)
		}
	})
}

func TestMembershipQueries(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreateUser(t, l, "Ann", "1111-111111")
	mustCreateUser(t, l, "Bob", "2222-222222")
	mustCreateUser(t, l, "Cid", "3333-333333")
	mustCreateUser(t, l, "Dee", "4444-444444")
	flat := mustCreateGroup(t, l, "Flat", "3333-333333", "1111-111111")
	trip := mustCreateGroup(t, l, "Trip", "1111-111111")
	mustCreateGroup(t, l, "Empty")

	t.Run("UsersInGroup keeps join order", func(t *testing.T) {
		users, err := l.Groups.UsersInGroup(ctx, flat.ID)
		if err != nil {
			t.Fatalf("UsersInGroup failed: %v", err)
		}
		if len(users) != 2 || users[0].Name != "Cid" || users[1].Name != "Ann" {
			t.Errorf("unexpected members: %+v", users)
		}
	})

	t.Run("members and non-members partition all users", func(t *testing.T) {
		all, err := l.Users.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		in, err := l.Groups.UsersInGroup(ctx, flat.ID)
		if err != nil {
			t.Fatalf("UsersInGroup failed: %v", err)
		}
		out, err := l.Groups.UsersNotInGroup(ctx, flat.ID)
		if err != nil {
			t.Fatalf("UsersNotInGroup failed: %v", err)
		}

		seen := make(map[string]int)
		for _, u := range in {
			seen[u.Phone]++
		}
		for _, u := range out {
			seen[u.Phone]++
		}
		if len(seen) != len(all) {
			t.Fatalf("union has %d users, want %d", len(seen), len(all))
		}
		for phone, n := range seen {
			if n != 1 {
				t.Errorf("%s appears %d times", phone, n)
			}
		}
		if len(out) != 2 || out[0].Name != "Bob" || out[1].Name != "Dee" {
			t.Errorf("non-members not in registration order: %+v", out)
		}
	})

	t.Run("GroupsForUser", func(t *testing.T) {
		groups, err := l.Groups.GroupsForUser(ctx, "1111-111111")
		if err != nil {
			t.Fatalf("GroupsForUser failed: %v", err)
		}
		if len(groups) != 2 || groups[0].ID != flat.ID || groups[1].ID != trip.ID {
			t.Errorf("unexpected groups: %+v", groups)
		}

		groups, err = l.Groups.GroupsForUser(ctx, "4444-444444")
		if err != nil {
			t.Fatalf("GroupsForUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %+v", groups)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if _, err := l.Groups.UsersInGroup(ctx, 99); !errors.Is(err, ErrUnknownGroup) {
			t.Errorf("UsersInGroup: expected ErrUnknownGroup, got %v", err)
		}
		if _, err := l.Groups.UsersNotInGroup(ctx, 99); !errors.Is(err, ErrUnknownGroup) {
			t.Errorf("UsersNotInGroup: expected ErrUnknownGroup, got %v", err)
		}
	})
}

func TestUsersInGroupDanglingReference(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	book := models.GroupBook{CurrentID: 1, Groups: []models.Group{
		{ID: 1, Name: "Ghosts", Members: []models.UserRef{{Phone: "5555-555555"}}},
	}}
	if err := store.Groups().Replace(ctx, book); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if _, err := l.Groups.UsersInGroup(ctx, 1); !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}
