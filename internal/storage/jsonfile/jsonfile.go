// Package jsonfile provides a storage.Store that keeps each collection in its
// own JSON document inside a directory:
//
//	users.json          [{"name", "phone"}]
//	groups.json         {"current_id", "groups": [{"id", "name", "users"}]}
//	expenses.json       [{"id", "amount", "payer", "group", "text", "created"}]
//	expenses_meta.json  {"current_id"}
//
// A missing document loads as an empty collection. Documents are replaced by
// writing a temporary file next to the target and renaming it over the
// target, so readers see either the old or the new document.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Document file names inside the data directory.
const (
	UsersFile    = "users.json"
	GroupsFile   = "groups.json"
	ExpensesFile = "expenses.json"

	// ExpensesMetaFile keeps the expense ID counter next to the plain
	// expense list.
	ExpensesMetaFile = "expenses_meta.json"
)

// Store implements storage.Store on JSON documents.
type Store struct {
	dir      string
	users    *document[[]models.User]
	groups   *document[models.GroupBook]
	expenses *expenseBook
}

// New creates a Store rooted at dir, creating the directory if needed.
// Existing documents are left untouched.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w: %w", storage.ErrUnavailable, err)
	}
	return &Store{
		dir: dir,
		users: &document[[]models.User]{
			path: filepath.Join(dir, UsersFile),
			fill: func(v []models.User) []models.User {
				if v == nil {
					return []models.User{}
				}
				return v
			},
		},
		groups: &document[models.GroupBook]{
			path: filepath.Join(dir, GroupsFile),
			fill: func(v models.GroupBook) models.GroupBook {
				if v.Groups == nil {
					v.Groups = []models.Group{}
				}
				for i := range v.Groups {
					if v.Groups[i].Members == nil {
						v.Groups[i].Members = []models.UserRef{}
					}
				}
				return v
			},
		},
		expenses: &expenseBook{
			list: &document[[]models.Expense]{
				path: filepath.Join(dir, ExpensesFile),
				fill: func(v []models.Expense) []models.Expense {
					if v == nil {
						return []models.Expense{}
					}
					return v
				},
			},
			meta: &document[expenseMeta]{
				path: filepath.Join(dir, ExpensesMetaFile),
				fill: func(v expenseMeta) expenseMeta { return v },
			},
		},
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) Users() storage.Collection[[]models.User]         { return s.users }
func (s *Store) Groups() storage.Collection[models.GroupBook]     { return s.groups }
func (s *Store) Expenses() storage.Collection[models.ExpenseBook] { return s.expenses }

// Close is a no-op; no file handles stay open between calls.
func (s *Store) Close() error { return nil }

// document is one JSON file. fill replaces nil slices with empty ones so
// documents never contain null where a list is expected.
type document[T any] struct {
	path string
	fill func(T) T
}

func (d *document[T]) Load(ctx context.Context) (T, error) {
	var v T
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return d.fill(v), nil
	}
	if err != nil {
		return v, fmt.Errorf("failed to read %s: %w: %w", filepath.Base(d.path), storage.ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return d.fill(v), nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to parse %s: %w: %w", filepath.Base(d.path), storage.ErrCorrupt, err)
	}
	return d.fill(v), nil
}

func (d *document[T]) Replace(ctx context.Context, v T) error {
	data, err := json.MarshalIndent(d.fill(v), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(d.path), err)
	}
	if err := writeFileAtomic(d.path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", filepath.Base(d.path), storage.ErrUnavailable, err)
	}
	return nil
}

type expenseMeta struct {
	CurrentID int64 `json:"current_id"`
}

// expenseBook stores the expense list in the flat expenses.json document
// that existing data uses, and the ID counter in a sidecar document. The
// counter is written before the list so it is never behind it.
type expenseBook struct {
	list *document[[]models.Expense]
	meta *document[expenseMeta]
}

func (b *expenseBook) Load(ctx context.Context) (models.ExpenseBook, error) {
	meta, err := b.meta.Load(ctx)
	if err != nil {
		return models.ExpenseBook{}, err
	}
	list, err := b.list.Load(ctx)
	if err != nil {
		return models.ExpenseBook{}, err
	}
	return models.ExpenseBook{CurrentID: meta.CurrentID, Expenses: list}, nil
}

func (b *expenseBook) Replace(ctx context.Context, book models.ExpenseBook) error {
	if err := b.meta.Replace(ctx, expenseMeta{CurrentID: book.CurrentID}); err != nil {
		return err
	}
	return b.list.Replace(ctx, book.Expenses)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
