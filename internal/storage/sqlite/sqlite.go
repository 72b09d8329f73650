// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// ledger_meta rows holding the last issued IDs.
const (
	currentGroupIDKey   = "current_group_id"
	currentExpenseIDKey = "current_expense_id"
)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps the pragmas below in effect for every statement
	// and serializes writers from different collections.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Users() storage.Collection[[]models.User] {
	return usersTable{db: s.db}
}

func (s *SQLiteStore) Groups() storage.Collection[models.GroupBook] {
	return groupsTable{db: s.db}
}

func (s *SQLiteStore) Expenses() storage.Collection[models.ExpenseBook] {
	return expensesTable{db: s.db}
}

type usersTable struct {
	db *sql.DB
}

func (t usersTable) Load(ctx context.Context) ([]models.User, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT name, phone FROM users ORDER BY position")
	if err != nil {
		return nil, unavailable("query users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Name, &u.Phone); err != nil {
			return nil, corrupt("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate users", err)
	}
	return users, nil
}

func (t usersTable) Replace(ctx context.Context, users []models.User) error {
	return withTx(ctx, t.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
			return unavailable("clear users", err)
		}
		for i, u := range users {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO users (position, phone, name) VALUES (?, ?, ?)",
				i, u.Phone, u.Name,
			)
			if err != nil {
				return unavailable("insert user", err)
			}
		}
		return nil
	})
}

type groupsTable struct {
	db *sql.DB
}

func (t groupsTable) Load(ctx context.Context) (models.GroupBook, error) {
	book := models.GroupBook{Groups: []models.Group{}}

	current, err := loadCounter(ctx, t.db, currentGroupIDKey)
	if err != nil {
		return models.GroupBook{}, err
	}
	book.CurrentID = current

	rows, err := t.db.QueryContext(ctx, "SELECT id, name FROM groups ORDER BY position")
	if err != nil {
		return models.GroupBook{}, unavailable("query groups", err)
	}
	index := make(map[int64]int)
	for rows.Next() {
		g := models.Group{Members: []models.UserRef{}}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return models.GroupBook{}, corrupt("scan group", err)
		}
		index[g.ID] = len(book.Groups)
		book.Groups = append(book.Groups, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.GroupBook{}, unavailable("iterate groups", err)
	}
	rows.Close()

	// Members are read after the groups cursor is closed: the store runs on a
	// single connection.
	rows, err = t.db.QueryContext(ctx,
		"SELECT group_id, phone, link FROM group_members ORDER BY group_id, position",
	)
	if err != nil {
		return models.GroupBook{}, unavailable("query group members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID int64
		var m models.UserRef
		if err := rows.Scan(&groupID, &m.Phone, &m.Link); err != nil {
			return models.GroupBook{}, corrupt("scan group member", err)
		}
		i, ok := index[groupID]
		if !ok {
			return models.GroupBook{}, corrupt("attach group member", fmt.Errorf("no group %d", groupID))
		}
		book.Groups[i].Members = append(book.Groups[i].Members, m)
	}
	if err := rows.Err(); err != nil {
		return models.GroupBook{}, unavailable("iterate group members", err)
	}

	return book, nil
}

func (t groupsTable) Replace(ctx context.Context, book models.GroupBook) error {
	return withTx(ctx, t.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM group_members"); err != nil {
			return unavailable("clear group members", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM groups"); err != nil {
			return unavailable("clear groups", err)
		}

		for i, g := range book.Groups {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO groups (id, name, position) VALUES (?, ?, ?)",
				g.ID, g.Name, i,
			)
			if err != nil {
				return unavailable("insert group", err)
			}
			for j, m := range g.Members {
				_, err := tx.ExecContext(ctx,
					"INSERT INTO group_members (group_id, position, phone, link) VALUES (?, ?, ?, ?)",
					g.ID, j, m.Phone, m.Link,
				)
				if err != nil {
					return unavailable("insert group member", err)
				}
			}
		}

		return saveCounter(ctx, tx, currentGroupIDKey, book.CurrentID)
	})
}

type expensesTable struct {
	db *sql.DB
}

func (t expensesTable) Load(ctx context.Context) (models.ExpenseBook, error) {
	book := models.ExpenseBook{Expenses: []models.Expense{}}

	current, err := loadCounter(ctx, t.db, currentExpenseIDKey)
	if err != nil {
		return models.ExpenseBook{}, err
	}
	book.CurrentID = current

	rows, err := t.db.QueryContext(ctx, `
		SELECT id, amount, payer_phone, payer_link, group_id, group_link, text, created
		FROM expenses ORDER BY position`,
	)
	if err != nil {
		return models.ExpenseBook{}, unavailable("query expenses", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.Amount, &e.Payer.Phone, &e.Payer.Link,
			&e.Group.ID, &e.Group.Link, &e.Text, &e.Created)
		if err != nil {
			return models.ExpenseBook{}, corrupt("scan expense", err)
		}
		book.Expenses = append(book.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return models.ExpenseBook{}, unavailable("iterate expenses", err)
	}
	return book, nil
}

func (t expensesTable) Replace(ctx context.Context, book models.ExpenseBook) error {
	return withTx(ctx, t.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
			return unavailable("clear expenses", err)
		}
		for i, e := range book.Expenses {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO expenses (position, id, amount, payer_phone, payer_link, group_id, group_link, text, created)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				i, e.ID, e.Amount, e.Payer.Phone, e.Payer.Link, e.Group.ID, e.Group.Link, e.Text, e.Created,
			)
			if err != nil {
				return unavailable("insert expense", err)
			}
		}
		return saveCounter(ctx, tx, currentExpenseIDKey, book.CurrentID)
	})
}

// loadCounter reads a ledger_meta counter. A missing row reads as 0.
func loadCounter(ctx context.Context, db *sql.DB, key string) (int64, error) {
	var value int64
	err := db.QueryRowContext(ctx, "SELECT value FROM ledger_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("get "+key, err)
	}
	return value, nil
}

func saveCounter(ctx context.Context, tx *sql.Tx, key string, value int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO ledger_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return unavailable("save "+key, err)
	}
	return nil
}

// withTx runs fn in a transaction and commits when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit transaction", err)
	}
	return nil
}

func unavailable(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, storage.ErrUnavailable, err)
}

func corrupt(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, storage.ErrCorrupt, err)
}
