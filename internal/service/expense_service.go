package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// ExpenseInput carries the caller-supplied fields of an expense.
type ExpenseInput struct {
	Amount     int64
	PayerPhone string
	GroupID    int64
	Text       string

	// Created is a Unix timestamp. Zero means now, so an expense cannot be
	// recorded at the Unix epoch itself; negative values are rejected.
	Created int64
}

// ExpenseService records expenses against groups.
type ExpenseService struct {
	state *state
}

// Create validates in and appends a new expense with the next identifier.
func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput) (expense models.Expense, err error) {
	slog.InfoContext(ctx, "CreateExpense request received",
		"group_id", in.GroupID,
		"payer", in.PayerPhone,
		"amount", in.Amount,
	)
	defer func() { finish(ctx, "CreateExpense", err, "group_id", in.GroupID) }()

	expense, err = s.build(ctx, in)
	if err != nil {
		return models.Expense{}, err
	}

	err = s.state.expenses.Update(ctx, func(book *models.ExpenseBook) error {
		numberExpenses(book)
		expense.ID = nextID(book.CurrentID)
		book.CurrentID = expense.ID
		book.Expenses = append(book.Expenses, expense)
		return nil
	})
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created", "expense_id", expense.ID, "group_id", expense.Group.ID)
	s.notify(ctx, events.ExpenseCreated, expense)

	return expense, nil
}

// Get retrieves an expense by ID.
func (s *ExpenseService) Get(ctx context.Context, id int64) (expense models.Expense, err error) {
	defer func() { finish(ctx, "GetExpense", err, "expense_id", id) }()

	list, err := s.load(ctx)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to get expense: %w", err)
	}
	i := indexOfExpense(list, id)
	if i < 0 {
		return models.Expense{}, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return list[i], nil
}

// Update replaces every field of expense id with in. The expense keeps its
// identifier and its position in the ledger.
func (s *ExpenseService) Update(ctx context.Context, id int64, in ExpenseInput) (expense models.Expense, err error) {
	slog.InfoContext(ctx, "UpdateExpense request received", "expense_id", id)
	defer func() { finish(ctx, "UpdateExpense", err, "expense_id", id) }()

	expense, err = s.build(ctx, in)
	if err != nil {
		return models.Expense{}, err
	}

	err = s.state.expenses.Update(ctx, func(book *models.ExpenseBook) error {
		numberExpenses(book)
		i := indexOfExpense(book.Expenses, id)
		if i < 0 {
			return fmt.Errorf("expense %d: %w", id, ErrNotFound)
		}
		old := book.Expenses[i]
		expense.ID = id
		if old.Payer.Phone == expense.Payer.Phone {
			expense.Payer.Link = old.Payer.Link
		}
		if old.Group.ID == expense.Group.ID {
			expense.Group.Link = old.Group.Link
		}
		book.Expenses[i] = expense
		return nil
	})
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to update expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", id)
	s.notify(ctx, events.ExpenseUpdated, expense)

	return expense, nil
}

// Delete removes expense id. Deleting an expense that does not exist is an
// ErrNotFound error. The identifier is never issued again.
func (s *ExpenseService) Delete(ctx context.Context, id int64) (err error) {
	slog.InfoContext(ctx, "DeleteExpense request received", "expense_id", id)
	defer func() { finish(ctx, "DeleteExpense", err, "expense_id", id) }()

	var removed models.Expense
	err = s.state.expenses.Update(ctx, func(book *models.ExpenseBook) error {
		numberExpenses(book)
		i := indexOfExpense(book.Expenses, id)
		if i < 0 {
			return fmt.Errorf("expense %d: %w", id, ErrNotFound)
		}
		removed = book.Expenses[i]
		book.Expenses = slices.Delete(book.Expenses, i, i+1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	s.notify(ctx, events.ExpenseDeleted, removed)

	return nil
}

// List returns every expense in ledger order.
func (s *ExpenseService) List(ctx context.Context) (expenses []models.Expense, err error) {
	defer func() { finish(ctx, "ListExpenses", err) }()
	return s.filter(ctx, func(models.Expense) bool { return true })
}

// ListByUser returns the expenses paid by phone.
func (s *ExpenseService) ListByUser(ctx context.Context, phone string) (expenses []models.Expense, err error) {
	defer func() { finish(ctx, "ListExpensesByUser", err, "phone", phone) }()
	return s.filter(ctx, func(e models.Expense) bool { return e.Payer.Phone == phone })
}

// ListByGroup returns the expenses charged to a group.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID int64) (expenses []models.Expense, err error) {
	defer func() { finish(ctx, "ListExpensesByGroup", err, "group_id", groupID) }()
	return s.byGroup(ctx, groupID)
}

// FindByCreated returns every expense with the given timestamp. Timestamps
// are not unique, so there may be several matches or none.
func (s *ExpenseService) FindByCreated(ctx context.Context, created int64) (expenses []models.Expense, err error) {
	defer func() { finish(ctx, "FindExpensesByCreated", err, "created", created) }()
	return s.filter(ctx, func(e models.Expense) bool { return e.Created == created })
}

func (s *ExpenseService) byGroup(ctx context.Context, groupID int64) ([]models.Expense, error) {
	return s.filter(ctx, func(e models.Expense) bool { return e.Group.ID == groupID })
}

func (s *ExpenseService) filter(ctx context.Context, keep func(models.Expense) bool) ([]models.Expense, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	out := []models.Expense{}
	for _, e := range list {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// load reads the ledger with legacy expenses numbered the way the next write
// will number them.
func (s *ExpenseService) load(ctx context.Context) ([]models.Expense, error) {
	book, err := s.state.expenses.Read(ctx)
	if err != nil {
		return nil, err
	}
	numberExpenses(&book)
	return book.Expenses, nil
}

// build validates in and resolves its references.
func (s *ExpenseService) build(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	if in.Amount <= 0 {
		return models.Expense{}, fmt.Errorf("%w: amount must be positive, got %d", ErrValidation, in.Amount)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.Expense{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if in.Created < 0 {
		return models.Expense{}, fmt.Errorf("%w: created must not be negative", ErrValidation)
	}

	_, ok, err := s.state.findUser(ctx, in.PayerPhone)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to resolve payer: %w", err)
	}
	if !ok {
		return models.Expense{}, fmt.Errorf("payer %s: %w", in.PayerPhone, ErrUnknownUser)
	}

	_, ok, err = s.state.findGroup(ctx, in.GroupID)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to resolve group: %w", err)
	}
	if !ok {
		return models.Expense{}, fmt.Errorf("group %d: %w", in.GroupID, ErrUnknownGroup)
	}

	created := in.Created
	if created == 0 {
		created = s.state.now().Unix()
	}

	return models.Expense{
		Amount:  in.Amount,
		Payer:   models.UserRef{Phone: in.PayerPhone},
		Group:   models.GroupRef{ID: in.GroupID},
		Text:    text,
		Created: created,
	}, nil
}

func (s *ExpenseService) notify(ctx context.Context, t events.Type, e models.Expense) {
	ev := events.New(t)
	ev.ExpenseID = e.ID
	ev.GroupID = e.Group.ID
	ev.Phone = e.Payer.Phone
	s.state.publish(ctx, ev)
}

func indexOfExpense(list []models.Expense, id int64) int {
	return slices.IndexFunc(list, func(e models.Expense) bool { return e.ID == id })
}
