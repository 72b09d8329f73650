package models

// Expense represents an amount one user paid on behalf of a group.
type Expense struct {
	// ID is the unique, monotonically increasing identifier of the expense.
	// Legacy documents without it are numbered on load.
	ID int64 `json:"id"`

	// Amount is the paid amount in whole currency units. Always positive.
	Amount int64 `json:"amount"`

	// Payer is the user who paid.
	Payer UserRef `json:"payer"`

	// Group is the group the expense is charged to.
	Group GroupRef `json:"group"`

	// Text is a free-form description (e.g., "Groceries").
	Text string `json:"text"`

	// Created is the Unix timestamp of the expense. It is ordinary data and
	// may be edited or collide with other expenses.
	Created int64 `json:"created"`
}

// ExpenseBook is the persisted form of the expenses collection.
type ExpenseBook struct {
	// CurrentID is the last expense ID handed out. It never decreases, so
	// IDs of deleted expenses are not issued again.
	CurrentID int64 `json:"current_id"`

	// Expenses holds every expense in ledger order.
	Expenses []Expense `json:"expenses"`
}
