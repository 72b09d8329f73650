package service

import "github.com/mmynk/splitledger/internal/models"

// nextID returns the identifier following currentMax. Identifiers start at 1.
func nextID(currentMax int64) int64 {
	return currentMax + 1
}

func maxGroupID(book models.GroupBook) int64 {
	highest := book.CurrentID
	for _, g := range book.Groups {
		highest = max(highest, g.ID)
	}
	return highest
}

func maxExpenseID(book models.ExpenseBook) int64 {
	highest := book.CurrentID
	for _, e := range book.Expenses {
		highest = max(highest, e.ID)
	}
	return highest
}

// numberExpenses gives an identifier to every expense stored without one,
// in list order after the current maximum, and advances CurrentID past
// every identifier in the book. The result depends only on the book, so
// readers and writers number legacy expenses identically.
func numberExpenses(book *models.ExpenseBook) {
	next := maxExpenseID(*book)
	for i := range book.Expenses {
		if book.Expenses[i].ID == 0 {
			next = nextID(next)
			book.Expenses[i].ID = next
		}
	}
	book.CurrentID = next
}
