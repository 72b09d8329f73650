package models

import "fmt"

// Standing classifies a member's position in a group settlement.
type Standing int

const (
	// Settled members paid exactly their share.
	Settled Standing = iota
	// Debtor members paid less than their share.
	Debtor
	// Creditor members paid more than their share.
	Creditor
)

func (s Standing) String() string {
	switch s {
	case Debtor:
		return "debtor"
	case Creditor:
		return "creditor"
	default:
		return "settled"
	}
}

// Balance is one member's position relative to the equal-split share.
type Balance struct {
	// User is the member this balance belongs to.
	User User

	// Paid is the sum of the group's expenses this member paid.
	Paid int64

	// Delta is share minus paid. Positive means the member owes that much,
	// negative means the member collects its absolute value.
	Delta int64
}

// Standing derives the member's position from Delta.
func (b Balance) Standing() Standing {
	switch {
	case b.Delta > 0:
		return Debtor
	case b.Delta < 0:
		return Creditor
	default:
		return Settled
	}
}

// Description renders the balance the way ledger pages show it.
func (b Balance) Description() string {
	switch b.Standing() {
	case Debtor:
		return fmt.Sprintf("Owes debt collector %d", b.Delta)
	case Creditor:
		return "DEBT COLLECTOR"
	default:
		return "Nothing to pay, nothing to collect"
	}
}

// Transfer is a suggested payment that moves a group towards settlement.
type Transfer struct {
	// From is the phone of the paying member (a debtor).
	From string

	// To is the phone of the receiving member (a creditor).
	To string

	Amount int64
}

// Settlement is the computed state of a group's finances.
type Settlement struct {
	GroupID int64

	// Total is the sum of every expense charged to the group.
	Total int64

	// Share is Total divided by the member count, rounded down.
	Share int64

	// Balances follow the group's member order.
	Balances []Balance

	// Transfers settle every debt except the rounding remainder.
	Transfers []Transfer
}
