package calculator

import (
	"cmp"
	"errors"
	"slices"
)

// ErrNoMembers is returned when balances are requested for a group without members.
var ErrNoMembers = errors.New("cannot split expenses among zero members")

// Payment is an expense reduced to what balance calculations need.
type Payment struct {
	Payer  string // Phone of the user who paid
	Amount int64
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	Member string
	Paid   int64 // Total amount this member paid for the group
	Delta  int64 // Share minus paid. Positive = owes money, Negative = owed money
}

// GroupBalances is the outcome of an equal split over a group.
type GroupBalances struct {
	Total    int64
	Share    int64 // Total / member count, rounded down
	Balances []MemberBalance
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount int64
}

// CalculateBalances splits the sum of payments equally among members and
// reports how far each member is from their share.
//
// Algorithm:
// - total = sum of all payments, including payments by non-members
// - share = total / len(members), rounded down
// - paid[m] = sum of payments made by m
// - delta[m] = share - paid[m]
//
// Because the share is rounded down, deltas may sum to a small negative
// number instead of zero. Balances follow the order of members.
func CalculateBalances(members []string, payments []Payment) (GroupBalances, error) {
	if len(members) == 0 {
		return GroupBalances{}, ErrNoMembers
	}

	var total int64
	paid := make(map[string]int64, len(members))
	for _, p := range payments {
		total += p.Amount
		paid[p.Payer] += p.Amount
	}

	// Amounts are positive, so truncating division is floor division.
	share := total / int64(len(members))

	balances := make([]MemberBalance, len(members))
	for i, m := range members {
		balances[i] = MemberBalance{
			Member: m,
			Paid:   paid[m],
			Delta:  share - paid[m],
		}
	}

	return GroupBalances{Total: total, Share: share, Balances: balances}, nil
}

// SimplifyDebts pairs debtors with creditors so that every debt is paid with
// at most len(balances)-1 transfers. Credit left over from rounding the share
// down stays unassigned.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type party struct {
		member string
		amount int64
	}

	// Create lists of debtors (owe money) and creditors (owed money)
	var debtors, creditors []party
	for _, b := range balances {
		if b.Delta > 0 {
			debtors = append(debtors, party{b.Member, b.Delta})
		} else if b.Delta < 0 {
			creditors = append(creditors, party{b.Member, -b.Delta})
		}
	}

	// Greedy algorithm: match largest debts with largest credits.
	// Stable sort keeps member order among equal amounts.
	byAmountDesc := func(a, b party) int { return cmp.Compare(b.amount, a.amount) }
	slices.SortStableFunc(debtors, byAmountDesc)
	slices.SortStableFunc(creditors, byAmountDesc)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		edges = append(edges, DebtEdge{
			From:   debtors[i].member,
			To:     creditors[j].member,
			Amount: amount,
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	return edges
}
