package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// SettlementService computes how a group's expenses split among its members.
type SettlementService struct {
	groups   *GroupService
	expenses *ExpenseService
}

// ComputeBalances splits the group's expenses equally among its members.
// Balances follow the group's member order.
func (s *SettlementService) ComputeBalances(ctx context.Context, groupID int64) (settlement models.Settlement, err error) {
	slog.InfoContext(ctx, "ComputeBalances request received", "group_id", groupID)
	defer func() { finish(ctx, "ComputeBalances", err, "group_id", groupID) }()

	var (
		members  []models.User
		expenses []models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.groups.usersInGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.byGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Settlement{}, err
	}

	phones := make([]string, len(members))
	for i, m := range members {
		phones[i] = m.Phone
	}
	payments := make([]calculator.Payment, len(expenses))
	for i, e := range expenses {
		payments[i] = calculator.Payment{Payer: e.Payer.Phone, Amount: e.Amount}
	}

	result, err := calculator.CalculateBalances(phones, payments)
	if errors.Is(err, calculator.ErrNoMembers) {
		return models.Settlement{}, fmt.Errorf("group %d: %w", groupID, ErrDivisionUndefined)
	}
	if err != nil {
		return models.Settlement{}, fmt.Errorf("failed to calculate balances: %w", err)
	}

	settlement = models.Settlement{
		GroupID:  groupID,
		Total:    result.Total,
		Share:    result.Share,
		Balances: make([]models.Balance, len(result.Balances)),
	}
	for i, b := range result.Balances {
		settlement.Balances[i] = models.Balance{User: members[i], Paid: b.Paid, Delta: b.Delta}
	}
	for _, edge := range calculator.SimplifyDebts(result.Balances) {
		settlement.Transfers = append(settlement.Transfers, models.Transfer{
			From:   edge.From,
			To:     edge.To,
			Amount: edge.Amount,
		})
	}

	slog.InfoContext(ctx, "ComputeBalances successful",
		"group_id", groupID,
		"members", len(members),
		"total", result.Total,
	)

	return settlement, nil
}
