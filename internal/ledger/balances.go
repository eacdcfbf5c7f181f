package ledger

import (
	"context"
	"database/sql"
	"errors"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"
)

// SetStartingBalance sets the starting balance of month, replacing any
// previous value.
func (s *Service) SetStartingBalance(ctx context.Context, month string, value float64) (*models.MonthlyBalance, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	if err := requireFinite("starting balance", value); err != nil {
		return nil, err
	}
	b, err := s.db.UpsertBalance(ctx, month, value)
	if err != nil {
		return nil, apperrors.Storage("failed to save balance", err)
	}
	return b, nil
}

// GetBalance returns the balance of month. A month never set has a zero
// balance and no UpdatedAt.
func (s *Service) GetBalance(ctx context.Context, month string) (*models.MonthlyBalance, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	b, err := s.db.GetBalance(ctx, month)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.MonthlyBalance{MonthKey: month}, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load balance", err)
	}
	return b, nil
}

// ListBalances returns every stored balance ordered by month.
func (s *Service) ListBalances(ctx context.Context) ([]models.MonthlyBalance, error) {
	balances, err := s.db.ListBalances(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to list balances", err)
	}
	return balances, nil
}
