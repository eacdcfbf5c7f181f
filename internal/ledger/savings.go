package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"
)

// CreateSavingsGoal creates a goal with nothing saved yet.
func (s *Service) CreateSavingsGoal(ctx context.Context, name string, target float64) (*models.SavingsGoal, error) {
	name = strings.TrimSpace(name)
	if err := requireText("name", name); err != nil {
		return nil, err
	}
	if err := requirePositive("target", target); err != nil {
		return nil, err
	}
	g, err := s.db.CreateSavings(ctx, name, target)
	if err != nil {
		return nil, apperrors.Storage("failed to save savings goal", err)
	}
	return g, nil
}

// Contribute adds delta, which may be negative, to a goal. Current is not
// clamped to zero or to the target.
func (s *Service) Contribute(ctx context.Context, id int64, delta float64) (*models.SavingsGoal, error) {
	if err := requireFinite("amount", delta); err != nil {
		return nil, err
	}
	g, err := s.db.AddToSavings(ctx, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("savings goal", id)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to update savings goal", err)
	}
	return g, nil
}

// DeleteSavingsGoal removes a goal.
func (s *Service) DeleteSavingsGoal(ctx context.Context, id int64) error {
	deleted, err := s.db.DeleteSavings(ctx, id)
	if err != nil {
		return apperrors.Storage("failed to delete savings goal", err)
	}
	if !deleted {
		return apperrors.NotFound("savings goal", id)
	}
	return nil
}

// ListSavingsGoals returns goals, most recently created first.
func (s *Service) ListSavingsGoals(ctx context.Context) ([]models.SavingsGoal, error) {
	goals, err := s.db.ListSavings(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to list savings goals", err)
	}
	return goals, nil
}
