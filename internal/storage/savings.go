package storage

import (
	"context"
	"database/sql"

	"household-ledger/internal/models"
)

const savingsColumns = "id, name, target, current, created_at"

// CreateSavings inserts a savings goal with current set to zero.
func (db *DB) CreateSavings(ctx context.Context, name string, target float64) (*models.SavingsGoal, error) {
	var g *models.SavingsGoal
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO savings (name, target, current, created_at) VALUES (?, ?, 0, datetime('now'))",
			name, target,
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		g, err = scanSavings(tx.QueryRowContext(ctx, "SELECT "+savingsColumns+" FROM savings WHERE id = ?", id))
		return err
	})
	return g, err
}

// AddToSavings increments current by delta in place and returns the updated
// goal. It returns sql.ErrNoRows, and changes nothing, when the goal does not
// exist.
func (db *DB) AddToSavings(ctx context.Context, id int64, delta float64) (*models.SavingsGoal, error) {
	var g *models.SavingsGoal
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE savings SET current = current + ? WHERE id = ?", delta, id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		g, err = scanSavings(tx.QueryRowContext(ctx, "SELECT "+savingsColumns+" FROM savings WHERE id = ?", id))
		return err
	})
	return g, err
}

// GetSavings retrieves one savings goal.
func (db *DB) GetSavings(ctx context.Context, id int64) (*models.SavingsGoal, error) {
	return scanSavings(db.conn.QueryRowContext(ctx, "SELECT "+savingsColumns+" FROM savings WHERE id = ?", id))
}

// DeleteSavings removes a savings goal and reports whether it existed.
func (db *DB) DeleteSavings(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM savings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// ListSavings returns savings goals, most recently created first.
func (db *DB) ListSavings(ctx context.Context) ([]models.SavingsGoal, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+savingsColumns+" FROM savings ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.SavingsGoal{}
	for rows.Next() {
		g, err := scanSavings(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func scanSavings(s scanner) (*models.SavingsGoal, error) {
	var g models.SavingsGoal
	if err := s.Scan(&g.ID, &g.Name, &g.Target, &g.Current, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
