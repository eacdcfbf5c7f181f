package storage

import (
	"context"
	"database/sql"

	"household-ledger/internal/models"
)

// UpsertBalance sets the starting balance of a month. The insert-or-update is
// one statement keyed on the month_key primary key, so concurrent callers can
// never create two rows for the same month.
func (db *DB) UpsertBalance(ctx context.Context, monthKey string, startingBalance float64) (*models.MonthlyBalance, error) {
	var b *models.MonthlyBalance
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (month_key, starting_balance, updated_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(month_key) DO UPDATE SET
				starting_balance = excluded.starting_balance,
				updated_at = excluded.updated_at`,
			monthKey, startingBalance,
		); err != nil {
			return err
		}
		var err error
		b, err = scanBalance(tx.QueryRowContext(ctx,
			"SELECT month_key, starting_balance, updated_at FROM balances WHERE month_key = ?",
			monthKey,
		))
		return err
	})
	return b, err
}

// GetBalance retrieves the balance row of a month, or sql.ErrNoRows.
func (db *DB) GetBalance(ctx context.Context, monthKey string) (*models.MonthlyBalance, error) {
	return scanBalance(db.conn.QueryRowContext(ctx,
		"SELECT month_key, starting_balance, updated_at FROM balances WHERE month_key = ?",
		monthKey,
	))
}

// ListBalances returns every stored balance ordered by month.
func (db *DB) ListBalances(ctx context.Context) ([]models.MonthlyBalance, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT month_key, starting_balance, updated_at FROM balances ORDER BY month_key ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []models.MonthlyBalance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

// CountBalances returns how many rows exist for a month key.
func (db *DB) CountBalances(ctx context.Context, monthKey string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM balances WHERE month_key = ?", monthKey).Scan(&n)
	return n, err
}

func scanBalance(s scanner) (*models.MonthlyBalance, error) {
	var b models.MonthlyBalance
	var updated sql.NullTime
	if err := s.Scan(&b.MonthKey, &b.StartingBalance, &updated); err != nil {
		return nil, err
	}
	if updated.Valid {
		b.UpdatedAt = &updated.Time
	}
	return &b, nil
}
