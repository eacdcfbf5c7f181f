package storage

import (
	"context"
	"database/sql"

	"household-ledger/internal/models"
)

const expenseColumns = "id, description, amount, date, category, payer, month_key, receipt_path"

// ReceiptAttacher stores the receipt of a freshly inserted expense and
// returns the name it was stored under. An empty name means no receipt was
// stored; the expense is kept without one. A non-nil error aborts the whole
// insert.
type ReceiptAttacher func(expenseID int64) (string, error)

// CreateExpense inserts an expense and its items in one transaction. When
// attach is non-nil it runs inside the transaction after the items, so the
// expense only becomes visible with its receipt path already set.
func (db *DB) CreateExpense(ctx context.Context, e models.Expense, attach ReceiptAttacher) (*models.Expense, error) {
	var created *models.Expense

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (description, amount, date, category, payer, month_key, receipt_path)
			VALUES (?, ?, ?, ?, ?, ?, NULL)`,
			e.Description, e.Amount, e.Date, e.Category, e.Payer, e.MonthKey,
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		for _, it := range e.Items {
			if _, err := insertItem(ctx, tx, id, it.Name, it.Amount); err != nil {
				return err
			}
		}

		if attach != nil {
			name, err := attach(id)
			if err != nil {
				return err
			}
			if name != "" {
				if _, err := tx.ExecContext(ctx, "UPDATE expenses SET receipt_path = ? WHERE id = ?", name, id); err != nil {
					return err
				}
			}
		}

		created, err = getExpense(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetExpense retrieves a single expense with its items.
func (db *DB) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	var e *models.Expense
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		e, err = getExpense(ctx, tx, id)
		return err
	})
	return e, err
}

func getExpense(ctx context.Context, tx *sql.Tx, id int64) (*models.Expense, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if err != nil {
		return nil, err
	}
	items, err := listItems(ctx, tx, []int64{id})
	if err != nil {
		return nil, err
	}
	e.Items = items[id]
	if e.Items == nil {
		e.Items = []models.ExpenseItem{}
	}
	return e, nil
}

// ListExpenses returns expenses ordered by date descending, then ID
// descending, each with its items. An empty monthKey lists every month.
// Expenses and items are read in one transaction so they are consistent.
func (db *DB) ListExpenses(ctx context.Context, monthKey string) ([]models.Expense, error) {
	expenses := []models.Expense{}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		query := "SELECT " + expenseColumns + " FROM expenses"
		var args []any
		if monthKey != "" {
			query += " WHERE month_key = ?"
			args = append(args, monthKey)
		}
		query += " ORDER BY date DESC, id DESC"

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			e, err := scanExpense(rows)
			if err != nil {
				rows.Close()
				return err
			}
			expenses = append(expenses, *e)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		ids := make([]int64, len(expenses))
		for i, e := range expenses {
			ids[i] = e.ID
		}
		items, err := listItems(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i := range expenses {
			expenses[i].Items = items[expenses[i].ID]
			if expenses[i].Items == nil {
				expenses[i].Items = []models.ExpenseItem{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its items. It reports whether the
// expense existed.
func (db *DB) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		// Items go first so the cascade holds even on connections where
		// foreign keys are not enforced.
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_items WHERE expense_id = ?", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// CreateItem adds an item to an existing expense. It returns sql.ErrNoRows
// when the expense does not exist. The existence check and the insert are a
// single statement, so an item can never be attached to a deleted expense.
func (db *DB) CreateItem(ctx context.Context, expenseID int64, name string, amount float64) (*models.ExpenseItem, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO expense_items (expense_id, name, amount)
		SELECT id, ?, ? FROM expenses WHERE id = ?`,
		name, amount, expenseID,
	)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.ExpenseItem{ID: id, ExpenseID: expenseID, Name: name, Amount: amount}, nil
}

// ListItems returns the items of one expense.
func (db *DB) ListItems(ctx context.Context, expenseID int64) ([]models.ExpenseItem, error) {
	var items []models.ExpenseItem
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		byExpense, err := listItems(ctx, tx, []int64{expenseID})
		items = byExpense[expenseID]
		return err
	})
	if items == nil {
		items = []models.ExpenseItem{}
	}
	return items, err
}

// DeleteItem removes an item and reports whether it existed.
func (db *DB) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM expense_items WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func insertItem(ctx context.Context, tx *sql.Tx, expenseID int64, name string, amount float64) (*models.ExpenseItem, error) {
	result, err := tx.ExecContext(ctx,
		"INSERT INTO expense_items (expense_id, name, amount) VALUES (?, ?, ?)",
		expenseID, name, amount,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.ExpenseItem{ID: id, ExpenseID: expenseID, Name: name, Amount: amount}, nil
}

func listItems(ctx context.Context, tx *sql.Tx, expenseIDs []int64) (map[int64][]models.ExpenseItem, error) {
	byExpense := make(map[int64][]models.ExpenseItem, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return byExpense, nil
	}

	args := make([]any, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT id, expense_id, name, amount FROM expense_items WHERE expense_id IN ("+placeholders(len(args))+") ORDER BY id ASC",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.ExpenseItem
		if err := rows.Scan(&it.ID, &it.ExpenseID, &it.Name, &it.Amount); err != nil {
			return nil, err
		}
		byExpense[it.ExpenseID] = append(byExpense[it.ExpenseID], it)
	}
	return byExpense, rows.Err()
}

func scanExpense(s scanner) (*models.Expense, error) {
	var e models.Expense
	var receipt sql.NullString
	if err := s.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.Category, &e.Payer, &e.MonthKey, &receipt); err != nil {
		return nil, err
	}
	if receipt.Valid {
		e.ReceiptPath = &receipt.String
	}
	return &e, nil
}
