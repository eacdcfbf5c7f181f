// Package ledger implements the household ledger: expenses and their items,
// monthly starting balances, savings goals, receipts and month summaries.
//
// Every input is validated before anything is written. Persistence failures
// are returned as apperrors.ErrStorage; missing rows as apperrors.ErrNotFound.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"

	"github.com/sirupsen/logrus"
)

// Service is the ledger.
type Service struct {
	db       *storage.DB
	receipts *ReceiptStore
	log      logrus.FieldLogger
}

// NewService creates a ledger Service.
func NewService(db *storage.DB, receipts *ReceiptStore, log logrus.FieldLogger) *Service {
	return &Service{db: db, receipts: receipts, log: log}
}

// NewExpense is the input of AddExpense.
type NewExpense struct {
	Description string
	Amount      float64
	Date        string
	Category    string
	Payer       string
	Items       []NewItem
	Receipt     *Receipt
}

// NewItem is one line of a NewExpense.
type NewItem struct {
	Name   string
	Amount float64
}

// Receipt is an uploaded receipt file.
type Receipt struct {
	Name string
	Data []byte
}

func (n *NewExpense) normalize() error {
	n.Description = strings.TrimSpace(n.Description)
	n.Category = strings.TrimSpace(n.Category)
	n.Payer = strings.TrimSpace(n.Payer)
	n.Date = strings.TrimSpace(n.Date)

	if err := requireText("description", n.Description); err != nil {
		return err
	}
	if err := requirePositive("amount", n.Amount); err != nil {
		return err
	}
	if err := requireDate(n.Date); err != nil {
		return err
	}
	if !KnownCategory(n.Category) {
		return apperrors.Invalid("unknown category %q", n.Category)
	}
	if err := requireText("payer", n.Payer); err != nil {
		return err
	}
	for i := range n.Items {
		n.Items[i].Name = strings.TrimSpace(n.Items[i].Name)
		if err := requireText("item name", n.Items[i].Name); err != nil {
			return err
		}
		if err := requirePositive("item amount", n.Items[i].Amount); err != nil {
			return err
		}
	}
	return nil
}

// AddExpense records an expense with its items. A receipt that cannot be
// stored is logged and dropped; the expense is kept without it.
func (s *Service) AddExpense(ctx context.Context, in NewExpense) (*models.Expense, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	e := models.Expense{
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		Payer:       in.Payer,
		MonthKey:    in.Date[:7],
	}
	for _, it := range in.Items {
		e.Items = append(e.Items, models.ExpenseItem{Name: it.Name, Amount: it.Amount})
	}

	var written string
	var attach storage.ReceiptAttacher
	if in.Receipt != nil && in.Receipt.Name != "" {
		attach = func(id int64) (string, error) {
			name, err := s.receipts.Save(id, in.Receipt.Name, in.Receipt.Data)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"expense_id":   id,
					"receipt_name": in.Receipt.Name,
				}).Warn("failed to store receipt, expense saved without it")
				return "", nil
			}
			written = name
			return name, nil
		}
	}

	created, err := s.db.CreateExpense(ctx, e, attach)
	if err != nil {
		if written != "" {
			if rmErr := s.receipts.Remove(written); rmErr != nil {
				s.log.WithError(rmErr).WithField("receipt", written).Warn("failed to remove orphaned receipt")
			}
		}
		return nil, apperrors.Storage("failed to save expense", err)
	}
	return created, nil
}

// ListExpenses returns expenses with their items, newest first. An empty
// month lists every month.
func (s *Service) ListExpenses(ctx context.Context, month string) ([]models.Expense, error) {
	if month != "" {
		if err := requireMonth(month); err != nil {
			return nil, err
		}
	}
	expenses, err := s.db.ListExpenses(ctx, month)
	if err != nil {
		return nil, apperrors.Storage("failed to list expenses", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its items.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	deleted, err := s.db.DeleteExpense(ctx, id)
	if err != nil {
		return apperrors.Storage("failed to delete expense", err)
	}
	if !deleted {
		return apperrors.NotFound("expense", id)
	}
	return nil
}

// AddItem adds an item to an existing expense. The parent amount is left
// unchanged.
func (s *Service) AddItem(ctx context.Context, expenseID int64, name string, amount float64) (*models.ExpenseItem, error) {
	name = strings.TrimSpace(name)
	if err := requireText("item name", name); err != nil {
		return nil, err
	}
	if err := requirePositive("item amount", amount); err != nil {
		return nil, err
	}

	item, err := s.db.CreateItem(ctx, expenseID, name, amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to save item", err)
	}
	return item, nil
}

// Items returns the items of an expense.
func (s *Service) Items(ctx context.Context, expenseID int64) ([]models.ExpenseItem, error) {
	items, err := s.db.ListItems(ctx, expenseID)
	if err != nil {
		return nil, apperrors.Storage("failed to list items", err)
	}
	return items, nil
}

// DeleteItem removes one item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	deleted, err := s.db.DeleteItem(ctx, id)
	if err != nil {
		return apperrors.Storage("failed to delete item", err)
	}
	if !deleted {
		return apperrors.NotFound("item", id)
	}
	return nil
}

// Receipt returns the content of a stored receipt.
func (s *Service) Receipt(ctx context.Context, name string) ([]byte, error) {
	if !IsBareName(name) {
		return nil, apperrors.Invalid("invalid receipt name")
	}
	data, err := s.receipts.Read(name)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: receipt %s", apperrors.ErrNotFound, name)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to read receipt", err)
	}
	return data, nil
}
