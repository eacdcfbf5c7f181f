package models

import "time"

// Expense represents a financial expense record.
type Expense struct {
	ID          int64         `json:"id"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	Date        string        `json:"date"`
	Category    string        `json:"category"`
	Payer       string        `json:"payer"`
	MonthKey    string        `json:"month_key"`
	ReceiptPath *string       `json:"receipt_path"`
	Items       []ExpenseItem `json:"items"`
}

// ExpenseItem is a free-form line of an expense. Item amounts are not
// required to add up to the parent amount.
type ExpenseItem struct {
	ID        int64   `json:"id"`
	ExpenseID int64   `json:"expense_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

// MonthlyBalance is the starting balance for one month key. UpdatedAt is nil
// for a month that has never been set.
type MonthlyBalance struct {
	MonthKey        string     `json:"month_key"`
	StartingBalance float64    `json:"starting_balance"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// SavingsGoal tracks progress toward a target. Current is never clamped.
type SavingsGoal struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Target    float64   `json:"target"`
	Current   float64   `json:"current"`
	CreatedAt time.Time `json:"created_at"`
}

// NamedTotal is an amount aggregated under a name (category or payer).
type NamedTotal struct {
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MonthSummary is the spending overview of one month.
type MonthSummary struct {
	MonthKey        string       `json:"month_key"`
	StartingBalance float64      `json:"starting_balance"`
	Spent           float64      `json:"spent"`
	Remaining       float64      `json:"remaining"`
	ByCategory      []NamedTotal `json:"by_category"`
	ByPayer         []NamedTotal `json:"by_payer"`
}
