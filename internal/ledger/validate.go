package ledger

import (
	"math"
	"slices"
	"time"

	"household-ledger/internal/apperrors"
)

// Categories lists the known expense categories.
var Categories = []string{
	"food",
	"utilities",
	"rent",
	"groceries",
	"entertainment",
	"transportation",
	"credit-card",
	"installments",
	"apartment-installment",
	"other",
}

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// KnownCategory reports whether c is one of Categories.
func KnownCategory(c string) bool {
	return slices.Contains(Categories, c)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requirePositive(field string, v float64) error {
	if !finite(v) || v <= 0 {
		return apperrors.Invalid("%s must be a positive number", field)
	}
	return nil
}

func requireFinite(field string, v float64) error {
	if !finite(v) {
		return apperrors.Invalid("%s must be a finite number", field)
	}
	return nil
}

func requireText(field, v string) error {
	if v == "" {
		return apperrors.Invalid("%s is required", field)
	}
	return nil
}

// ValidMonthKey reports whether m has the form YYYY-MM.
func ValidMonthKey(m string) bool {
	if len(m) != len(monthLayout) {
		return false
	}
	_, err := time.Parse(monthLayout, m)
	return err == nil
}

func requireMonth(m string) error {
	if !ValidMonthKey(m) {
		return apperrors.Invalid("month must be YYYY-MM")
	}
	return nil
}

func requireDate(d string) error {
	if len(d) != len(dateLayout) {
		return apperrors.Invalid("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, d); err != nil {
		return apperrors.Invalid("date must be YYYY-MM-DD")
	}
	return nil
}
