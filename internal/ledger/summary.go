package ledger

import (
	"context"
	"sort"

	"household-ledger/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type bucket struct {
	total decimal.Decimal
	count int
}

// MonthSummary totals the spending of month against its starting balance.
// Amounts are summed exactly and reported rounded to cents.
func (s *Service) MonthSummary(ctx context.Context, month string) (*models.MonthSummary, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}

	balance, err := s.GetBalance(ctx, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ListExpenses(ctx, month)
	if err != nil {
		return nil, err
	}

	spent := decimal.Zero
	byCategory := map[string]*bucket{}
	byPayer := map[string]*bucket{}
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		spent = spent.Add(amount)
		add(byCategory, e.Category, amount)
		add(byPayer, e.Payer, amount)
	}

	start := decimal.NewFromFloat(balance.StartingBalance)
	return &models.MonthSummary{
		MonthKey:        month,
		StartingBalance: balance.StartingBalance,
		Spent:           cents(spent),
		Remaining:       cents(start.Sub(spent)),
		ByCategory:      totals(byCategory, spent),
		ByPayer:         totals(byPayer, spent),
	}, nil
}

func add(m map[string]*bucket, name string, amount decimal.Decimal) {
	b, ok := m[name]
	if !ok {
		b = &bucket{total: decimal.Zero}
		m[name] = b
	}
	b.total = b.total.Add(amount)
	b.count++
}

func totals(m map[string]*bucket, spent decimal.Decimal) []models.NamedTotal {
	out := make([]models.NamedTotal, 0, len(m))
	for name, b := range m {
		pct := decimal.Zero
		if spent.IsPositive() {
			pct = b.total.Div(spent).Mul(hundred)
		}
		out = append(out, models.NamedTotal{
			Name:       name,
			Total:      cents(b.total),
			Count:      b.count,
			Percentage: cents(pct),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
