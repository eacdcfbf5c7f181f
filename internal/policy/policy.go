// Package policy decides which roles may perform which operations.
package policy

import "household-ledger/internal/models"

// Operation names a guarded action.
type Operation string

const (
	ReadExpenses  Operation = "read_expenses"
	WriteExpenses Operation = "write_expenses"
	ReadBalances  Operation = "read_balances"
	SetBalance    Operation = "set_balance"
	ReadSummary   Operation = "read_summary"
	ReadReceipts  Operation = "read_receipts"
	ReadSavings   Operation = "read_savings"
	WriteSavings  Operation = "write_savings"
	ManageUsers   Operation = "manage_users"
)

var (
	everyone = roles(models.RoleUser, models.RoleViewer, models.RoleEditor, models.RoleAdmin)
	editors  = roles(models.RoleEditor, models.RoleAdmin)
	admins   = roles(models.RoleAdmin)
)

var table = map[Operation]map[models.Role]bool{
	ReadExpenses:  everyone,
	ReadBalances:  everyone,
	ReadSummary:   everyone,
	ReadReceipts:  everyone,
	WriteExpenses: editors,
	SetBalance:    admins,
	ReadSavings:   admins,
	WriteSavings:  admins,
	ManageUsers:   admins,
}

func roles(rs ...models.Role) map[models.Role]bool {
	m := make(map[models.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Allowed reports whether role may perform op. Unknown roles and operations
// are denied.
func Allowed(role models.Role, op Operation) bool {
	return table[op][role]
}

// Operations lists every guarded operation.
func Operations() []Operation {
	return []Operation{
		ReadExpenses, WriteExpenses, ReadBalances, SetBalance, ReadSummary,
		ReadReceipts, ReadSavings, WriteSavings, ManageUsers,
	}
}
