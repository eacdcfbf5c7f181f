package ledger

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LedgerTestSuite provides a ledger over an in-memory database and a temp
// receipts directory.
type LedgerTestSuite struct {
	suite.Suite
	db      *storage.DB
	ctx     context.Context
	dir     string
	hook    *test.Hook
	service *Service
}

// SetupTest runs before each test
func (suite *LedgerTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()
	suite.dir = filepath.Join(suite.T().TempDir(), "receipts")

	logger, hook := test.NewNullLogger()
	suite.hook = hook
	suite.service = NewService(db, NewReceiptStore(suite.dir), logger)
}

// TearDownTest runs after each test
func (suite *LedgerTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func groceries(date string, amount float64) NewExpense {
	return NewExpense{
		Description: "Weekly shop",
		Amount:      amount,
		Date:        date,
		Category:    "groceries",
		Payer:       "you",
	}
}

func (suite *LedgerTestSuite) TestAddExpenseDerivesMonthKey() {
	in := groceries("2024-05-10", 42.50)
	in.Items = []NewItem{{Name: "Bread", Amount: 2.5}, {Name: "Cheese", Amount: 80}}

	e, err := suite.service.AddExpense(suite.ctx, in)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-05", e.MonthKey)
	assert.Equal(suite.T(), 42.50, e.Amount)
	assert.Len(suite.T(), e.Items, 2, "item totals may exceed the parent amount")
	assert.Nil(suite.T(), e.ReceiptPath)
}

func (suite *LedgerTestSuite) TestAddExpenseValidation() {
	cases := map[string]func(*NewExpense){
		"empty description": func(n *NewExpense) { n.Description = " " },
		"zero amount":       func(n *NewExpense) { n.Amount = 0 },
		"negative amount":   func(n *NewExpense) { n.Amount = -3 },
		"nan amount":        func(n *NewExpense) { n.Amount = math.NaN() },
		"infinite amount":   func(n *NewExpense) { n.Amount = math.Inf(1) },
		"bad date":          func(n *NewExpense) { n.Date = "10/05/2024" },
		"impossible date":   func(n *NewExpense) { n.Date = "2024-02-30" },
		"unknown category":  func(n *NewExpense) { n.Category = "yachts" },
		"empty payer":       func(n *NewExpense) { n.Payer = "" },
		"item without name": func(n *NewExpense) { n.Items = []NewItem{{Name: "", Amount: 1}} },
		"item zero amount":  func(n *NewExpense) { n.Items = []NewItem{{Name: "x", Amount: 0}} },
	}
	for name, mutate := range cases {
		suite.Run(name, func() {
			in := groceries("2024-05-10", 10)
			mutate(&in)
			_, err := suite.service.AddExpense(suite.ctx, in)
			assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
		})
	}

	all, err := suite.service.ListExpenses(suite.ctx, "")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), all, "nothing is written for invalid input")
}

func (suite *LedgerTestSuite) TestAddExpenseWithReceipt() {
	in := groceries("2024-05-10", 12)
	in.Receipt = &Receipt{Name: "../../scans/till.pdf", Data: []byte("%PDF")}

	e, err := suite.service.AddExpense(suite.ctx, in)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), e.ReceiptPath)
	assert.Equal(suite.T(), "expense_1_till.pdf", *e.ReceiptPath)

	data, err := os.ReadFile(filepath.Join(suite.dir, *e.ReceiptPath))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("%PDF"), data)

	served, err := suite.service.Receipt(suite.ctx, *e.ReceiptPath)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), data, served)
}

func (suite *LedgerTestSuite) TestReceiptFailureKeepsExpense() {
	blocked := filepath.Join(suite.T().TempDir(), "not-a-dir")
	require.NoError(suite.T(), os.WriteFile(blocked, []byte("x"), 0o644))

	logger, hook := test.NewNullLogger()
	service := NewService(suite.db, NewReceiptStore(blocked), logger)

	in := groceries("2024-05-10", 12)
	in.Receipt = &Receipt{Name: "till.pdf", Data: []byte("%PDF")}

	e, err := service.AddExpense(suite.ctx, in)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), e.ReceiptPath)

	entry := hook.LastEntry()
	require.NotNil(suite.T(), entry)
	assert.Equal(suite.T(), logrus.WarnLevel, entry.Level)
	assert.Equal(suite.T(), e.ID, entry.Data["expense_id"])
	assert.Equal(suite.T(), "till.pdf", entry.Data["receipt_name"])

	all, err := service.ListExpenses(suite.ctx, "2024-05")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 1)
}

func (suite *LedgerTestSuite) TestReceiptLookup() {
	_, err := suite.service.Receipt(suite.ctx, "expense_9_missing.pdf")
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, err = suite.service.Receipt(suite.ctx, "../secrets")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)

	_, err = suite.service.Receipt(suite.ctx, "..")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
}

func (suite *LedgerTestSuite) TestListExpensesRejectsBadMonth() {
	_, err := suite.service.ListExpenses(suite.ctx, "2024-5")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)

	_, err = suite.service.ListExpenses(suite.ctx, "2024-13")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
}

func (suite *LedgerTestSuite) TestDeleteExpenseRemovesItems() {
	in := groceries("2024-05-10", 42.50)
	in.Items = []NewItem{{Name: "Bread", Amount: 2.5}}
	e, err := suite.service.AddExpense(suite.ctx, in)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.service.DeleteExpense(suite.ctx, e.ID))

	items, err := suite.service.Items(suite.ctx, e.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)

	err = suite.service.DeleteExpense(suite.ctx, e.ID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *LedgerTestSuite) TestItems() {
	e, err := suite.service.AddExpense(suite.ctx, groceries("2024-05-10", 10))
	require.NoError(suite.T(), err)

	item, err := suite.service.AddItem(suite.ctx, e.ID, " Milk ", 1.25)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Milk", item.Name)

	_, err = suite.service.AddItem(suite.ctx, 999, "Milk", 1.25)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, err = suite.service.AddItem(suite.ctx, e.ID, "Milk", -1)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)

	require.NoError(suite.T(), suite.service.DeleteItem(suite.ctx, item.ID))
	assert.ErrorIs(suite.T(), suite.service.DeleteItem(suite.ctx, item.ID), apperrors.ErrNotFound)
}

func (suite *LedgerTestSuite) TestStartingBalance() {
	b, err := suite.service.GetBalance(suite.ctx, "2024-03")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, b.StartingBalance)
	assert.Nil(suite.T(), b.UpdatedAt, "unset month is synthetic")

	_, err = suite.service.SetStartingBalance(suite.ctx, "2024-03", 100)
	require.NoError(suite.T(), err)
	_, err = suite.service.SetStartingBalance(suite.ctx, "2024-03", 250)
	require.NoError(suite.T(), err)

	b, err = suite.service.GetBalance(suite.ctx, "2024-03")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 250.0, b.StartingBalance)
	assert.NotNil(suite.T(), b.UpdatedAt)

	all, err := suite.service.ListBalances(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 1)

	_, err = suite.service.SetStartingBalance(suite.ctx, "March", 1)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
	_, err = suite.service.SetStartingBalance(suite.ctx, "2024-03", math.Inf(-1))
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
}

func (suite *LedgerTestSuite) TestSavingsGoals() {
	g, err := suite.service.CreateSavingsGoal(suite.ctx, "Holiday", 1000)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, g.Current)

	_, err = suite.service.Contribute(suite.ctx, g.ID, 50)
	require.NoError(suite.T(), err)
	g, err = suite.service.Contribute(suite.ctx, g.ID, -20)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 30.0, g.Current)

	_, err = suite.service.Contribute(suite.ctx, 12345, 10)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	goals, err := suite.service.ListSavingsGoals(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), goals, 1)
	assert.Equal(suite.T(), 30.0, goals[0].Current, "failed contribution changed nothing")

	_, err = suite.service.CreateSavingsGoal(suite.ctx, "Car", 0)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
	_, err = suite.service.CreateSavingsGoal(suite.ctx, "", 10)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
	_, err = suite.service.Contribute(suite.ctx, g.ID, math.NaN())
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)

	require.NoError(suite.T(), suite.service.DeleteSavingsGoal(suite.ctx, g.ID))
	assert.ErrorIs(suite.T(), suite.service.DeleteSavingsGoal(suite.ctx, g.ID), apperrors.ErrNotFound)
}

func (suite *LedgerTestSuite) TestMonthSummary() {
	_, err := suite.service.SetStartingBalance(suite.ctx, "2024-05", 500)
	require.NoError(suite.T(), err)

	add := func(amount float64, category, payer string) {
		in := groceries("2024-05-10", amount)
		in.Category = category
		in.Payer = payer
		_, err := suite.service.AddExpense(suite.ctx, in)
		require.NoError(suite.T(), err)
	}
	add(0.1, "food", "you")
	add(0.2, "food", "spouse")
	add(99.7, "rent", "you")
	_, err = suite.service.AddExpense(suite.ctx, groceries("2024-06-01", 1000))
	require.NoError(suite.T(), err)

	s, err := suite.service.MonthSummary(suite.ctx, "2024-05")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 500.0, s.StartingBalance)
	assert.Equal(suite.T(), 100.0, s.Spent)
	assert.Equal(suite.T(), 400.0, s.Remaining)

	require.Len(suite.T(), s.ByCategory, 2)
	assert.Equal(suite.T(), "food", s.ByCategory[0].Name)
	assert.Equal(suite.T(), 0.3, s.ByCategory[0].Total)
	assert.Equal(suite.T(), 2, s.ByCategory[0].Count)
	assert.Equal(suite.T(), 0.3, s.ByCategory[0].Percentage)
	assert.Equal(suite.T(), "rent", s.ByCategory[1].Name)
	assert.Equal(suite.T(), 99.7, s.ByCategory[1].Percentage)

	require.Len(suite.T(), s.ByPayer, 2)
	assert.Equal(suite.T(), "spouse", s.ByPayer[0].Name)
	assert.Equal(suite.T(), 0.2, s.ByPayer[0].Total)
	assert.Equal(suite.T(), "you", s.ByPayer[1].Name)
	assert.Equal(suite.T(), 99.8, s.ByPayer[1].Total)
}

func (suite *LedgerTestSuite) TestMonthSummaryOfEmptyMonth() {
	s, err := suite.service.MonthSummary(suite.ctx, "2023-01")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, s.Spent)
	assert.Equal(suite.T(), 0.0, s.Remaining)
	assert.Empty(suite.T(), s.ByCategory)
	assert.NotNil(suite.T(), s.ByPayer)

	_, err = suite.service.MonthSummary(suite.ctx, "")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidInput)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "till.pdf", baseName("till.pdf"))
	assert.Equal(t, "till.pdf", baseName("/tmp/till.pdf"))
	assert.Equal(t, "till.pdf", baseName(`C:\Users\me\till.pdf`))
	assert.Equal(t, "", baseName(".."))
	assert.Equal(t, "", baseName("/"))
	assert.Equal(t, "", baseName(""))
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("apartment-installment"))
	assert.True(t, KnownCategory("credit-card"))
	assert.False(t, KnownCategory("Food"))
}

func TestValidMonthKey(t *testing.T) {
	assert.True(t, ValidMonthKey("2024-05"))
	assert.False(t, ValidMonthKey("2024-5"))
	assert.False(t, ValidMonthKey("2024-00"))
	assert.False(t, ValidMonthKey("202405"))
}
