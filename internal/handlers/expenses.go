package handlers

import (
	"encoding/base64"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/ledger"
	"household-ledger/internal/models"

	"github.com/0xcafe-io/iz"
)

type itemRequest struct {
	Name   string `json:"name"`
	Amount number `json:"amount"`
}

type createExpenseRequest struct {
	Description   string        `json:"description"`
	Amount        number        `json:"amount"`
	Date          string        `json:"date"`
	Category      string        `json:"category"`
	Payer         string        `json:"payer"`
	Items         []itemRequest `json:"items"`
	ReceiptName   string        `json:"receipt_name"`
	ReceiptBase64 string        `json:"receipt_base64"`
}

type createItemRequest struct {
	ExpenseID number `json:"expense_id"`
	Name      string `json:"name"`
	Amount    number `json:"amount"`
}

type expensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

type expenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type itemResponse struct {
	Item *models.ExpenseItem `json:"item"`
}

// ListExpenses returns expenses, optionally limited to ?month=YYYY-MM.
func (h *Handlers) ListExpenses(r *iz.Request) iz.Responder {
	expenses, err := h.ledger.ListExpenses(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(expensesResponse{Expenses: expenses})
}

// CreateExpense records an expense with its items and optional receipt.
func (h *Handlers) CreateExpense(r *iz.Request) iz.Responder {
	var req createExpenseRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}

	in := ledger.NewExpense{
		Description: req.Description,
		Amount:      float64(req.Amount),
		Date:        req.Date,
		Category:    req.Category,
		Payer:       req.Payer,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, ledger.NewItem{Name: it.Name, Amount: float64(it.Amount)})
	}

	if req.ReceiptName != "" && req.ReceiptBase64 != "" {
		data, err := decodeReceipt(req.ReceiptBase64)
		if err != nil {
			h.logger(r.Context()).WithError(err).WithField("receipt_name", req.ReceiptName).Warn("receipt is not valid base64, ignored")
		} else {
			in.Receipt = &ledger.Receipt{Name: req.ReceiptName, Data: data}
		}
	}

	expense, err := h.ledger.AddExpense(r.Context(), in)
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(expenseResponse{Expense: expense})
}

// decodeReceipt accepts plain base64 or a data URL.
func decodeReceipt(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// DeleteExpense removes an expense and its items.
func (h *Handlers) DeleteExpense(r *iz.Request) iz.Responder {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return h.fail(r, err)
	}
	if err := h.ledger.DeleteExpense(r.Context(), id); err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(successResponse{Success: true})
}

// CreateItem adds an item to an expense.
func (h *Handlers) CreateItem(r *iz.Request) iz.Responder {
	var req createItemRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}
	expenseID := int64(req.ExpenseID)
	if expenseID <= 0 || float64(expenseID) != float64(req.ExpenseID) {
		return h.fail(r, apperrors.Invalid("invalid expense id"))
	}

	item, err := h.ledger.AddItem(r.Context(), expenseID, req.Name, float64(req.Amount))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(itemResponse{Item: item})
}

// DeleteItem removes one item.
func (h *Handlers) DeleteItem(r *iz.Request) iz.Responder {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return h.fail(r, err)
	}
	if err := h.ledger.DeleteItem(r.Context(), id); err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(successResponse{Success: true})
}

// Receipt serves a stored receipt file.
func (h *Handlers) Receipt(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := h.ledger.Receipt(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
