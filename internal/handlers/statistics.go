package handlers

import (
	"net/http"
	"strings"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"

	"github.com/0xcafe-io/iz"
)

type setBalanceRequest struct {
	MonthKey        string  `json:"month_key"`
	StartingBalance *number `json:"starting_balance"`
}

type balancesResponse struct {
	Balances []models.MonthlyBalance `json:"balances"`
}

// Balances returns the balance of ?month=YYYY-MM, or every stored balance
// when no month is given.
func (h *Handlers) Balances(r *iz.Request) iz.Responder {
	month := r.URL.Query().Get("month")
	if month == "" {
		balances, err := h.ledger.ListBalances(r.Context())
		if err != nil {
			return h.fail(r, err)
		}
		return iz.Respond().Status(http.StatusOK).JSON(balancesResponse{Balances: balances})
	}

	balance, err := h.ledger.GetBalance(r.Context(), month)
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(balance)
}

// SetBalance sets the starting balance of a month.
func (h *Handlers) SetBalance(r *iz.Request) iz.Responder {
	var req setBalanceRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}
	if strings.TrimSpace(req.MonthKey) == "" || req.StartingBalance == nil {
		return h.fail(r, apperrors.Invalid("month_key and starting_balance are required"))
	}

	balance, err := h.ledger.SetStartingBalance(r.Context(), strings.TrimSpace(req.MonthKey), float64(*req.StartingBalance))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(balance)
}

// Summary returns the spending overview of ?month=YYYY-MM.
func (h *Handlers) Summary(r *iz.Request) iz.Responder {
	summary, err := h.ledger.MonthSummary(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(summary)
}
