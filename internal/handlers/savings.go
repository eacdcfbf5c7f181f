package handlers

import (
	"net/http"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"

	"github.com/0xcafe-io/iz"
)

type createSavingsRequest struct {
	Name   string `json:"name"`
	Target number `json:"target"`
}

type contributeRequest struct {
	Amount *number `json:"amount"`
}

type savingsListResponse struct {
	Savings []models.SavingsGoal `json:"savings"`
}

type savingResponse struct {
	Saving *models.SavingsGoal `json:"saving"`
}

// ListSavings returns every savings goal.
func (h *Handlers) ListSavings(r *iz.Request) iz.Responder {
	goals, err := h.ledger.ListSavingsGoals(r.Context())
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(savingsListResponse{Savings: goals})
}

// CreateSavings creates a savings goal.
func (h *Handlers) CreateSavings(r *iz.Request) iz.Responder {
	var req createSavingsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}
	goal, err := h.ledger.CreateSavingsGoal(r.Context(), req.Name, float64(req.Target))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(savingResponse{Saving: goal})
}

// Contribute adds an amount, possibly negative, to a savings goal.
func (h *Handlers) Contribute(r *iz.Request) iz.Responder {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return h.fail(r, err)
	}
	var req contributeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}
	if req.Amount == nil {
		return h.fail(r, apperrors.Invalid("amount is required"))
	}

	goal, err := h.ledger.Contribute(r.Context(), id, float64(*req.Amount))
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(savingResponse{Saving: goal})
}

// DeleteSavings removes a savings goal.
func (h *Handlers) DeleteSavings(r *iz.Request) iz.Responder {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		return h.fail(r, err)
	}
	if err := h.ledger.DeleteSavingsGoal(r.Context(), id); err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(successResponse{Success: true})
}
