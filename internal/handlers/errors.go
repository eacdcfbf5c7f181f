package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"household-ledger/internal/apperrors"

	"github.com/0xcafe-io/iz"
)

type errorResponse struct {
	Error string `json:"error"`
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides the text of errors that carry no kind.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError && !errors.Is(err, apperrors.ErrStorage) {
		return "internal error"
	}
	return err.Error()
}

func (h *Handlers) logFailure(ctx context.Context, err error, status int) {
	log := h.logger(ctx).WithError(err)
	if status >= http.StatusInternalServerError {
		log.WithField("detail", apperrors.Detail(err)).Error("request failed")
		return
	}
	log.Debug("request rejected")
}

// fail maps err to a JSON error response for iz handlers.
func (h *Handlers) fail(r *iz.Request, err error) iz.Responder {
	status := httpStatusFromError(err)
	h.logFailure(r.Context(), err, status)
	return iz.Respond().Status(status).JSON(errorResponse{Error: errorMessage(err, status)})
}

// writeError maps err to a JSON error response for plain handlers.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromError(err)
	h.logFailure(r.Context(), err, status)
	writeJSON(w, status, errorResponse{Error: errorMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
