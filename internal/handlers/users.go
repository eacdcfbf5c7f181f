package handlers

import (
	"net/http"

	"household-ledger/internal/models"

	"github.com/0xcafe-io/iz"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createUserResponse struct {
	Success bool         `json:"success"`
	UserID  int64        `json:"user_id"`
	User    *models.User `json:"user"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

// CreateUser creates an account. The role defaults to user.
func (h *Handlers) CreateUser(r *iz.Request) iz.Responder {
	var req createUserRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return h.fail(r, err)
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleUser
	}

	user, err := h.creds.CreateUser(r.Context(), req.Username, req.Password, role)
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(createUserResponse{Success: true, UserID: user.ID, User: user})
}

// ListUsers returns every account ordered by id.
func (h *Handlers) ListUsers(r *iz.Request) iz.Responder {
	users, err := h.creds.ListUsers(r.Context())
	if err != nil {
		return h.fail(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(usersResponse{Users: users})
}
