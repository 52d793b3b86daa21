package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/http/response"
)

type UserHandler struct {
	users *app.UserService
}

func NewUserHandler(users *app.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), caller.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, u)
}

// SetRole handles PATCH /users/{id}/role.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.users.SetRole(r.Context(), id, req.Role)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
