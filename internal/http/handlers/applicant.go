package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/common"
	"accelerator/internal/domain/user"
	"accelerator/internal/http/middleware"
	"accelerator/internal/http/response"
)

type ApplicantHandler struct {
	applicants *app.ApplicantService
	limiter    middleware.Limiter
}

func NewApplicantHandler(applicants *app.ApplicantService, limiter middleware.Limiter) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants, limiter: limiter}
}

type joinRequest struct {
	JoinProgramID string `json:"join_program_id"`
}

type requestStatusRequest struct {
	RequestStatus string `json:"request_status"`
}

// Submit handles POST /applicants. The applicant is always the caller.
func (h *ApplicantHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	joinProgramID, err := parseUUIDField("join_program_id", req.JoinProgramID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(r.Context(), middleware.JoinRequests, joinProgramID.String(), caller.UserID.String()) {
		response.Error(w, common.NewError(common.CodeRateLimited, "join request rate limit exceeded", nil))
		return
	}
	created, err := h.applicants.SubmitJoinRequest(r.Context(), joinProgramID, caller.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// List returns every request to staff and the caller's own requests otherwise.
func (h *ApplicantHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if !caller.Role.IsStaff() {
		items, err := h.applicants.ListByUser(r.Context(), caller.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
		return
	}
	joinProgramID, err := queryUUID(r, "join_program_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applicants.List(r.Context(), joinProgramID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicantHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.applicants.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if a.UserID != caller.UserID && !caller.Role.IsStaff() {
		response.Error(w, errForbidden("join request belongs to another user"))
		return
	}
	response.JSON(w, http.StatusOK, a)
}

// Withdraw handles DELETE /applicants/{id} for the owner or program staff.
func (h *ApplicantHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.applicants.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	canManage := caller.Role == user.RoleStaffAcceleration || caller.Role == user.RoleAdmin
	if a.UserID != caller.UserID && !canManage {
		response.Error(w, errForbidden("join request belongs to another user"))
		return
	}
	if err := h.applicants.Withdraw(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// UpdateStatus handles PATCH /applicants/{id}/status.
func (h *ApplicantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req requestStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applicants.UpdateStatus(r.Context(), id, req.RequestStatus)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
