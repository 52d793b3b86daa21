package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/common"
	"accelerator/internal/http/middleware"
	"accelerator/internal/http/response"
)

type ResponseHandler struct {
	responses *app.ResponseService
	limiter   middleware.Limiter
}

func NewResponseHandler(responses *app.ResponseService, limiter middleware.Limiter) *ResponseHandler {
	return &ResponseHandler{responses: responses, limiter: limiter}
}

type submitResponseRequest struct {
	StageID     string `json:"stage_id"`
	DirectionID string `json:"direction_id"`
	Response    string `json:"response"`
}

func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req submitResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	stageID, err := parseUUIDField("stage_id", req.StageID)
	if err != nil {
		response.Error(w, err)
		return
	}
	directionID, err := parseUUIDField("direction_id", req.DirectionID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(r.Context(), middleware.Responses, caller.UserID.String()) {
		response.Error(w, common.NewError(common.CodeRateLimited, "response rate limit exceeded", nil))
		return
	}
	created, err := h.responses.Submit(r.Context(), caller.UserID, stageID, directionID, req.Response)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if caller.Role.IsStaff() {
		items, err := h.responses.List(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
		return
	}
	items, err := h.responses.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	resp, err := h.responses.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if resp.UserID != caller.UserID && !caller.Role.IsStaff() {
		response.Error(w, errForbidden("response belongs to another user"))
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
