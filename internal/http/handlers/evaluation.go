package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/http/response"
)

type EvaluationHandler struct {
	evaluations *app.EvaluationService
}

func NewEvaluationHandler(evaluations *app.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

type evaluationRequest struct {
	ResponseID  string `json:"applicant_response_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type evaluationPatchRequest struct {
	Kind        *string `json:"kind"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

// Submit handles POST /evaluations. The author is taken from the token.
func (h *EvaluationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, err := identityFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req evaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	responseID, err := parseUUIDField("applicant_response_id", req.ResponseID)
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.evaluations.Submit(r.Context(), caller.UserID, app.EvaluationInput{
		ResponseID:  responseID,
		Kind:        req.Kind,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *EvaluationHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req evaluationPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.evaluations.Update(r.Context(), caller.UserID, id, app.EvaluationPatch{
		Kind:        req.Kind,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.evaluations.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, e)
}

// List handles GET /evaluations with an optional ?applicant_response_id filter.
func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	responseID, err := queryUUID(r, "applicant_response_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.evaluations.List(r.Context(), responseID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
