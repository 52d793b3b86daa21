package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/common"
	"accelerator/internal/domain/stage"
	"accelerator/internal/http/response"
)

type StageHandler struct {
	stages *app.StageService
}

func NewStageHandler(stages *app.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

type stageRequest struct {
	DirectionID *string `json:"direction_id"`
	Type        *string `json:"type"`
	Name        *string `json:"name"`
	Assignment  *string `json:"assignment"`
}

type bindStageRequest struct {
	JoinProgramID string `json:"join_program_id"`
	StageID       string `json:"stage_id"`
	Position      int    `json:"position"`
}

func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	var st stage.Stage
	if req.DirectionID != nil {
		id, err := parseUUIDField("direction_id", *req.DirectionID)
		if err != nil {
			response.Error(w, err)
			return
		}
		st.DirectionID = id
	}
	if req.Type != nil {
		st.Type = stage.Type(*req.Type)
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Assignment != nil {
		st.Assignment = *req.Assignment
	}
	created, err := h.stages.CreateStage(r.Context(), st)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req stageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	patch := app.StagePatch{Type: req.Type, Name: req.Name, Assignment: req.Assignment}
	if req.DirectionID != nil {
		directionID, err := parseUUIDField("direction_id", *req.DirectionID)
		if err != nil {
			response.Error(w, err)
			return
		}
		patch.DirectionID = &directionID
	}
	updated, err := h.stages.UpdateStage(r.Context(), id, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.stages.DeleteStage(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	st, err := h.stages.GetStage(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, st)
}

func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	directionID, err := queryUUID(r, "direction_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.stages.ListStages(r.Context(), directionID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// Bind handles POST /ordered-stages.
func (h *StageHandler) Bind(w http.ResponseWriter, r *http.Request) {
	var req bindStageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	joinProgramID, err := parseUUIDField("join_program_id", req.JoinProgramID)
	if err != nil {
		response.Error(w, err)
		return
	}
	stageID, err := parseUUIDField("stage_id", req.StageID)
	if err != nil {
		response.Error(w, err)
		return
	}
	bound, err := h.stages.BindStage(r.Context(), joinProgramID, stageID, req.Position)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, bound)
}

func (h *StageHandler) Unbind(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.stages.UnbindStage(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *StageHandler) GetOrdered(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	o, err := h.stages.GetOrderedStage(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, o)
}

// ListOrdered handles GET /ordered-stages?join_program_id=...
func (h *StageHandler) ListOrdered(w http.ResponseWriter, r *http.Request) {
	joinProgramID, err := queryUUID(r, "join_program_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if joinProgramID.IsZero() {
		response.Error(w, common.NewValidationError("invalid query", map[string]string{"join_program_id": "join_program_id is required"}))
		return
	}
	items, err := h.stages.ListOrderedStages(r.Context(), joinProgramID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
