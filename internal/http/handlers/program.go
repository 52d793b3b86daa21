package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"accelerator/internal/app"
	"accelerator/internal/common"
	"accelerator/internal/domain/program"
	"accelerator/internal/http/response"
)

type ProgramHandler struct {
	programs *app.ProgramService
	stages   *app.StageService
}

func NewProgramHandler(programs *app.ProgramService, stages *app.StageService) *ProgramHandler {
	return &ProgramHandler{programs: programs, stages: stages}
}

type programRequest struct {
	Name              *string   `json:"name"`
	Requirements      *string   `json:"requirements"`
	Directions        *[]string `json:"directions"`
	ProgramStart      *string   `json:"program_start"`
	ProgramEnd        *string   `json:"program_end"`
	RegistrationStart *string   `json:"registration_start"`
	RegistrationEnd   *string   `json:"registration_end"`
	IsActive          *bool     `json:"is_active"`
}

type programResponse struct {
	ID                common.UUID   `json:"id"`
	Name              string        `json:"name"`
	Requirements      string        `json:"requirements"`
	Directions        []common.UUID `json:"directions"`
	ProgramStart      string        `json:"program_start"`
	ProgramEnd        string        `json:"program_end"`
	RegistrationStart string        `json:"registration_start"`
	RegistrationEnd   string        `json:"registration_end"`
	IsActive          bool          `json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func toProgramResponse(p program.Program) programResponse {
	return programResponse{
		ID:                p.ID,
		Name:              p.Name,
		Requirements:      p.Requirements,
		Directions:        p.DirectionIDs,
		ProgramStart:      p.ProgramStart.Format(dateLayout),
		ProgramEnd:        p.ProgramEnd.Format(dateLayout),
		RegistrationStart: p.RegistrationStart.Format(dateLayout),
		RegistrationEnd:   p.RegistrationEnd.Format(dateLayout),
		IsActive:          p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (req programRequest) toPatch() (app.ProgramPatch, error) {
	patch := app.ProgramPatch{Name: req.Name, Requirements: req.Requirements, Active: req.IsActive}
	if req.Directions != nil {
		ids, err := parseUUIDList("directions", *req.Directions)
		if err != nil {
			return patch, err
		}
		patch.DirectionIDs = ids
	}
	dates := []struct {
		field string
		value *string
		dst   **time.Time
	}{
		{"program_start", req.ProgramStart, &patch.ProgramStart},
		{"program_end", req.ProgramEnd, &patch.ProgramEnd},
		{"registration_start", req.RegistrationStart, &patch.RegistrationStart},
		{"registration_end", req.RegistrationEnd, &patch.RegistrationEnd},
	}
	for _, d := range dates {
		if d.value == nil {
			continue
		}
		t, err := parseDate(d.field, *d.value)
		if err != nil {
			return patch, err
		}
		*d.dst = &t
	}
	return patch, nil
}

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.programs.CreateFromPatch(r.Context(), patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toProgramResponse(*created))
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req programRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.programs.Update(r.Context(), id, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toProgramResponse(*updated))
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.programs.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	p, err := h.programs.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toProgramResponse(*p))
}

// List handles GET /programs with an optional ?active=true filter.
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if value := strings.TrimSpace(r.URL.Query().Get("active")); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid query", map[string]string{"active": "must be a boolean"}))
			return
		}
		activeOnly = parsed
	}
	items, err := h.programs.List(r.Context(), activeOnly)
	if err != nil {
		response.Error(w, err)
		return
	}
	out := make([]programResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProgramResponse(p))
	}
	response.JSON(w, http.StatusOK, out)
}

// ListJoinPrograms handles GET /programs/{id}/join-programs.
func (h *ProgramHandler) ListJoinPrograms(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.programs.ListJoinPrograms(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ProgramHandler) ListAllJoinPrograms(w http.ResponseWriter, r *http.Request) {
	items, err := h.programs.ListAllJoinPrograms(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ProgramHandler) GetJoinProgram(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	jp, err := h.programs.GetJoinProgram(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, jp)
}

// ListJoinProgramStages handles GET /join-programs/{id}/stages.
func (h *ProgramHandler) ListJoinProgramStages(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.stages.ListOrderedStages(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
