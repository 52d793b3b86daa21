package handlers

import (
	"net/http"

	"accelerator/internal/app"
	"accelerator/internal/http/response"
)

type DirectionHandler struct {
	directions *app.DirectionService
}

func NewDirectionHandler(directions *app.DirectionService) *DirectionHandler {
	return &DirectionHandler{directions: directions}
}

func (h *DirectionHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.directions.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *DirectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	d, err := h.directions.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}
