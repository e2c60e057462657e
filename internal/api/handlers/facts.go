package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/facts"
)

type FactsHandler struct {
	Service *facts.Service
}

func NewFactsHandler(service *facts.Service) *FactsHandler {
	return &FactsHandler{Service: service}
}

type factRequest struct {
	StreetcodeID int64  `json:"streetcode_id"`
	Index        int    `json:"index"`
	Title        string `json:"title"`
	FactContent  string `json:"fact_content"`
	ImageID      *int64 `json:"image_id"`
}

type factResponse struct {
	ID           int64  `json:"id"`
	StreetcodeID int64  `json:"streetcode_id"`
	Index        int    `json:"index"`
	Title        string `json:"title"`
	FactContent  string `json:"fact_content"`
	ImageID      *int64 `json:"image_id"`
}

func toFactResponse(fact *facts.Fact) factResponse {
	return factResponse{
		ID:           fact.ID,
		StreetcodeID: fact.StreetcodeID,
		Index:        fact.Index,
		Title:        fact.Title,
		FactContent:  fact.FactContent,
		ImageID:      fact.ImageID,
	}
}

func (req factRequest) toParams() facts.CreateParams {
	return facts.CreateParams{
		StreetcodeID: req.StreetcodeID,
		Index:        req.Index,
		Title:        req.Title,
		FactContent:  req.FactContent,
		ImageID:      req.ImageID,
	}
}

func (h *FactsHandler) ListByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]factResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toFactResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *FactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	fact, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, facts.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Fact not found",
				problem.WithDetail(fmt.Sprintf("no fact with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toFactResponse(fact))
}

func (h *FactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req factRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	fact, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toFactResponse(fact))
}

func (h *FactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req factRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	fact, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		if errors.Is(err, facts.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Fact not found",
				problem.WithDetail(fmt.Sprintf("no fact with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toFactResponse(fact))
}

func (h *FactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, facts.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Fact not found",
				problem.WithDetail(fmt.Sprintf("no fact with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
