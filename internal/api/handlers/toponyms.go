package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
)

type ToponymsHandler struct {
	Service *toponyms.Service
}

func NewToponymsHandler(service *toponyms.Service) *ToponymsHandler {
	return &ToponymsHandler{Service: service}
}

type coordinatePayload struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type toponymRequest struct {
	StreetName     string   `json:"street_name"`
	Community      string   `json:"community"`
	AdminRegionOld string   `json:"admin_region_old"`
	AdminRegionNew string   `json:"admin_region_new"`
	Gromada        string   `json:"gromada"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

type toponymResponse struct {
	ID             int64              `json:"id"`
	StreetName     string             `json:"street_name"`
	Community      string             `json:"community"`
	AdminRegionOld string             `json:"admin_region_old"`
	AdminRegionNew string             `json:"admin_region_new"`
	Gromada        string             `json:"gromada"`
	Coordinate     *coordinatePayload `json:"coordinate"`
}

func toToponymResponse(toponym *toponyms.Toponym) toponymResponse {
	resp := toponymResponse{
		ID:             toponym.ID,
		StreetName:     toponym.StreetName,
		Community:      toponym.Community,
		AdminRegionOld: toponym.AdminRegionOld,
		AdminRegionNew: toponym.AdminRegionNew,
		Gromada:        toponym.Gromada,
	}
	if toponym.Coordinate != nil {
		resp.Coordinate = &coordinatePayload{
			ID:        toponym.Coordinate.ID,
			Latitude:  toponym.Coordinate.Latitude,
			Longitude: toponym.Coordinate.Longitude,
		}
	}
	return resp
}

func (req toponymRequest) toParams() toponyms.CreateParams {
	return toponyms.CreateParams{
		StreetName:     req.StreetName,
		Community:      req.Community,
		AdminRegionOld: req.AdminRegionOld,
		AdminRegionNew: req.AdminRegionNew,
		Gromada:        req.Gromada,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}
}

func (h *ToponymsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Service.List(r.Context(), query, limit)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]toponymResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toToponymResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *ToponymsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	toponym, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, toponyms.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Toponym not found",
				problem.WithDetail(fmt.Sprintf("no toponym with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toToponymResponse(toponym))
}

func (h *ToponymsHandler) ListByStreetcode(w http.ResponseWriter, r *http.Request) {
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

	payload := make([]toponymResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toToponymResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *ToponymsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req toponymRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	toponym, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toToponymResponse(toponym))
}

func (h *ToponymsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req toponymRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	toponym, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		if errors.Is(err, toponyms.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Toponym not found",
				problem.WithDetail(fmt.Sprintf("no toponym with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toToponymResponse(toponym))
}

func (h *ToponymsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		if errors.Is(err, toponyms.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Toponym not found",
				problem.WithDetail(fmt.Sprintf("no toponym with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ToponymsHandler) Link(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, true)
}

func (h *ToponymsHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, false)
}

func (h *ToponymsHandler) link(w http.ResponseWriter, r *http.Request, attach bool) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	toponymID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if attach {
		err = h.Service.Link(r.Context(), toponymID, streetcodeID)
	} else {
		err = h.Service.Unlink(r.Context(), toponymID, streetcodeID)
	}
	if err != nil {
		if errors.Is(err, toponyms.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Toponym not found",
				problem.WithDetail(fmt.Sprintf("no link between toponym %d and streetcode %d", toponymID, streetcodeID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
