package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/timeline"
)

type TimelineHandler struct {
	Service *timeline.Service
}

func NewTimelineHandler(service *timeline.Service) *TimelineHandler {
	return &TimelineHandler{Service: service}
}

type timelineItemRequest struct {
	StreetcodeID    int64     `json:"streetcode_id"`
	Date            time.Time `json:"date"`
	DateViewPattern string    `json:"date_view_pattern"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
}

type timelineItemResponse struct {
	ID              int64     `json:"id"`
	StreetcodeID    int64     `json:"streetcode_id"`
	Date            time.Time `json:"date"`
	DateViewPattern string    `json:"date_view_pattern"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
}

func toTimelineItemResponse(item *timeline.Item) timelineItemResponse {
	return timelineItemResponse{
		ID:              item.ID,
		StreetcodeID:    item.StreetcodeID,
		Date:            item.Date,
		DateViewPattern: item.DateViewPattern,
		Title:           item.Title,
		Description:     item.Description,
	}
}

func (req timelineItemRequest) toParams() timeline.CreateParams {
	return timeline.CreateParams{
		StreetcodeID:    req.StreetcodeID,
		Date:            req.Date,
		DateViewPattern: req.DateViewPattern,
		Title:           req.Title,
		Description:     req.Description,
	}
}

func (h *TimelineHandler) ListByStreetcode(w http.ResponseWriter, r *http.Request) {
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

	payload := make([]timelineItemResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toTimelineItemResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	item, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, timeline.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Timeline item not found",
				problem.WithDetail(fmt.Sprintf("no timeline item with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toTimelineItemResponse(item))
}

func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req timelineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	item, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toTimelineItemResponse(item))
}

func (h *TimelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req timelineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	item, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		if errors.Is(err, timeline.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Timeline item not found",
				problem.WithDetail(fmt.Sprintf("no timeline item with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toTimelineItemResponse(item))
}

func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		if errors.Is(err, timeline.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Timeline item not found",
				problem.WithDetail(fmt.Sprintf("no timeline item with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
