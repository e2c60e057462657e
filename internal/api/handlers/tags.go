package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/tags"
)

type TagsHandler struct {
	Service *tags.Service
}

func NewTagsHandler(service *tags.Service) *TagsHandler {
	return &TagsHandler{Service: service}
}

type tagRequest struct {
	Title string `json:"title"`
}

type tagResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type streetcodeTagResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Index     int    `json:"index"`
	IsVisible bool   `json:"is_visible"`
}

func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]tagResponse, 0, len(items))
	for _, tag := range items {
		payload = append(payload, tagResponse{ID: tag.ID, Title: tag.Title})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *TagsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	tag, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tags.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Tag not found",
				problem.WithDetail(fmt.Sprintf("no tag with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, tagResponse{ID: tag.ID, Title: tag.Title})
}

func (h *TagsHandler) ListByStreetcode(w http.ResponseWriter, r *http.Request) {
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

	payload := make([]streetcodeTagResponse, 0, len(items))
	for _, tag := range items {
		payload = append(payload, streetcodeTagResponse{
			ID:        tag.ID,
			Title:     tag.Title,
			Index:     tag.Index,
			IsVisible: tag.IsVisible,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	tag, err := h.Service.Create(r.Context(), req.Title)
	if err != nil {
		if errors.Is(err, tags.ErrTitleTaken) {
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Tag title already exists", problem.WithError(err))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, tagResponse{ID: tag.ID, Title: tag.Title})
}

func (h *TagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	tag, err := h.Service.Update(r.Context(), id, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, tags.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Tag not found",
				problem.WithDetail(fmt.Sprintf("no tag with id %d", id)))
		case errors.Is(err, tags.ErrTitleTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Tag title already exists", problem.WithError(err))
		default:
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, tagResponse{ID: tag.ID, Title: tag.Title})
}

func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		if errors.Is(err, tags.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Tag not found",
				problem.WithDetail(fmt.Sprintf("no tag with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
