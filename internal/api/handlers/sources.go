package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/sources"
)

type SourcesHandler struct {
	Service *sources.Service
}

func NewSourcesHandler(service *sources.Service) *SourcesHandler {
	return &SourcesHandler{Service: service}
}

type sourceCategoryRequest struct {
	Title   string `json:"title"`
	ImageID *int64 `json:"image_id"`
}

type sourceCategoryResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	ImageID *int64 `json:"image_id"`
}

type categoryContentRequest struct {
	StreetcodeID int64  `json:"streetcode_id"`
	CategoryID   int64  `json:"category_id"`
	Text         string `json:"text"`
}

type categoryContentResponse struct {
	StreetcodeID int64  `json:"streetcode_id"`
	CategoryID   int64  `json:"category_id"`
	Text         string `json:"text"`
}

func toCategoryResponse(category *sources.Category) sourceCategoryResponse {
	return sourceCategoryResponse{ID: category.ID, Title: category.Title, ImageID: category.ImageID}
}

func (h *SourcesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	items, err := h.Service.ListCategories(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]sourceCategoryResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toCategoryResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *SourcesHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	category, err := h.Service.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, sources.ErrCategoryNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Source category not found",
				problem.WithDetail(fmt.Sprintf("no source category with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *SourcesHandler) ListCategoriesByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListCategoriesByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]sourceCategoryResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toCategoryResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *SourcesHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req sourceCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	category, err := h.Service.CreateCategory(r.Context(), sources.CategoryParams{Title: req.Title, ImageID: req.ImageID})
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *SourcesHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req sourceCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	category, err := h.Service.UpdateCategory(r.Context(), id, sources.CategoryParams{Title: req.Title, ImageID: req.ImageID})
	if err != nil {
		if errors.Is(err, sources.ErrCategoryNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Source category not found",
				problem.WithDetail(fmt.Sprintf("no source category with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *SourcesHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, sources.ErrCategoryNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Source category not found",
				problem.WithDetail(fmt.Sprintf("no source category with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SourcesHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	content, err := h.Service.GetContent(r.Context(), streetcodeID, categoryID)
	if err != nil {
		if errors.Is(err, sources.ErrContentNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Category content not found",
				problem.WithDetail(fmt.Sprintf("no content for streetcode %d and category %d", streetcodeID, categoryID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, categoryContentResponse{
		StreetcodeID: content.StreetcodeID,
		CategoryID:   content.CategoryID,
		Text:         content.Text,
	})
}

func (h *SourcesHandler) UpsertContent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req categoryContentRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	content, err := h.Service.UpsertContent(r.Context(), sources.ContentParams{
		StreetcodeID: req.StreetcodeID,
		CategoryID:   req.CategoryID,
		Text:         req.Text,
	})
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, categoryContentResponse{
		StreetcodeID: content.StreetcodeID,
		CategoryID:   content.CategoryID,
		Text:         content.Text,
	})
}

func (h *SourcesHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteContent(r.Context(), streetcodeID, categoryID); err != nil {
		if errors.Is(err, sources.ErrContentNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Category content not found",
				problem.WithDetail(fmt.Sprintf("no content for streetcode %d and category %d", streetcodeID, categoryID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
