package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
)

type StreetcodesHandler struct {
	Service *streetcodes.Service
}

func NewStreetcodesHandler(service *streetcodes.Service) *StreetcodesHandler {
	return &StreetcodesHandler{Service: service}
}

type tagAssignmentPayload struct {
	TagID     int64 `json:"tag_id"`
	Index     int   `json:"index"`
	IsVisible bool  `json:"is_visible"`
}

type streetcodeRequest struct {
	Index              int                    `json:"index"`
	Type               string                 `json:"type"`
	Title              string                 `json:"title"`
	DateString         string                 `json:"date_string"`
	Alias              string                 `json:"alias"`
	TransliterationURL string                 `json:"transliteration_url"`
	Teaser             string                 `json:"teaser"`
	EventStartDate     *time.Time             `json:"event_start_date"`
	EventEndDate       *time.Time             `json:"event_end_date"`
	FirstName          string                 `json:"first_name"`
	LastName           string                 `json:"last_name"`
	Rank               string                 `json:"rank"`
	Tags               []tagAssignmentPayload `json:"tags"`
}

type streetcodeResponse struct {
	ID                 int64      `json:"id"`
	Index              int        `json:"index"`
	Type               string     `json:"type"`
	Title              string     `json:"title"`
	DateString         string     `json:"date_string"`
	Alias              string     `json:"alias"`
	TransliterationURL string     `json:"transliteration_url"`
	Status             string     `json:"status"`
	Teaser             string     `json:"teaser"`
	EventStartDate     *time.Time `json:"event_start_date"`
	EventEndDate       *time.Time `json:"event_end_date"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Rank               string     `json:"rank"`
	ViewCount          int64      `json:"view_count"`
	TagIDs             []int64    `json:"tag_ids"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type streetcodeListResponse struct {
	Items      []streetcodeResponse `json:"items"`
	NextCursor string               `json:"next_cursor"`
}

func toStreetcodeResponse(sc *streetcodes.Streetcode) streetcodeResponse {
	tagIDs := sc.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	return streetcodeResponse{
		ID:                 sc.ID,
		Index:              sc.Index,
		Type:               sc.Type,
		Title:              sc.Title,
		DateString:         sc.DateString,
		Alias:              sc.Alias,
		TransliterationURL: sc.TransliterationURL,
		Status:             sc.Status,
		Teaser:             sc.Teaser,
		EventStartDate:     sc.EventStartDate,
		EventEndDate:       sc.EventEndDate,
		FirstName:          sc.FirstName,
		LastName:           sc.LastName,
		Rank:               sc.Rank,
		ViewCount:          sc.ViewCount,
		TagIDs:             tagIDs,
		CreatedAt:          sc.CreatedAt,
		UpdatedAt:          sc.UpdatedAt,
	}
}

func (req streetcodeRequest) toParams() streetcodes.CreateParams {
	tags := make([]streetcodes.TagAssignment, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tags = append(tags, streetcodes.TagAssignment{
			TagID:     tag.TagID,
			Index:     tag.Index,
			IsVisible: tag.IsVisible,
		})
	}
	return streetcodes.CreateParams{
		Index:              req.Index,
		Type:               req.Type,
		Title:              req.Title,
		DateString:         req.DateString,
		Alias:              req.Alias,
		TransliterationURL: req.TransliterationURL,
		Teaser:             req.Teaser,
		EventStartDate:     req.EventStartDate,
		EventEndDate:       req.EventEndDate,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Rank:               req.Rank,
		Tags:               tags,
	}
}

func (h *StreetcodesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	filters, pagination, err := streetcodes.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	result, err := h.Service.List(r.Context(), filters, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	items := make([]streetcodeResponse, 0, len(result.Streetcodes))
	for i := range result.Streetcodes {
		items = append(items, toStreetcodeResponse(&result.Streetcodes[i]))
	}
	writeJSON(w, http.StatusOK, streetcodeListResponse{Items: items, NextCursor: result.NextCursor})
}

func (h *StreetcodesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	sc, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, streetcodes.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toStreetcodeResponse(sc))
}

func (h *StreetcodesHandler) GetByIndex(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	index, err := pathID(r, "index")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	sc, err := h.Service.GetByIndex(r.Context(), int(index))
	if err != nil {
		if errors.Is(err, streetcodes.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with index %d", index)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toStreetcodeResponse(sc))
}

func (h *StreetcodesHandler) GetByURL(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	rawURL := strings.TrimSpace(r.PathValue("url"))
	if rawURL == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			problem.WithDetail("transliteration url is required"))
		return
	}

	sc, err := h.Service.GetByTransliterationURL(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, streetcodes.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with url %q", rawURL)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toStreetcodeResponse(sc))
}

func (h *StreetcodesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req streetcodeRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	sc, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		var filterErr streetcodes.FilterError
		switch {
		case errors.As(err, &filterErr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		case errors.Is(err, streetcodes.ErrIndexTaken), errors.Is(err, streetcodes.ErrURLTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Streetcode already exists", problem.WithError(err))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		}
		return
	}
	writeJSON(w, http.StatusCreated, toStreetcodeResponse(sc))
}

func (h *StreetcodesHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req streetcodeRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	sc, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		var filterErr streetcodes.FilterError
		switch {
		case errors.As(err, &filterErr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		case errors.Is(err, streetcodes.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with id %d", id)))
		case errors.Is(err, streetcodes.ErrIndexTaken), errors.Is(err, streetcodes.ErrURLTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Streetcode already exists", problem.WithError(err))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, toStreetcodeResponse(sc))
}

type streetcodeStatusRequest struct {
	Status string `json:"status"`
}

func (h *StreetcodesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req streetcodeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		var filterErr streetcodes.FilterError
		switch {
		case errors.As(err, &filterErr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		case errors.Is(err, streetcodes.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with id %d", id)))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StreetcodesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		if errors.Is(err, streetcodes.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Streetcode not found",
				problem.WithDetail(fmt.Sprintf("no streetcode with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (h *StreetcodesHandler) Count(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	onlyPublished := r.URL.Query().Get("published") == "true"
	count, err := h.Service.Count(r.Context(), onlyPublished)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}
