package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/analytics"
	"github.com/streetcode-platform/server/internal/domain/ids"
	"github.com/streetcode-platform/server/internal/metrics"
)

type AnalyticsHandler struct {
	Service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

type streetcodeCoordinateRequest struct {
	StreetcodeID int64   `json:"streetcode_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type streetcodeCoordinateResponse struct {
	ID           int64   `json:"id"`
	StreetcodeID int64   `json:"streetcode_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type statisticRecordRequest struct {
	StreetcodeID int64  `json:"streetcode_id"`
	CoordinateID int64  `json:"streetcode_coordinate_id"`
	Address      string `json:"address"`
}

type statisticRecordResponse struct {
	ID           int64  `json:"id"`
	QrID         string `json:"qr_id"`
	CoordinateID int64  `json:"streetcode_coordinate_id"`
	StreetcodeID int64  `json:"streetcode_id"`
	Address      string `json:"address"`
	Count        int64  `json:"count"`
}

func toCoordinateResponse(coordinate *analytics.Coordinate) streetcodeCoordinateResponse {
	return streetcodeCoordinateResponse{
		ID:           coordinate.ID,
		StreetcodeID: coordinate.StreetcodeID,
		Latitude:     coordinate.Latitude,
		Longitude:    coordinate.Longitude,
	}
}

func toRecordResponse(record *analytics.StatisticRecord) statisticRecordResponse {
	return statisticRecordResponse{
		ID:           record.ID,
		QrID:         record.QrID,
		CoordinateID: record.CoordinateID,
		StreetcodeID: record.StreetcodeID,
		Address:      record.Address,
		Count:        record.Count,
	}
}

func (h *AnalyticsHandler) CreateCoordinate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req streetcodeCoordinateRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	coordinate, err := h.Service.CreateCoordinate(r.Context(), req.StreetcodeID, req.Latitude, req.Longitude)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toCoordinateResponse(coordinate))
}

func (h *AnalyticsHandler) GetCoordinate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	coordinate, err := h.Service.GetCoordinate(r.Context(), id)
	if err != nil {
		if errors.Is(err, analytics.ErrCoordinateNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Coordinate not found",
				problem.WithDetail(fmt.Sprintf("no coordinate with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toCoordinateResponse(coordinate))
}

func (h *AnalyticsHandler) ListCoordinatesByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListCoordinatesByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]streetcodeCoordinateResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toCoordinateResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *AnalyticsHandler) DeleteCoordinate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteCoordinate(r.Context(), id); err != nil {
		if errors.Is(err, analytics.ErrCoordinateNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Coordinate not found",
				problem.WithDetail(fmt.Sprintf("no coordinate with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalyticsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req statisticRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	record, err := h.Service.CreateRecord(r.Context(), analytics.CreateRecordParams{
		StreetcodeID: req.StreetcodeID,
		CoordinateID: req.CoordinateID,
		Address:      req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrCoordinateNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Coordinate not found",
				problem.WithDetail(fmt.Sprintf("no coordinate with id %d", req.CoordinateID)))
		case errors.Is(err, analytics.ErrCoordinateTaken):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Coordinate already tracked", problem.WithError(err))
		default:
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		}
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(record))
}

// Scan is the public QR entry point. Each hit bumps the record counter.
func (h *AnalyticsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	qrID := strings.TrimSpace(r.PathValue("qrId"))
	if qrID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			problem.WithDetail("qr id is required"))
		return
	}

	record, err := h.Service.TouchByQr(r.Context(), qrID)
	if err != nil {
		switch {
		case errors.Is(err, ids.ErrInvalidQrID):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		case errors.Is(err, analytics.ErrRecordNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Statistic record not found",
				problem.WithDetail(fmt.Sprintf("no statistic record with qr id %q", qrID)))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		}
		return
	}
	metrics.QrScansTotal.Inc()
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

type recordExistsResponse struct {
	Exists bool `json:"exists"`
}

// RecordExists reports whether a statistic record is registered for the
// scanned QR id without bumping its counter.
func (h *AnalyticsHandler) RecordExists(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	qrID := strings.TrimSpace(r.PathValue("qrId"))
	if qrID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			problem.WithDetail("qr id is required"))
		return
	}

	exists, err := h.Service.ExistsByQr(r.Context(), qrID)
	if err != nil {
		if errors.Is(err, ids.ErrInvalidQrID) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, recordExistsResponse{Exists: exists})
}

func (h *AnalyticsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	record, err := h.Service.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, analytics.ErrRecordNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Statistic record not found",
				problem.WithDetail(fmt.Sprintf("no statistic record with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *AnalyticsHandler) ListRecordsByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListRecordsByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]statisticRecordResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toRecordResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *AnalyticsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, analytics.ErrRecordNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Statistic record not found",
				problem.WithDetail(fmt.Sprintf("no statistic record with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
