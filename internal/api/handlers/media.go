package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/media"
)

type MediaHandler struct {
	Service *media.Service
}

func NewMediaHandler(service *media.Service) *MediaHandler {
	return &MediaHandler{Service: service}
}

type imageUploadRequest struct {
	Title    string `json:"title"`
	Alt      string `json:"alt"`
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

type imageResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Alt      string `json:"alt"`
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64,omitempty"`
}

type audioUploadRequest struct {
	StreetcodeID *int64 `json:"streetcode_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MimeType     string `json:"mime_type"`
	Base64       string `json:"base64"`
}

type audioResponse struct {
	ID           int64  `json:"id"`
	StreetcodeID *int64 `json:"streetcode_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MimeType     string `json:"mime_type"`
	Base64       string `json:"base64,omitempty"`
}

type videoRequest struct {
	StreetcodeID int64  `json:"streetcode_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type videoResponse struct {
	ID           int64  `json:"id"`
	StreetcodeID int64  `json:"streetcode_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

func toVideoResponse(video *media.Video) videoResponse {
	return videoResponse{
		ID:           video.ID,
		StreetcodeID: video.StreetcodeID,
		URL:          video.URL,
		Title:        video.Title,
		Description:  video.Description,
	}
}

func (h *MediaHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	image, base64Data, err := h.Service.GetImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrImageNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Image not found",
				problem.WithDetail(fmt.Sprintf("no image with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{
		ID:       image.ID,
		Title:    image.Title,
		Alt:      image.Alt,
		MimeType: image.MimeType,
		Base64:   base64Data,
	})
}

func (h *MediaHandler) ListImagesByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListImagesByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]imageResponse, 0, len(items))
	for _, image := range items {
		payload = append(payload, imageResponse{
			ID:       image.ID,
			Title:    image.Title,
			Alt:      image.Alt,
			MimeType: image.MimeType,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req imageUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	image, err := h.Service.UploadImage(r.Context(), media.UploadImageParams{
		Title:    req.Title,
		Alt:      req.Alt,
		MimeType: req.MimeType,
		Base64:   req.Base64,
	})
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, imageResponse{
		ID:       image.ID,
		Title:    image.Title,
		Alt:      image.Alt,
		MimeType: image.MimeType,
	})
}

func (h *MediaHandler) LinkImage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	imageID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.LinkImage(r.Context(), imageID, streetcodeID); err != nil {
		if errors.Is(err, media.ErrImageNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Image not found",
				problem.WithDetail(fmt.Sprintf("no image with id %d", imageID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteImage(r.Context(), id); err != nil {
		if errors.Is(err, media.ErrImageNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Image not found",
				problem.WithDetail(fmt.Sprintf("no image with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	audio, base64Data, err := h.Service.GetAudio(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrAudioNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Audio not found",
				problem.WithDetail(fmt.Sprintf("no audio with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{
		ID:           audio.ID,
		StreetcodeID: audio.StreetcodeID,
		Title:        audio.Title,
		Description:  audio.Description,
		MimeType:     audio.MimeType,
		Base64:       base64Data,
	})
}

func (h *MediaHandler) GetAudioByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	audio, err := h.Service.GetAudioByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		if errors.Is(err, media.ErrAudioNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Audio not found",
				problem.WithDetail(fmt.Sprintf("no audio for streetcode %d", streetcodeID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{
		ID:           audio.ID,
		StreetcodeID: audio.StreetcodeID,
		Title:        audio.Title,
		Description:  audio.Description,
		MimeType:     audio.MimeType,
	})
}

func (h *MediaHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req audioUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	audio, err := h.Service.UploadAudio(r.Context(), media.UploadAudioParams{
		StreetcodeID: req.StreetcodeID,
		Title:        req.Title,
		Description:  req.Description,
		MimeType:     req.MimeType,
		Base64:       req.Base64,
	})
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, audioResponse{
		ID:           audio.ID,
		StreetcodeID: audio.StreetcodeID,
		Title:        audio.Title,
		Description:  audio.Description,
		MimeType:     audio.MimeType,
	})
}

func (h *MediaHandler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteAudio(r.Context(), id); err != nil {
		if errors.Is(err, media.ErrAudioNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Audio not found",
				problem.WithDetail(fmt.Sprintf("no audio with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	video, err := h.Service.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrVideoNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Video not found",
				problem.WithDetail(fmt.Sprintf("no video with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(video))
}

func (h *MediaHandler) ListVideosByStreetcode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	streetcodeID, err := pathID(r, "streetcodeId")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	items, err := h.Service.ListVideosByStreetcode(r.Context(), streetcodeID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]videoResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toVideoResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *MediaHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	video, err := h.Service.CreateVideo(r.Context(), media.VideoParams{
		StreetcodeID: req.StreetcodeID,
		URL:          req.URL,
		Title:        req.Title,
		Description:  req.Description,
	})
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toVideoResponse(video))
}

func (h *MediaHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	video, err := h.Service.UpdateVideo(r.Context(), id, media.VideoParams{
		StreetcodeID: req.StreetcodeID,
		URL:          req.URL,
		Title:        req.Title,
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, media.ErrVideoNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Video not found",
				problem.WithDetail(fmt.Sprintf("no video with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(video))
}

func (h *MediaHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	if err := h.Service.DeleteVideo(r.Context(), id); err != nil {
		if errors.Is(err, media.ErrVideoNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Video not found",
				problem.WithDetail(fmt.Sprintf("no video with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
