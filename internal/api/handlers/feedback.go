package handlers

import (
	"errors"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/email"
)

type FeedbackHandler struct {
	Service *email.Service
}

func NewFeedbackHandler(service *email.Service) *FeedbackHandler {
	return &FeedbackHandler{Service: service}
}

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Content string `json:"content"`
}

func (h *FeedbackHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	err := h.Service.SendFeedback(r.Context(), email.Feedback{
		Name:    req.Name,
		From:    req.Email,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, email.ErrInvalidAddress) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
			return
		}
		problem.Write(w, r, http.StatusBadGateway, problem.TypeServerError, "Email delivery failed", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
