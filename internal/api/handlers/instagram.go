package handlers

import (
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/instagram"
)

type InstagramHandler struct {
	Client *instagram.Client
}

func NewInstagramHandler(client *instagram.Client) *InstagramHandler {
	return &InstagramHandler{Client: client}
}

type instagramFeedResponse struct {
	Posts []instagram.Post `json:"posts"`
}

func (h *InstagramHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Client == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	posts, err := h.Client.Feed(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusBadGateway, problem.TypeServerError, "Instagram feed unavailable", problem.WithError(err))
		return
	}
	if posts == nil {
		posts = []instagram.Post{}
	}
	writeJSON(w, http.StatusOK, instagramFeedResponse{Posts: posts})
}
