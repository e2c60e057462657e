package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/domain/partners"
)

type PartnersHandler struct {
	Service *partners.Service
}

func NewPartnersHandler(service *partners.Service) *PartnersHandler {
	return &PartnersHandler{Service: service}
}

type sourceLinkPayload struct {
	ID        int64  `json:"id,omitempty"`
	LinkType  string `json:"link_type"`
	TargetURL string `json:"target_url"`
}

type targetURLPayload struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

type partnerRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	LogoID       *int64              `json:"logo_id"`
	IsKeyPartner bool                `json:"is_key_partner"`
	IsVisible    bool                `json:"is_visible"`
	TargetURL    string              `json:"target_url"`
	URLTitle     string              `json:"url_title"`
	SourceLinks  []sourceLinkPayload `json:"source_links"`
}

type partnerResponse struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	LogoID        *int64              `json:"logo_id"`
	IsKeyPartner  bool                `json:"is_key_partner"`
	IsVisible     bool                `json:"is_visible"`
	TargetURL     targetURLPayload    `json:"target_url"`
	SourceLinks   []sourceLinkPayload `json:"source_links"`
	StreetcodeIDs []int64             `json:"streetcode_ids"`
}

func toPartnerResponse(partner *partners.Partner) partnerResponse {
	links := make([]sourceLinkPayload, 0, len(partner.SourceLinks))
	for _, link := range partner.SourceLinks {
		links = append(links, sourceLinkPayload{
			ID:        link.ID,
			LinkType:  link.LinkType,
			TargetURL: link.TargetURL,
		})
	}
	streetcodeIDs := partner.StreetcodeIDs
	if streetcodeIDs == nil {
		streetcodeIDs = []int64{}
	}
	return partnerResponse{
		ID:           partner.ID,
		Title:        partner.Title,
		Description:  partner.Description,
		LogoID:       partner.LogoID,
		IsKeyPartner: partner.IsKeyPartner,
		IsVisible:    partner.IsVisible,
		TargetURL: targetURLPayload{
			Href:  partner.TargetURL.Href,
			Title: partner.TargetURL.Title,
		},
		SourceLinks:   links,
		StreetcodeIDs: streetcodeIDs,
	}
}

func (req partnerRequest) toParams() partners.CreateParams {
	links := make([]partners.SourceLinkParams, 0, len(req.SourceLinks))
	for _, link := range req.SourceLinks {
		links = append(links, partners.SourceLinkParams{
			LinkType:  link.LinkType,
			TargetURL: link.TargetURL,
		})
	}
	return partners.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		LogoID:       req.LogoID,
		IsKeyPartner: req.IsKeyPartner,
		IsVisible:    req.IsVisible,
		TargetURL:    req.TargetURL,
		URLTitle:     req.URLTitle,
		SourceLinks:  links,
	}
}

func (h *PartnersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}

	payload := make([]partnerResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toPartnerResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *PartnersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	partner, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, partners.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Partner not found",
				problem.WithDetail(fmt.Sprintf("no partner with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponse(partner))
}

func (h *PartnersHandler) ListByStreetcode(w http.ResponseWriter, r *http.Request) {
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

	payload := make([]partnerResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toPartnerResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *PartnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req partnerRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	partner, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, toPartnerResponse(partner))
}

func (h *PartnersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	var req partnerRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}

	partner, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		if errors.Is(err, partners.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Partner not found",
				problem.WithDetail(fmt.Sprintf("no partner with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, toPartnerResponse(partner))
}

func (h *PartnersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		if errors.Is(err, partners.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Partner not found",
				problem.WithDetail(fmt.Sprintf("no partner with id %d", id)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PartnersHandler) Link(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, true)
}

func (h *PartnersHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, false)
}

func (h *PartnersHandler) link(w http.ResponseWriter, r *http.Request, attach bool) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	partnerID, err := pathID(r, "id")
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
		err = h.Service.Link(r.Context(), partnerID, streetcodeID)
	} else {
		err = h.Service.Unlink(r.Context(), partnerID, streetcodeID)
	}
	if err != nil {
		if errors.Is(err, partners.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Partner not found",
				problem.WithDetail(fmt.Sprintf("no link between partner %d and streetcode %d", partnerID, streetcodeID)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", problem.WithError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
