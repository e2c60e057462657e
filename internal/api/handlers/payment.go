package handlers

import (
	"net/http"

	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/payment"
)

type PaymentHandler struct {
	Client *payment.Client
}

func NewPaymentHandler(client *payment.Client) *PaymentHandler {
	return &PaymentHandler{Client: client}
}

type invoiceCreateRequest struct {
	Amount      int64  `json:"amount"`
	Destination string `json:"destination"`
}

type invoiceCreateResponse struct {
	InvoiceID string `json:"invoice_id"`
	PageURL   string `json:"page_url"`
}

func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Client == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error")
		return
	}

	var req invoiceCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", problem.WithError(err))
		return
	}
	if req.Amount <= 0 {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			problem.WithDetail("amount must be positive"))
		return
	}

	invoice, err := h.Client.CreateInvoice(r.Context(), payment.InvoiceParams{
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		problem.Write(w, r, http.StatusBadGateway, problem.TypeServerError, "Payment gateway error", problem.WithError(err))
		return
	}
	writeJSON(w, http.StatusCreated, invoiceCreateResponse{
		InvoiceID: invoice.InvoiceID,
		PageURL:   invoice.PageURL,
	})
}
