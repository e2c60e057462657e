package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/config"
	"github.com/streetcode-platform/server/internal/email"
	"github.com/streetcode-platform/server/internal/instagram"
	"github.com/streetcode-platform/server/internal/payment"
)

func TestFeedbackAcceptedWhenEmailDisabled(t *testing.T) {
	service, err := email.NewService(config.EmailConfig{}, zerolog.Nop())
	require.NoError(t, err)
	h := NewFeedbackHandler(service)

	body := `{"name": "Visitor", "email": "visitor@example.com", "content": "Great project"}`
	res := httptest.NewRecorder()
	h.Send(res, httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, res.Code)
}

func TestFeedbackRejectsBadReplyAddress(t *testing.T) {
	service, err := email.NewService(config.EmailConfig{}, zerolog.Nop())
	require.NoError(t, err)
	h := NewFeedbackHandler(service)

	body := `{"name": "Visitor", "email": "not-an-address", "content": "hi"}`
	res := httptest.NewRecorder()
	h.Send(res, httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateInvoiceProxiesGateway(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/merchant/invoice/create", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"invoiceId": "inv-1", "pageUrl": "https://pay.example.com/inv-1"}`))
	}))
	defer gateway.Close()

	client := payment.NewClient(
		config.PaymentConfig{BaseURL: gateway.URL, Token: "token"},
		payment.WithHTTPClient(gateway.Client()),
	)
	h := NewPaymentHandler(client)

	body := `{"amount": 50000, "destination": "Support the project"}`
	res := httptest.NewRecorder()
	h.CreateInvoice(res, httptest.NewRequest(http.MethodPost, "/api/v1/payment/invoice", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, res.Code)

	var payload invoiceCreateResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Equal(t, "inv-1", payload.InvoiceID)
	require.Equal(t, "https://pay.example.com/inv-1", payload.PageURL)
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	h := NewPaymentHandler(payment.NewClient(config.PaymentConfig{Token: "token"}))

	res := httptest.NewRecorder()
	h.CreateInvoice(res, httptest.NewRequest(http.MethodPost, "/api/v1/payment/invoice",
		strings.NewReader(`{"amount": 0}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestInstagramFeedProxies(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/media", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": "1", "media_type": "IMAGE", "media_url": "https://cdn.example.com/1.jpg", "permalink": "https://instagram.com/p/1", "timestamp": "2024-05-01T00:00:00+0000"}]}`))
	}))
	defer api.Close()

	client := instagram.NewClient(
		config.InstagramConfig{BaseURL: api.URL, AccessToken: "token"},
		instagram.WithHTTPClient(api.Client()),
	)
	h := NewInstagramHandler(client)

	res := httptest.NewRecorder()
	h.Feed(res, httptest.NewRequest(http.MethodGet, "/api/v1/instagram/feed", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload instagramFeedResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Len(t, payload.Posts, 1)
	require.Equal(t, "IMAGE", payload.Posts[0].MediaType)
}

func TestInstagramFeedUnavailable(t *testing.T) {
	h := NewInstagramHandler(instagram.NewClient(config.InstagramConfig{}))

	res := httptest.NewRecorder()
	h.Feed(res, httptest.NewRequest(http.MethodGet, "/api/v1/instagram/feed", nil))
	require.Equal(t, http.StatusBadGateway, res.Code)
}

func TestHealthLiveness(t *testing.T) {
	h := NewHealthHandler(nil, "1.2.3", "abc1234")

	res := httptest.NewRecorder()
	h.Liveness(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload healthResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Equal(t, "ok", payload.Status)
	require.Equal(t, "1.2.3", payload.Version)
}

func TestHealthReadinessWithoutPool(t *testing.T) {
	h := NewHealthHandler(nil, "1.2.3", "abc1234")

	res := httptest.NewRecorder()
	h.Readiness(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
}
