package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streetcode-platform/server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/media", r.URL.Path)
		require.Equal(t, "token-123", r.URL.Query().Get("access_token"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{
					"id":         "101",
					"media_type": "IMAGE",
					"media_url":  "https://cdn.example.com/101.jpg",
					"permalink":  "https://instagram.com/p/101",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.InstagramConfig{
		BaseURL:     server.URL,
		AccessToken: "token-123",
		FetchLimit:  5,
	})

	posts, err := client.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "101", posts[0].ID)
	require.Equal(t, "IMAGE", posts[0].MediaType)
}

func TestFeedAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	client := NewClient(config.InstagramConfig{BaseURL: server.URL, AccessToken: "expired"})

	_, err := client.Feed(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestFeedRequiresToken(t *testing.T) {
	client := NewClient(config.InstagramConfig{})
	_, err := client.Feed(context.Background())
	require.Error(t, err)
}
