package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody interface{}
		expectError  bool
	}{
		{
			name:         "healthy server",
			statusCode:   http.StatusOK,
			responseBody: healthStatus{Status: "ok"},
			expectError:  false,
		},
		{
			name:         "unhealthy server (503)",
			statusCode:   http.StatusServiceUnavailable,
			responseBody: healthStatus{Status: "unavailable"},
			expectError:  true,
		},
		{
			name:         "unexpected status string",
			statusCode:   http.StatusOK,
			responseBody: healthStatus{Status: "unavailable"},
			expectError:  true,
		},
		{
			name:         "invalid response",
			statusCode:   http.StatusOK,
			responseBody: "not json",
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if str, ok := tt.responseBody.(string); ok {
					fmt.Fprint(w, str)
				} else {
					_ = json.NewEncoder(w).Encode(tt.responseBody)
				}
			}))
			defer server.Close()

			err := performHealthCheck(server.URL, 2*time.Second)
			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPerformHealthCheckUnreachable(t *testing.T) {
	if err := performHealthCheck("http://127.0.0.1:1/healthz", 500*time.Millisecond); err == nil {
		t.Error("expected error for unreachable server")
	}
}
