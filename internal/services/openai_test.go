package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"resposta"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	svc := NewOpenAIService("secret", "gpt-test", server.URL)
	text, err := svc.Complete(context.Background(), "pergunta")
	require.NoError(t, err)
	assert.Equal(t, "resposta", text)
}

func TestOpenAIService_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthorization},
		{"rate limited", http.StatusTooManyRequests, ErrServiceUnavailable},
		{"server error", http.StatusInternalServerError, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			}))
			defer server.Close()

			svc := NewOpenAIService("secret", "gpt-test", server.URL)
			_, err := svc.Complete(context.Background(), "pergunta")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
