package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	// ErrAuthorization means the credential is missing or was rejected.
	ErrAuthorization = errors.New("authorization error")
	// ErrServiceUnavailable covers transport failures, timeouts, rate limits
	// and server-side errors.
	ErrServiceUnavailable = errors.New("service unavailable")
)

const maxErrorBody = 512

// statusError maps a non-2xx HTTP status to the error taxonomy.
func statusError(code int, body string) error {
	body = truncateBody(body, maxErrorBody)
	if isAuthStatus(code, body) {
		return fmt.Errorf("%w: API request failed with status %d: %s", ErrAuthorization, code, body)
	}
	return fmt.Errorf("%w: API request failed with status %d: %s", ErrServiceUnavailable, code, body)
}

// truncateBody cuts body to at most n bytes without splitting a rune.
func truncateBody(body string, n int) string {
	if len(body) <= n {
		return body
	}
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n] + "..."
}

func isAuthStatus(code int, body string) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		// Gemini rejects bad keys with 400 rather than 401
		return strings.Contains(body, "API_KEY_INVALID") || strings.Contains(body, "API key not valid")
	}
	return false
}

// transportError wraps a failure to complete the round trip at all.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %v", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: failed to make request: %v", ErrServiceUnavailable, err)
}
