package oauth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc lets tests stub the outbound userinfo call.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestHandler(t *testing.T, rt roundTripFunc) *Handler {
	t.Helper()
	config := &Config{
		Resource:      "http://localhost:8080",
		RateLimitRate: -1,
	}
	if rt != nil {
		config.HTTPClient = &http.Client{Transport: rt}
	}
	handler, err := NewHandler(config)
	require.NoError(t, err)
	t.Cleanup(handler.Stop)
	return handler
}

func TestValidateGoogleToken_MissingHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	protected := handler.ValidateGoogleToken(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "resource_metadata")
	assert.Contains(t, rec.Body.String(), "missing_token")
}

func TestValidateGoogleToken_MalformedHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	protected := handler.ValidateGoogleToken(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestValidateGoogleToken_ValidToken(t *testing.T) {
	handler := newTestHandler(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{"sub":"123","email":"alice@example.com","name":"Alice"}`), nil
	})

	var gotUser *GoogleUserInfo
	protected := handler.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		gotUser = user

		token, ok := GetGoogleTokenFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "valid-token", token.AccessToken)

		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "alice@example.com", gotUser.Email)

	// The validated token must be cached for calendar clients.
	cached, err := handler.GetStore().GetToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "valid-token", cached.AccessToken)
}

func TestValidateGoogleToken_RejectedByGoogle(t *testing.T) {
	handler := newTestHandler(t, func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{}`), nil
	})

	protected := handler.ValidateGoogleToken(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "re-authenticate")
}

func TestValidateGoogleToken_MissingEmail(t *testing.T) {
	handler := newTestHandler(t, func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"sub":"123"}`), nil
	})

	protected := handler.ValidateGoogleToken(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("disabled limiter passes through", func(t *testing.T) {
		handler := newTestHandler(t, nil)

		called := false
		wrapped := handler.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		assert.True(t, called)
	})

	t.Run("limits after burst", func(t *testing.T) {
		config := &Config{
			Resource:       "http://localhost:8080",
			RateLimitRate:  1,
			RateLimitBurst: 2,
		}
		handler, err := NewHandler(config)
		require.NoError(t, err)
		t.Cleanup(handler.Stop)

		wrapped := handler.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		var lastCode int
		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			lastCode = rec.Code
		}

		assert.Equal(t, http.StatusTooManyRequests, lastCode)
	})
}

func TestActionableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want string
	}{
		{"expired", "userinfo request failed with status 401", "re-authenticate"},
		{"forbidden", "userinfo request failed with status 403", "scopes"},
		{"rate limited", "userinfo request failed with status 429", "rate limit"},
		{"network", "dial tcp: connection refused", "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := actionableErrorMessage(errString(tt.err))
			assert.Contains(t, got, tt.want)
		})
	}
}

// errString is a minimal error implementation for table tests.
type errString string

func (e errString) Error() string { return string(e) }
