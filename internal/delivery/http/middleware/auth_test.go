package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID string
	err    error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name          string
		authHeader    string
		verifier      domain.TokenVerifier
		wantStatus    int
		nextCalled    bool
		wantContextID string
	}{
		{
			name:          "valid token sets context and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:       "missing authorization header",
			authHeader: "",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			authHeader: "Bearer    ",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			authHeader: "Bearer expired",
			verifier:   &fakeTokenVerifier{err: errors.New("token is expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var gotUserID string
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			handler := RequireAuth(tt.verifier, logger)(next)
			req := httptest.NewRequest(http.MethodGet, "http://test/tickets/mine", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.nextCalled, nextCalled)
			if tt.wantContextID != "" {
				assert.Equal(t, tt.wantContextID, gotUserID)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var resp helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
			}
		})
	}
}

func TestUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://test/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
}
