package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/auth"
)

func newService(t *testing.T, ttl time.Duration) *auth.Service {
	t.Helper()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	return auth.NewService(auth.Config{
		Secret:            "test-secret",
		OwnerEmail:        "Owner@Example.com",
		OwnerPasswordHash: hash,
		TokenTTL:          ttl,
	})
}

func TestService_Login(t *testing.T) {
	svc := newService(t, time.Hour)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "Success", email: "owner@example.com", password: "s3cret"},
		{name: "EmailIsCaseInsensitive", email: " OWNER@example.com ", password: "s3cret"},
		{name: "WrongPassword", email: "owner@example.com", password: "nope", wantErr: true},
		{name: "WrongEmail", email: "someone@example.com", password: "s3cret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, id, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, "owner@example.com", id.Email)

			verified, err := svc.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "owner@example.com", verified.Email)
		})
	}
}

func TestService_Login_NoOwnerConfigured(t *testing.T) {
	svc := auth.NewService(auth.Config{Secret: "x"})

	_, _, err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Verify(t *testing.T) {
	svc := newService(t, time.Hour)

	token, _, err := svc.Issue("owner@example.com")
	require.NoError(t, err)

	other := auth.NewService(auth.Config{Secret: "other-secret"})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_Verify_Expired(t *testing.T) {
	// Token times have whole-second precision, so this expires on issue.
	svc := newService(t, time.Nanosecond)

	token, _, err := svc.Issue("owner@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	svc := newService(t, time.Hour)

	token, _, err := svc.Issue("owner@example.com")
	require.NoError(t, err)

	var seen *auth.Identity

	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{name: "Header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, wantCode: http.StatusNoContent},
		{name: "QueryParam", setup: func(r *http.Request) { r.URL.RawQuery = "token=" + token }, wantCode: http.StatusNoContent},
		{name: "Missing", setup: func(*http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "WrongScheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, wantCode: http.StatusUnauthorized},
		{name: "Garbage", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil

			req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
			tt.setup(req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "owner@example.com", seen.Email)
			}
		})
	}
}
