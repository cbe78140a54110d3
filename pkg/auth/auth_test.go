package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/pkg/models"
	"portfolio/pkg/testutil"
)

func newTestService(clk *testutil.StubClock) *Service {
	return NewService("admin", "hunter2", "signing-secret", 24*time.Hour, clk)
}

func TestLogin(t *testing.T) {
	svc := newTestService(testutil.FixedClock())

	token, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "hunter2"},
		{"", ""},
		{"admin", "hunter2 "},
	} {
		_, err := svc.Login(tc.user, tc.pass)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials, "%q/%q", tc.user, tc.pass)
	}
}

func TestLoginUnconfigured(t *testing.T) {
	svc := NewService("", "", "secret", time.Hour, testutil.FixedClock())
	_, err := svc.Login("", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestVerifyWithinWindow(t *testing.T) {
	clk := testutil.FixedClock()
	svc := newTestService(clk)
	token, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)

	username, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	clk.Advance(24*time.Hour - time.Second)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clk.Advance(time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiresAtExpiry(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		elapsed time.Duration
		valid   bool
	}{
		{"just before", time.Minute, time.Minute - time.Second, true},
		{"exactly at", time.Minute, time.Minute, false},
		{"after", time.Minute, time.Minute + time.Second, false},
		{"default ttl at expiry", 24 * time.Hour, 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := testutil.FixedClock()
			svc := NewService("admin", "hunter2", "signing-secret", tt.ttl, clk)
			token, err := svc.Issue("admin")
			require.NoError(t, err)

			clk.Advance(tt.elapsed)
			_, err = svc.Verify(token)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidToken)
			}
		})
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	clk := testutil.FixedClock()
	token, err := newTestService(clk).Login("admin", "hunter2")
	require.NoError(t, err)

	other := NewService("admin", "hunter2", "another-secret", 24*time.Hour, clk)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsEveryByteFlip(t *testing.T) {
	svc := newTestService(testutil.FixedClock())
	token, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		for _, mask := range []byte{0x01, 0x02, 0x20} {
			tampered := []byte(token)
			tampered[i] ^= mask
			_, err := svc.Verify(string(tampered))
			require.ErrorIs(t, err, models.ErrUnauthorized, "byte %d mask %#x", i, mask)
		}
	}
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestService(testutil.FixedClock())

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrNoToken)

	for _, raw := range []string{"abc", "a.b", "a.b.c.d", "..", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestMiddleware(t *testing.T) {
	svc := newTestService(testutil.FixedClock())
	token, err := svc.Login("admin", "hunter2")
	require.NoError(t, err)

	var seen string
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing", "", http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"garbage", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"valid", "Bearer " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
	assert.Equal(t, "admin", seen)
}
