package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func TestMode(t *testing.T) {
	assert.Equal(t, ModeRegister, ModeLogin.Toggle())
	assert.Equal(t, ModeLogin, ModeRegister.Toggle())

	for in, want := range map[string]Mode{"": ModeLogin, "login": ModeLogin, "Register": ModeRegister} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("sudo")
	assert.Error(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("register")))
	assert.Equal(t, "register", m.String())
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, core.ErrPasswordTooWeak)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, CheckPassword(hash, "secret2"), ErrInvalidCredentials)
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	signed, expires, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	id, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	other := NewTokens("another-secret-value", time.Hour)
	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", time.Hour)
	signed, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	var seen string
	h := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + signed, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "user-1", seen)
			} else {
				assert.Empty(t, seen)
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}
