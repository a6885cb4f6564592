package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/solace/internal/apperr"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", "solace")
	require.NoError(t, err)
	return m
}

func TestIssueVerify(t *testing.T) {
	m := newManager(t)
	tok, err := m.Issue(User{ID: 42, Email: "a@example.com", Name: "An"}, time.Hour)
	require.NoError(t, err)

	u, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 42, Email: "a@example.com", Name: "An"}, u)
}

func TestVerify_Rejects(t *testing.T) {
	m := newManager(t)
	other, err := NewTokenManager("other-secret", "solace")
	require.NoError(t, err)
	wrongIssuer, err := NewTokenManager("test-secret", "someone-else")
	require.NoError(t, err)

	expired, _ := m.Issue(User{ID: 1}, -time.Minute)
	foreign, _ := other.Issue(User{ID: 1}, time.Hour)
	misissued, _ := wrongIssuer.Issue(User{ID: 1}, time.Hour)

	nonNumeric := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "abc", Issuer: "solace", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	badSub, _ := nonNumeric.SignedString([]byte("test-secret"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "1", Issuer: "solace",
	}})
	unbounded, _ := noExp.SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":       "not-a-token",
		"expired":       expired,
		"wrong secret":  foreign,
		"wrong issuer":  misissued,
		"non numeric":   badSub,
		"no expiration": unbounded,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			u, err := m.Verify(tok)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m := newManager(t)
	mw := NewMiddleware(m, nil)
	valid, err := m.Issue(User{ID: 7}, time.Hour)
	require.NoError(t, err)

	var seen *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		required   bool
		header     string
		wantStatus int
		wantUser   int64
		wantError  string
	}{
		{"optional anonymous", false, "", http.StatusNoContent, 0, ""},
		{"optional valid", false, "Bearer " + valid, http.StatusNoContent, 7, ""},
		{"optional lowercase scheme", false, "bearer " + valid, http.StatusNoContent, 7, ""},
		{"optional invalid", false, "Bearer junk", http.StatusUnauthorized, 0, "invalid or expired token"},
		{"optional other scheme", false, "Basic abc", http.StatusNoContent, 0, ""},
		{"required anonymous", true, "", http.StatusUnauthorized, 0, "missing or invalid authorization"},
		{"required valid", true, "Bearer " + valid, http.StatusNoContent, 7, ""},
		{"required invalid", true, "Bearer junk", http.StatusUnauthorized, 0, "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			h := mw.Optional(next)
			if tt.required {
				h = mw.Required(next)
			}
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantUser == 0 {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantUser, seen.ID)
			}
			if tt.wantError != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, w.Body.String())
			}
		})
	}
}
