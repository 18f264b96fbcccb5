package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatedHandler(t *testing.T, v *Verifier) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return v.Middleware()(next), &seenUserID
}

func TestMiddlewareNoToken(t *testing.T) {
	v := newTestVerifier(t, time.Hour)
	handler, _ := gatedHandler(t, v)

	req := httptest.NewRequest(http.MethodGet, "/getuser", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareExpiredToken(t *testing.T) {
	expired := newTestVerifier(t, -time.Minute)
	token, err := expired.IssueSessionToken("64f0a8b2c3d4e5f601234567")
	require.NoError(t, err)

	handler, _ := gatedHandler(t, expired)

	req := httptest.NewRequest(http.MethodGet, "/getuser", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareValidCookie(t *testing.T) {
	v := newTestVerifier(t, time.Hour)
	token, err := v.IssueSessionToken("64f0a8b2c3d4e5f601234567")
	require.NoError(t, err)

	handler, seen := gatedHandler(t, v)

	req := httptest.NewRequest(http.MethodGet, "/getuser", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "64f0a8b2c3d4e5f601234567", *seen)
}

func TestMiddlewareBearerFallback(t *testing.T) {
	v := newTestVerifier(t, time.Hour)
	token, err := v.IssueSessionToken("64f0a8b2c3d4e5f601234567")
	require.NoError(t, err)

	handler, seen := gatedHandler(t, v)

	req := httptest.NewRequest(http.MethodGet, "/getuser", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "64f0a8b2c3d4e5f601234567", *seen)
}

func TestMiddlewareCookieTakesPrecedence(t *testing.T) {
	v := newTestVerifier(t, time.Hour)
	cookieToken, err := v.IssueSessionToken("000000000000000000000001")
	require.NoError(t, err)
	headerToken, err := v.IssueSessionToken("000000000000000000000002")
	require.NoError(t, err)

	handler, seen := gatedHandler(t, v)

	req := httptest.NewRequest(http.MethodGet, "/getuser", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "000000000000000000000001", *seen)
}
