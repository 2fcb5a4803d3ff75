package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func okHandler(t *testing.T, wantSubject string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantSubject != "" {
			assert.Equal(t, wantSubject, SubjectFromContext(r.Context()))
		}
		w.WriteHeader(http.StatusOK)
	})
}

func serve(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	handler := NewMiddleware(testSecret, NewDefaultPolicy(nil, nil)).Wrap(okHandler(t, ""))
	resp := serve(handler, http.MethodPost, "/api/v1/simulate", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.JSONEq(t, `{"detail":"unauthorized"}`, resp.Body.String())
}

func TestAuthMiddleware_RoleChecks(t *testing.T) {
	handler := NewMiddleware(testSecret, NewDefaultPolicy(nil, nil)).Wrap(okHandler(t, "user-1"))

	viewer := mustToken(t, "viewer", time.Hour)
	analyst := mustToken(t, "analyst", time.Hour)
	admin := mustToken(t, "admin", time.Hour)

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/api/v1/simulate", viewer, http.StatusForbidden},
		{"/api/v1/simulate", analyst, http.StatusOK},
		{"/api/v1/simulate/report.pdf", viewer, http.StatusOK},
		{"/api/v1/datasets/export.xlsx", analyst, http.StatusForbidden},
		{"/api/v1/datasets/export.xlsx", admin, http.StatusOK},
	}
	for _, tc := range cases {
		resp := serve(handler, http.MethodPost, tc.path, tc.token)
		assert.Equal(t, tc.want, resp.Code, "%s", tc.path)
	}
}

func TestAuthMiddleware_OpenRoutes(t *testing.T) {
	policy := NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	handler := NewMiddleware(testSecret, policy).Wrap(okHandler(t, ""))

	assert.Equal(t, http.StatusOK, serve(handler, http.MethodPost, "/api/simulate", "").Code)
	assert.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(handler, http.MethodOptions, "/api/v1/simulate", "").Code)
}

func TestAuthMiddleware_DisabledWithoutSecret(t *testing.T) {
	handler := NewMiddleware(nil, NewDefaultPolicy(nil, nil)).Wrap(okHandler(t, ""))
	assert.Equal(t, http.StatusOK, serve(handler, http.MethodPost, "/api/v1/datasets/export.xlsx", "").Code)
}

func TestAuthorize_Grants(t *testing.T) {
	cases := []struct {
		role    Role
		allowed []Action
		denied  []Action
	}{
		{RoleViewer, []Action{ActionReport}, []Action{ActionSimulate, ActionExportDataset}},
		{RoleAnalyst, []Action{ActionReport, ActionSimulate}, []Action{ActionExportDataset}},
		{RoleAdmin, []Action{ActionReport, ActionSimulate, ActionExportDataset}, nil},
	}
	for _, tc := range cases {
		for _, action := range tc.allowed {
			assert.NoError(t, Authorize(tc.role, action), "%s %s", tc.role, action)
		}
		for _, action := range tc.denied {
			assert.ErrorIs(t, Authorize(tc.role, action), ErrActionDenied, "%s %s", tc.role, action)
		}
	}
	assert.ErrorIs(t, Authorize(Role("root"), ActionReport), ErrActionDenied)
}

func TestPolicy_ActionFor(t *testing.T) {
	policy := NewDefaultPolicy(nil, nil)
	cases := map[string]Action{
		"/api/v1/simulate":             ActionSimulate,
		"/api/v1/simulate/report.pdf":  ActionReport,
		"/api/v1/datasets/export.xlsx": ActionExportDataset,
		"/api/v1/other":                ActionSimulate,
	}
	for path, want := range cases {
		got, ok := policy.ActionFor(httptest.NewRequest(http.MethodPost, path, nil))
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := policy.ActionFor(httptest.NewRequest(http.MethodPost, "/api/simulate", nil))
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("analyst")
	require.NoError(t, err)
	assert.Equal(t, RoleAnalyst, role)

	_, err = ParseRole("operator")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseJWT(t *testing.T) {
	_, err := ParseJWT("", testSecret)
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = ParseJWT(mustToken(t, "viewer", -time.Minute), testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ParseJWT(mustToken(t, "root", time.Hour), testSecret)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = ParseJWT(mustToken(t, "viewer", time.Hour), []byte("other"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := IssueJWT(testSecret, "user-2", RoleAnalyst, time.Hour)
	require.NoError(t, err)
	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)
	assert.Equal(t, "analyst", claims.Role)
}

func mustToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return signed
}
