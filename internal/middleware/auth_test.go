package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/utils"
)

const testSecret = "unit-test-secret"

func callWithAuth(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID string
	next := func(c echo.Context) error {
		gotID, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	}
	err := BearerAuth(testSecret, "admin-sentinel")(next)(c)
	require.NoError(t, err)
	return rec, gotID
}

func TestBearerAuthMissingHeader(t *testing.T) {
	rec, _ := callWithAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token manquant")
}

func TestBearerAuthMalformedHeader(t *testing.T) {
	rec, _ := callWithAuth(t, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthGarbageToken(t *testing.T) {
	rec, _ := callWithAuth(t, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token invalide")
}

func TestBearerAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", "user-1", 5)
	require.NoError(t, err)
	rec, _ := callWithAuth(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "user-42", 5)
	require.NoError(t, err)
	rec, id := callWithAuth(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", id)
}

func TestBearerAuthAdminSentinel(t *testing.T) {
	rec, id := callWithAuth(t, "Bearer admin-sentinel")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, AdminID, id)
}

func TestBearerAuthEmptySentinelNeverMatches(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, BearerAuth(testSecret, "")(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
