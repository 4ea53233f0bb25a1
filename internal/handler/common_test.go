package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/middleware"
)

func ctxWithCaller(id string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if id != "" {
		c.Set("user_id", id)
	}
	return c
}

func TestCanModifyOwner(t *testing.T) {
	c := ctxWithCaller("user-1")
	assert.True(t, canModify(c, "user-1"))
	assert.False(t, canModify(c, "user-2"))
}

func TestCanModifyAdminBypassesOwnership(t *testing.T) {
	c := ctxWithCaller(middleware.AdminID)
	assert.True(t, canModify(c, "user-1"))
	assert.True(t, canModify(c, "anyone"))
}

func TestCanModifyAnonymous(t *testing.T) {
	c := ctxWithCaller("")
	assert.False(t, canModify(c, "user-1"))
	assert.False(t, canModify(c, ""), "an empty owner never matches an anonymous caller")
}

func TestCallerID(t *testing.T) {
	assert.Equal(t, "user-9", callerID(ctxWithCaller("user-9")))
	assert.Equal(t, "", callerID(ctxWithCaller("")))
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestParseDateFormats(t *testing.T) {
	d, err := parseDate("2026-05-01")
	assert.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	d, err = parseDate("2026-05-01T18:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 18, d.Hour())

	_, err = parseDate("01/05/2026")
	assert.Error(t, err)
}
