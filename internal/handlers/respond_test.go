package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/JoeLeDev/RSs/internal/apperr"
)

func runFail(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fail(c, err)
	return w
}

func TestFailMapsErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperr.NotFound("group not found"), http.StatusNotFound},
		{"permission denied", apperr.PermissionDenied("cannot kick members"), http.StatusForbidden},
		{"validation", apperr.Validation("post already liked"), http.StatusBadRequest},
		{"unauthenticated", apperr.Unauthenticated("invalid token"), http.StatusUnauthorized},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := runFail(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestFailHidesInternalErrorDetails(t *testing.T) {
	w := runFail(t, errors.New("mongo: no reachable servers"))
	assert.NotContains(t, w.Body.String(), "mongo")
}

func TestIntQueryFallsBackToDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=abc&limit=25", nil)

	assert.Equal(t, int64(1), intQuery(c, "page", 1))
	assert.Equal(t, int64(25), intQuery(c, "limit", 50))
	assert.Equal(t, int64(50), intQuery(c, "missing", 50))
}
