package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestLookupFailure(t *testing.T) {
	status, message := lookupFailure(mongo.ErrNoDocuments)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unknown account", message)

	// A timeout is an outage, not a bad credential.
	status, message = lookupFailure(context.DeadlineExceeded)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", message)
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(header, query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+query, nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		return c
	}

	assert.Equal(t, "abc", bearerToken(newCtx("Bearer abc", "")))
	assert.Equal(t, "", bearerToken(newCtx("Basic abc", "")))
	assert.Equal(t, "xyz", bearerToken(newCtx("", "?token=xyz")))
	assert.Equal(t, "", bearerToken(newCtx("", "")))
}
