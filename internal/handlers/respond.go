package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/apperr"
)

// reqCtx caps every handler's database work at ten seconds.
func reqCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// fail translates a service error into the matching HTTP status. Anything
// outside the error taxonomy is a 500 and gets logged.
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindPermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		}).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID parses an object id from a path parameter.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid id",
			"details": name + " must be a valid object id",
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

// intQuery reads an integer query parameter with a default.
func intQuery(c *gin.Context, name string, def int64) int64 {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return def
	}
	return value
}
