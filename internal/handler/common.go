package handler

import (
	"net/http"
	"time"

	"dayplan/internal/middleware"
	"dayplan/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BucketBacklog is the wire name of the undated bucket.
const BucketBacklog = "backlog"

// currentUserID pulls the authenticated user out of the gin context; false
// aborts the request with 401.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// parseBucket maps "backlog" to the nil bucket and validates day buckets.
func parseBucket(raw string) (*string, bool) {
	if raw == BucketBacklog {
		return nil, true
	}
	if _, err := time.Parse(model.DateLayout, raw); err != nil {
		return nil, false
	}
	return &raw, true
}

// parseDate validates a plain YYYY-MM-DD path or body value.
func parseDate(raw string) (string, bool) {
	if _, err := time.Parse(model.DateLayout, raw); err != nil {
		return "", false
	}
	return raw, true
}

func bucketName(date *string) string {
	if date == nil {
		return BucketBacklog
	}
	return *date
}
