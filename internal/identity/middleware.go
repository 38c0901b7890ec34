// Package identity resolves the calling user of a request. Authentication is
// handled upstream; by the time a request reaches the API the gateway has
// put the caller's id in the X-User-Id header.
package identity

import (
	"net/http"
	"strings"

	"github.com/sanioooook/TodoApp/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the caller's user id.
const Header = "X-User-Id"

const contextKeyUserID = "caller_id"

// UserIDFromContext returns the caller id set by RequireUser. uuid.Nil if not set.
func UserIDFromContext(c *gin.Context) uuid.UUID {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// RequireUser returns a middleware that reads the caller id from the
// X-User-Id header. If missing or not a UUID, responds with 400.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(Header))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": Header + " header is required", "kind": "validation"})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": Header + " must be a user id", "kind": "validation"})
			return
		}
		c.Set(contextKeyUserID, id)
		c.Set(logging.UserIDKey, id.String())
		c.Next()
	}
}
