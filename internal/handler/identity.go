package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Identity headers are supplied by the fronting forum application, which owns
// authentication. This service only relays them.
const (
	headerUserID    = "X-User-ID"
	headerCanManage = "X-Can-Manage"

	ctxUserID    = "identity.user_id"
	ctxCanManage = "identity.can_manage"
)

// Identity extracts the acting user and the manage permission from the
// request headers. Missing or malformed headers mean an anonymous visitor.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(headerUserID); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
				c.Set(ctxUserID, id)
			}
		}
		if raw := c.GetHeader(headerCanManage); raw != "" {
			if v, err := strconv.ParseBool(raw); err == nil {
				c.Set(ctxCanManage, v)
			}
		}
		c.Next()
	}
}

// actingUser returns the authenticated user id, or nil for visitors.
func actingUser(c *gin.Context) *uint64 {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint64); ok {
			return &id
		}
	}
	return nil
}

func canManage(c *gin.Context) bool {
	if v, ok := c.Get(ctxCanManage); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// RequireManage rejects requests without the manage permission.
func RequireManage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !canManage(c) {
			Error(c, http.StatusForbidden, "permission denied", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
