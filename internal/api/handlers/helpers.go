package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"hoyhub/backend/internal/api/middleware"
	"hoyhub/backend/internal/utils"
)

// currentUserID pulls the authenticated user's ID out of the Gin context.
// Aborts with 401 when the auth middleware did not run or stored junk.
func currentUserID(c *gin.Context) (utils.SixID, bool) {
	raw, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return utils.SixID{}, false
	}
	idStr, ok := raw.(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return utils.SixID{}, false
	}
	id, err := utils.ParseSixID(idStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return utils.SixID{}, false
	}
	return id, true
}
