package middleware

import (
	"net/http"
	"strings"

	"linguahub/utils"

	"github.com/gin-gonic/gin"
)

// OpsAuthMiddleware admits requests carrying a valid ops Bearer token.
func OpsAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		operatorID, err := utils.ValidateOpsToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("operatorID", operatorID)
		c.Next()
	}
}
