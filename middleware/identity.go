package middleware

import (
	"net/http"

	"github.com/annazecevic/profile-service/logger"
	"github.com/gin-gonic/gin"
)

// IdentityMiddleware requires the reviewer identification header on
// review submission and stashes it in the request context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		reviewerEmail := c.GetHeader("X-Reviewer-Email")
		if reviewerEmail == "" {
			logger.Security(logger.EventAccessDenied,
				"Missing reviewer identification header",
				logger.Fields("ip", c.ClientIP()),
			)

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing reviewer identification",
			})
			return
		}

		c.Set("reviewer_email", reviewerEmail)

		c.Next()
	}
}
