package delivery

import (
	"net/http"
	"strings"

	"jobtrack-backend/internal/auth/usecase"
	"jobtrack-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token and stores the token subject on
// the context for downstream handlers (review actions record it as decidedBy).
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "bearer token required",
				"code":  apperr.CodeUnauthorized,
			})
			return
		}

		subject, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
				"code":  apperr.CodeUnauthorized,
			})
			return
		}

		c.Set("subject", subject)
		c.Next()
	}
}
