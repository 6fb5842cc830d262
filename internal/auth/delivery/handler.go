package delivery

import (
	"net/http"

	"jobtrack-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

type tokenRequest struct {
	AdminToken string `json:"admin_token" binding:"required"`
}

// IssueToken exchanges the admin token for a short-lived bearer token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "admin_token is required"})
		return
	}

	token, err := h.authUsecase.IssueToken(req.AdminToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
		return
	}
	c.JSON(http.StatusOK, token)
}
