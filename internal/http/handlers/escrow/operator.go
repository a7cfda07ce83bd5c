package escrow

import (
	"errors"

	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// OperatorLoginRequest 运营登录请求
type OperatorLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OperatorLogin 运营登录，签发运营 Token
func (h *Handler) OperatorLogin(c *gin.Context) {
	var req OperatorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	operator, token, expiresAt, err := h.AuthService.OperatorLogin(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		response.Error(c, response.CodeInternal, "login failed")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"operator": gin.H{
			"id":       operator.ID,
			"username": operator.Username,
		},
	})
}
