package escrow

import (
	"github.com/inflink/escrow-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getContextUint 从 gin 上下文取 uint 值，缺失或类型不符时回 401
func getContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, "authentication required")
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, "authentication invalid")
		return 0, false
	}
	return id, true
}

func getUserID(c *gin.Context) (uint, bool) {
	return getContextUint(c, "user_id")
}

func getUserRole(c *gin.Context) string {
	value, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}

func getOperatorID(c *gin.Context) (uint, bool) {
	return getContextUint(c, "operator_id")
}
