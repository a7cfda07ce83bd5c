package escrow

import (
	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentStatusQuery 状态查询参数，application_id 与 campaign_id 二选一
type PaymentStatusQuery struct {
	ApplicationID uint `form:"application_id"`
	CampaignID    uint `form:"campaign_id"`
}

// GetPaymentStatus 查询合作申请或活动的账本视图
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var query PaymentStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}
	if query.ApplicationID == 0 && query.CampaignID == 0 {
		response.BadRequest(c, "application_id or campaign_id is required")
		return
	}

	result, err := h.EscrowService.GetPaymentStatus(c.Request.Context(), service.PaymentStatusInput{
		UserID:        uid,
		Role:          getUserRole(c),
		ApplicationID: query.ApplicationID,
		CampaignID:    query.CampaignID,
	})
	if err != nil {
		respondStatusError(c, err)
		return
	}

	response.Success(c, result)
}
