package escrow

import (
	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// RequestPayoutRequest 提现申请请求
type RequestPayoutRequest struct {
	ApplicationID uint `json:"application_id" binding:"required"`
}

// ProcessPayoutRequest 提现处理请求
type ProcessPayoutRequest struct {
	ApplicationID uint `json:"application_id" binding:"required"`
}

// RequestPayout 达人申请提现
func (h *Handler) RequestPayout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payout, err := h.EscrowService.RequestPayout(c.Request.Context(), service.RequestPayoutInput{
		InfluencerID:  uid,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		respondPayoutRequestError(c, err)
		return
	}

	response.Success(c, gin.H{
		"payout": payout,
	})
}

// ProcessPayout 运营确认线下打款完成
func (h *Handler) ProcessPayout(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req ProcessPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payout, err := h.EscrowService.ProcessPayout(c.Request.Context(), service.ProcessPayoutInput{
		OperatorID:    operatorID,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		respondPayoutProcessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"payout": payout,
	})
}
