package escrow

import (
	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 创建托管支付请求
type CreatePaymentRequest struct {
	CampaignID    uint   `json:"campaign_id" binding:"required"`
	ApplicationID uint   `json:"application_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Method        string `json:"method" binding:"required"`
}

// ReleasePaymentRequest 放款请求
type ReleasePaymentRequest struct {
	ApplicationID uint `json:"application_id" binding:"required"`
}

// CreatePayment 品牌方创建托管支付
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payment, err := h.EscrowService.CreateEscrowPayment(c.Request.Context(), service.CreateEscrowPaymentInput{
		BrandID:       uid,
		CampaignID:    req.CampaignID,
		ApplicationID: req.ApplicationID,
		Amount:        req.Amount,
		Method:        req.Method,
	})
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}

	response.Success(c, gin.H{
		"payment": payment,
	})
}

// ReleasePayment 品牌方确认放款
func (h *Handler) ReleasePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ReleasePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payout, err := h.EscrowService.ReleasePayment(c.Request.Context(), service.ReleasePaymentInput{
		BrandID:       uid,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		respondPaymentReleaseError(c, err)
		return
	}

	response.Success(c, gin.H{
		"payout": payout,
	})
}
