package escrow

import (
	"strconv"

	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseUintQuery(c *gin.Context, key string) uint {
	value, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}

// ListPayments 运营查询支付流水
func (h *Handler) ListPayments(c *gin.Context) {
	if _, ok := getOperatorID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PaymentListFilter{
		Page:          page,
		PageSize:      pageSize,
		BrandID:       parseUintQuery(c, "brand_id"),
		CampaignID:    parseUintQuery(c, "campaign_id"),
		ApplicationID: parseUintQuery(c, "application_id"),
		Method:        c.Query("method"),
		Status:        c.Query("status"),
	}

	payments, total, err := h.PaymentRepo.List(filter)
	if err != nil {
		respondInternalError(c, "list payments failed", err)
		return
	}

	response.SuccessWithPage(c, payments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ListPayouts 运营查询打款流水
func (h *Handler) ListPayouts(c *gin.Context) {
	if _, ok := getOperatorID(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PayoutListFilter{
		Page:          page,
		PageSize:      pageSize,
		InfluencerID:  parseUintQuery(c, "influencer_id"),
		ApplicationID: parseUintQuery(c, "application_id"),
		Status:        c.Query("status"),
	}

	payouts, total, err := h.PayoutRepo.List(filter)
	if err != nil {
		respondInternalError(c, "list payouts failed", err)
		return
	}

	response.SuccessWithPage(c, payouts, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
