package repository

import "time"

// PaymentListFilter 查询支付列表的过滤条件
type PaymentListFilter struct {
	Page          int
	PageSize      int
	BrandID       uint
	CampaignID    uint
	ApplicationID uint
	Method        string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PayoutListFilter 查询打款列表的过滤条件
type PayoutListFilter struct {
	Page          int
	PageSize      int
	InfluencerID  uint
	ApplicationID uint
	Status        string
	RequestedFrom *time.Time
	RequestedTo   *time.Time
}
