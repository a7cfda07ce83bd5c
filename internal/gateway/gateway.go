package gateway

import "context"

// Campaign 推广活动（由上游营销服务维护）
type Campaign struct {
	ID      uint   `json:"id"`
	BrandID uint   `json:"brand_id"`
	Title   string `json:"title"`
}

// Application 达人合作申请
type Application struct {
	ID           uint   `json:"id"`
	CampaignID   uint   `json:"campaign_id"`
	InfluencerID uint   `json:"influencer_id"`
	Status       string `json:"status"`        // APPLIED/ACCEPTED/CONTRACTED/COMPLETED
	AgreedAmount int64  `json:"agreed_amount"` // 约定报酬（最小货币单位）
}

// ApplicationGateway 合作申请读写接口
type ApplicationGateway interface {
	GetCampaign(ctx context.Context, campaignID uint) (*Campaign, error)
	GetApplication(ctx context.Context, applicationID uint) (*Application, error)
	SetApplicationStatus(ctx context.Context, applicationID uint, status string) error
}
