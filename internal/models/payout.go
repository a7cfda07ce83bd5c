package models

import (
	"time"
)

// Payout 达人打款记录，一个合作申请至多一条
type Payout struct {
	ID            uint       `gorm:"primarykey" json:"id"`                       // 主键
	InfluencerID  uint       `gorm:"index;not null" json:"influencer_id"`        // 达人ID（收款人）
	ApplicationID uint       `gorm:"uniqueIndex;not null" json:"application_id"` // 合作申请ID（唯一）
	Amount        int64      `gorm:"not null" json:"amount"`                     // 原始金额（最小货币单位）
	PlatformFee   int64      `gorm:"not null" json:"platform_fee"`               // 平台服务费
	NetAmount     int64      `gorm:"not null" json:"net_amount"`                 // 实际到账金额（Amount - PlatformFee）
	Status        string     `gorm:"index;not null" json:"status"`               // 打款状态（requested/processing/completed/failed）
	RequestedAt   time.Time  `gorm:"index" json:"requested_at"`                  // 发起时间
	ProcessedAt   *time.Time `gorm:"index" json:"processed_at"`                  // 打款完成时间
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`                    // 更新时间
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}

// NetMoney 返回展示用到账金额
func (p Payout) NetMoney() Money {
	return NewMoneyFromMinorUnits(p.NetAmount)
}
