package models

import (
	"time"
)

// Payment 托管支付记录
type Payment struct {
	ID            uint      `gorm:"primarykey" json:"id"`                        // 主键
	BrandID       uint      `gorm:"index;not null" json:"brand_id"`              // 品牌方ID（付款人）
	CampaignID    uint      `gorm:"index;not null" json:"campaign_id"`           // 活动ID
	ApplicationID uint      `gorm:"uniqueIndex;not null" json:"application_id"`  // 合作申请ID（唯一，一次合作只托管一笔）
	Amount        int64     `gorm:"not null" json:"amount"`                      // 支付金额（最小货币单位）
	Method        string    `gorm:"not null" json:"method"`                      // 支付方式（card/escrow/bank_transfer）
	Status        string    `gorm:"index;not null" json:"status"`                // 支付状态（pending/success/failed）
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transaction_id"`  // 平台交易流水号
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`                     // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// AmountMoney 返回展示用金额
func (p Payment) AmountMoney() Money {
	return NewMoneyFromMinorUnits(p.Amount)
}
