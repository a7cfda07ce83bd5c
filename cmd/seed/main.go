package main

import (
	"fmt"
	"time"

	"github.com/inflink/escrow-ledger/internal/config"
	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认运营账号
	if err := models.InitDefaultOperator("", ""); err != nil {
		stdLog.Printf("Failed to init default operator: %v", err)
	}

	// 示例托管支付: 已完成投放的合作 (application_id=1001)
	completedAt := time.Now().Add(-48 * time.Hour)
	payments := []models.Payment{
		{
			BrandID:       101,
			CampaignID:    11,
			ApplicationID: 1001,
			Amount:        1_000_000, // 10000.00
			Method:        constants.PaymentMethodCard,
			Status:        constants.PaymentStatusSuccess,
			TransactionID: fmt.Sprintf("TXN%s%06d", completedAt.Format("20060102150405"), 1),
		},
		{
			BrandID:       101,
			CampaignID:    11,
			ApplicationID: 1002,
			Amount:        250_000, // 2500.00
			Method:        constants.PaymentMethodBankTransfer,
			Status:        constants.PaymentStatusSuccess,
			TransactionID: fmt.Sprintf("TXN%s%06d", completedAt.Format("20060102150405"), 2),
		},
	}

	for _, p := range payments {
		var existing models.Payment
		if err := models.DB.Where("transaction_id = ?", p.TransactionID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create payment %s: %v", p.TransactionID, err)
			} else {
				stdLog.Printf("Created payment: %s (application %d)", p.TransactionID, p.ApplicationID)
			}
		} else {
			stdLog.Printf("Payment already exists: %s", p.TransactionID)
		}
	}

	// 示例结算记录: application_id=1001 已放款
	processedAt := time.Now().Add(-24 * time.Hour)
	payout := models.Payout{
		InfluencerID:  201,
		ApplicationID: 1001,
		Amount:        1_000_000,
		PlatformFee:   50_000,
		NetAmount:     950_000,
		Status:        constants.PayoutStatusCompleted,
		RequestedAt:   completedAt,
		ProcessedAt:   &processedAt,
	}
	var existingPayout models.Payout
	if err := models.DB.Where("application_id = ?", payout.ApplicationID).First(&existingPayout).Error; err != nil {
		if err := models.DB.Create(&payout).Error; err != nil {
			stdLog.Printf("Failed to create payout for application %d: %v", payout.ApplicationID, err)
		} else {
			stdLog.Printf("Created payout for application %d: net %s", payout.ApplicationID, payout.NetMoney().String())
		}
	} else {
		stdLog.Printf("Payout already exists for application %d", payout.ApplicationID)
	}

	stdLog.Printf("Seed data initialized")
}
