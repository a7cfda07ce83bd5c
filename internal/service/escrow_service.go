package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/inflink/escrow-ledger/internal/cache"
	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/fee"
	"github.com/inflink/escrow-ledger/internal/gateway"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/queue"
	"github.com/inflink/escrow-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 合作申请状态顺序，只允许单向推进
var applicationStatusRank = map[string]int{
	constants.ApplicationStatusApplied:    0,
	constants.ApplicationStatusAccepted:   1,
	constants.ApplicationStatusContracted: 2,
	constants.ApplicationStatusCompleted:  3,
}

// EscrowService 托管账本服务
type EscrowService struct {
	paymentRepo        repository.PaymentRepository
	payoutRepo         repository.PayoutRepository
	gw                 gateway.ApplicationGateway
	notificationSvc    *NotificationService
	queueClient        *queue.Client
	feeRate            decimal.Decimal
	releaseLockSeconds int
}

// NewEscrowService 创建托管账本服务
func NewEscrowService(
	paymentRepo repository.PaymentRepository,
	payoutRepo repository.PayoutRepository,
	gw gateway.ApplicationGateway,
	notificationSvc *NotificationService,
	queueClient *queue.Client,
	feeRate decimal.Decimal,
	releaseLockSeconds int,
) *EscrowService {
	if releaseLockSeconds <= 0 {
		releaseLockSeconds = 30
	}
	return &EscrowService{
		paymentRepo:        paymentRepo,
		payoutRepo:         payoutRepo,
		gw:                 gw,
		notificationSvc:    notificationSvc,
		queueClient:        queueClient,
		feeRate:            feeRate,
		releaseLockSeconds: releaseLockSeconds,
	}
}

// CreateEscrowPaymentInput 创建托管支付请求
type CreateEscrowPaymentInput struct {
	BrandID       uint
	CampaignID    uint
	ApplicationID uint
	Amount        int64
	Method        string
}

// ReleasePaymentInput 放款请求
type ReleasePaymentInput struct {
	BrandID       uint
	ApplicationID uint
}

// RequestPayoutInput 提现申请请求
type RequestPayoutInput struct {
	InfluencerID  uint
	ApplicationID uint
}

// ProcessPayoutInput 提现处理请求
type ProcessPayoutInput struct {
	OperatorID    uint
	ApplicationID uint
}

// PaymentStatusInput 状态查询请求，application_id 与 campaign_id 二选一
type PaymentStatusInput struct {
	UserID        uint
	Role          string
	ApplicationID uint
	CampaignID    uint
}

// PaymentSummary 账本金额汇总
type PaymentSummary struct {
	TotalPaid            int64 `json:"total_paid"`
	PlatformFee          int64 `json:"platform_fee"`
	TotalNetReleased     int64 `json:"total_net_released"`
	PayoutRequestedCount int64 `json:"payout_requested_count"`
	PayoutCompletedCount int64 `json:"payout_completed_count"`
}

// PaymentStatusResult 状态查询结果
type PaymentStatusResult struct {
	CampaignID        uint             `json:"campaign_id,omitempty"`
	ApplicationID     uint             `json:"application_id,omitempty"`
	ApplicationStatus string           `json:"application_status,omitempty"`
	Payments          []models.Payment `json:"payments"`
	Payouts           []models.Payout  `json:"payouts,omitempty"`
	Payout            *models.Payout   `json:"payout,omitempty"`
	Summary           PaymentSummary   `json:"summary"`
}

// CreateEscrowPayment 品牌方为合作申请创建托管支付。
// 账本先落库，再推进合作申请状态；推进失败交给补偿任务重试。
// 支付记录由 application_id 唯一索引保证至多一条，竞争失败方返回已有记录。
func (s *EscrowService) CreateEscrowPayment(ctx context.Context, input CreateEscrowPaymentInput) (*models.Payment, error) {
	if input.Amount <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	if !constants.IsValidPaymentMethod(input.Method) {
		return nil, ErrPaymentMethodInvalid
	}

	campaign, err := s.getCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.BrandID != input.BrandID {
		return nil, ErrNotCampaignOwner
	}

	application, err := s.getApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if application.CampaignID != input.CampaignID {
		return nil, ErrApplicationNotFound
	}
	if application.AgreedAmount > 0 && input.Amount != application.AgreedAmount {
		return nil, ErrPaymentAmountInvalid
	}

	switch application.Status {
	case constants.ApplicationStatusAccepted, constants.ApplicationStatusContracted:
	default:
		return nil, ErrApplicationStateInvalid
	}

	lockKey := fmt.Sprintf("escrow:payment:%d", input.ApplicationID)
	acquired, err := cache.SetNX(ctx, lockKey, 1, time.Duration(s.releaseLockSeconds)*time.Second)
	if err != nil {
		logger.Warnw("payment_lock_failed", "application_id", input.ApplicationID, "error", err)
	} else if !acquired {
		winner, err := s.paymentRepo.GetSuccessByApplicationID(input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if winner != nil {
			if winner.Amount != input.Amount || winner.Method != input.Method {
				return nil, ErrPaymentExists
			}
			return winner, nil
		}
		return nil, ErrPaymentExists
	}
	defer func() {
		_ = cache.Del(ctx, lockKey)
	}()

	existing, err := s.paymentRepo.GetSuccessByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if existing != nil {
		// 重试请求：账本已写入，参数不一致视为冲突
		if existing.Amount != input.Amount || existing.Method != input.Method {
			return nil, ErrPaymentExists
		}
		// 上次状态推进失败时补一次
		if application.Status == constants.ApplicationStatusAccepted {
			s.advanceApplication(ctx, input.ApplicationID, constants.ApplicationStatusContracted)
		}
		return existing, nil
	}
	if application.Status == constants.ApplicationStatusContracted {
		// 已签约却没有成功支付，说明账本被其他路径消费过
		return nil, ErrApplicationStateInvalid
	}

	payment := &models.Payment{
		BrandID:       input.BrandID,
		CampaignID:    input.CampaignID,
		ApplicationID: input.ApplicationID,
		Amount:        input.Amount,
		Method:        input.Method,
		Status:        constants.PaymentStatusSuccess,
		TransactionID: generateTransactionID(),
	}
	inserted, err := s.paymentRepo.CreateIfAbsent(payment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if !inserted {
		winner, err := s.paymentRepo.GetSuccessByApplicationID(input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if winner == nil {
			return nil, ErrPaymentExists
		}
		if winner.Amount != input.Amount || winner.Method != input.Method {
			return nil, ErrPaymentExists
		}
		return winner, nil
	}

	logger.Infow("escrow_payment_created",
		"application_id", payment.ApplicationID,
		"campaign_id", payment.CampaignID,
		"brand_id", payment.BrandID,
		"amount", payment.Amount,
		"transaction_id", payment.TransactionID,
	)

	s.advanceApplication(ctx, input.ApplicationID, constants.ApplicationStatusContracted)
	s.notificationSvc.NotifyPaymentCreated(ctx, payment, application.InfluencerID)
	return payment, nil
}

// ReleasePayment 品牌方确认履约完成并放款。
// 打款记录由唯一索引保证至多一条，竞争失败方返回已有记录。
func (s *EscrowService) ReleasePayment(ctx context.Context, input ReleasePaymentInput) (*models.Payout, error) {
	application, err := s.getApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	campaign, err := s.getCampaign(ctx, application.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.BrandID != input.BrandID {
		return nil, ErrNotCampaignOwner
	}

	switch application.Status {
	case constants.ApplicationStatusContracted, constants.ApplicationStatusCompleted:
	default:
		return nil, ErrApplicationStateInvalid
	}

	existing, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if existing != nil {
		// 重试请求：打款已写入，补一次状态推进即可
		if application.Status == constants.ApplicationStatusContracted {
			s.advanceApplication(ctx, input.ApplicationID, constants.ApplicationStatusCompleted)
		}
		return existing, nil
	}

	payment, err := s.paymentRepo.GetSuccessByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	lockKey := fmt.Sprintf("escrow:release:%d", input.ApplicationID)
	acquired, err := cache.SetNX(ctx, lockKey, 1, time.Duration(s.releaseLockSeconds)*time.Second)
	if err != nil {
		logger.Warnw("release_lock_failed", "application_id", input.ApplicationID, "error", err)
	} else if !acquired {
		winner, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if winner != nil {
			return winner, nil
		}
		return nil, ErrPayoutExists
	}
	defer func() {
		_ = cache.Del(ctx, lockKey)
	}()

	platformFee, netAmount, err := fee.Compute(payment.Amount, s.feeRate)
	if err != nil {
		return nil, ErrPaymentAmountInvalid
	}

	now := time.Now()
	payout := &models.Payout{
		InfluencerID:  application.InfluencerID,
		ApplicationID: input.ApplicationID,
		Amount:        payment.Amount,
		PlatformFee:   platformFee,
		NetAmount:     netAmount,
		Status:        constants.PayoutStatusCompleted,
		RequestedAt:   now,
		ProcessedAt:   &now,
	}
	inserted, err := s.payoutRepo.CreateIfAbsent(payout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if !inserted {
		winner, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if winner == nil {
			return nil, ErrPayoutNotFound
		}
		return winner, nil
	}

	logger.Infow("payout_released",
		"application_id", payout.ApplicationID,
		"influencer_id", payout.InfluencerID,
		"amount", payout.Amount,
		"platform_fee", payout.PlatformFee,
		"net_amount", payout.NetAmount,
	)

	if application.Status == constants.ApplicationStatusContracted {
		s.advanceApplication(ctx, input.ApplicationID, constants.ApplicationStatusCompleted)
	}
	s.notificationSvc.NotifyPayoutReleased(ctx, payout)
	return payout, nil
}

// RequestPayout 达人在履约完成后主动申请提现。
// 已有打款记录时原样返回，不做任何改动。
func (s *EscrowService) RequestPayout(ctx context.Context, input RequestPayoutInput) (*models.Payout, error) {
	application, err := s.getApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if application.InfluencerID != input.InfluencerID {
		return nil, ErrNotApplicationInfluencer
	}
	if application.Status != constants.ApplicationStatusCompleted {
		return nil, ErrApplicationStateInvalid
	}

	existing, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if existing != nil {
		return existing, nil
	}

	payment, err := s.paymentRepo.GetSuccessByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	// 托管支付缺失时退回网关侧约定金额计费
	amount := int64(0)
	switch {
	case payment != nil:
		amount = payment.Amount
	case application.AgreedAmount > 0:
		amount = application.AgreedAmount
	default:
		return nil, ErrPaymentNotFound
	}

	platformFee, netAmount, err := fee.Compute(amount, s.feeRate)
	if err != nil {
		return nil, ErrPaymentAmountInvalid
	}

	payout := &models.Payout{
		InfluencerID:  input.InfluencerID,
		ApplicationID: input.ApplicationID,
		Amount:        amount,
		PlatformFee:   platformFee,
		NetAmount:     netAmount,
		Status:        constants.PayoutStatusRequested,
		RequestedAt:   time.Now(),
	}
	inserted, err := s.payoutRepo.CreateIfAbsent(payout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if !inserted {
		winner, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if winner == nil {
			return nil, ErrPayoutNotFound
		}
		return winner, nil
	}

	logger.Infow("payout_requested",
		"application_id", payout.ApplicationID,
		"influencer_id", payout.InfluencerID,
		"net_amount", payout.NetAmount,
	)

	s.notificationSvc.NotifyPayoutRequested(ctx, payout)
	return payout, nil
}

// ProcessPayout 运营确认线下打款完成，行锁保证不被并发处理
func (s *EscrowService) ProcessPayout(ctx context.Context, input ProcessPayoutInput) (*models.Payout, error) {
	var processed *models.Payout
	var alreadyDone bool
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		payout, err := s.payoutRepo.WithTx(tx).GetByApplicationIDForUpdate(input.ApplicationID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if payout == nil {
			// 没有待处理的提现申请
			return ErrPayoutStateInvalid
		}
		switch payout.Status {
		case constants.PayoutStatusCompleted:
			// 已处理过，幂等返回
			processed = payout
			alreadyDone = true
			return nil
		case constants.PayoutStatusRequested:
		default:
			return ErrPayoutStateInvalid
		}

		now := time.Now()
		payout.Status = constants.PayoutStatusCompleted
		payout.ProcessedAt = &now
		if err := s.payoutRepo.WithTx(tx).Update(payout); err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		processed = payout
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyDone {
		logger.Infow("payout_processed",
			"application_id", processed.ApplicationID,
			"influencer_id", processed.InfluencerID,
			"operator_id", input.OperatorID,
			"net_amount", processed.NetAmount,
		)
		s.notificationSvc.NotifyPayoutProcessed(ctx, processed)
	}
	return processed, nil
}

// GetPaymentStatus 查询账本视图。按合作申请查询时品牌方与达人双方可见，
// 按活动查询时仅活动归属品牌方与运营可见。
func (s *EscrowService) GetPaymentStatus(ctx context.Context, input PaymentStatusInput) (*PaymentStatusResult, error) {
	if input.ApplicationID != 0 {
		return s.getApplicationStatusView(ctx, input)
	}
	return s.getCampaignStatusView(ctx, input)
}

func (s *EscrowService) getApplicationStatusView(ctx context.Context, input PaymentStatusInput) (*PaymentStatusResult, error) {
	application, err := s.getApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	switch input.Role {
	case constants.RoleInfluencer:
		if application.InfluencerID != input.UserID {
			return nil, ErrNotApplicationInfluencer
		}
	case constants.RoleOperator:
	default:
		campaign, err := s.getCampaign(ctx, application.CampaignID)
		if err != nil {
			return nil, err
		}
		if campaign.BrandID != input.UserID {
			return nil, ErrNotCampaignOwner
		}
	}

	payments, err := s.paymentRepo.ListByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	payout, err := s.payoutRepo.GetByApplicationID(input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	var payouts []models.Payout
	if payout != nil {
		payouts = []models.Payout{*payout}
	}

	return &PaymentStatusResult{
		ApplicationID:     application.ID,
		ApplicationStatus: application.Status,
		Payments:          payments,
		Payout:            payout,
		Summary:           summarizeLedger(payments, payouts),
	}, nil
}

func (s *EscrowService) getCampaignStatusView(ctx context.Context, input PaymentStatusInput) (*PaymentStatusResult, error) {
	campaign, err := s.getCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if input.Role != constants.RoleOperator && campaign.BrandID != input.UserID {
		return nil, ErrNotCampaignOwner
	}

	payments, err := s.paymentRepo.ListByCampaignID(input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	applicationIDs := make([]uint, 0, len(payments))
	for _, payment := range payments {
		applicationIDs = append(applicationIDs, payment.ApplicationID)
	}
	payouts, err := s.payoutRepo.ListByApplicationIDs(applicationIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	return &PaymentStatusResult{
		CampaignID: campaign.ID,
		Payments:   payments,
		Payouts:    payouts,
		Summary:    summarizeLedger(payments, payouts),
	}, nil
}

// summarizeLedger 汇总支付与打款：费率与到账只统计已完成的打款
func summarizeLedger(payments []models.Payment, payouts []models.Payout) PaymentSummary {
	var summary PaymentSummary
	for _, payment := range payments {
		if payment.Status == constants.PaymentStatusSuccess {
			summary.TotalPaid += payment.Amount
		}
	}
	for _, payout := range payouts {
		if payout.Status == constants.PayoutStatusCompleted {
			summary.PayoutCompletedCount++
			summary.PlatformFee += payout.PlatformFee
			summary.TotalNetReleased += payout.NetAmount
		} else {
			summary.PayoutRequestedCount++
		}
	}
	return summary
}

// SyncApplicationStatus 补偿任务入口：向网关重放状态推进，已达标则跳过
func (s *EscrowService) SyncApplicationStatus(ctx context.Context, applicationID uint, targetStatus string) error {
	targetRank, ok := applicationStatusRank[targetStatus]
	if !ok {
		return ErrApplicationStateInvalid
	}
	application, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if currentRank, ok := applicationStatusRank[application.Status]; ok && currentRank >= targetRank {
		return nil
	}
	if err := s.gw.SetApplicationStatus(ctx, applicationID, targetStatus); err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	logger.Infow("application_status_synced",
		"application_id", applicationID,
		"target_status", targetStatus,
	)
	return nil
}

// advanceApplication 推进合作申请状态，失败转补偿任务，不回滚账本
func (s *EscrowService) advanceApplication(ctx context.Context, applicationID uint, targetStatus string) {
	err := s.gw.SetApplicationStatus(ctx, applicationID, targetStatus)
	if err == nil {
		return
	}
	logger.Warnw("application_status_advance_failed",
		"application_id", applicationID,
		"target_status", targetStatus,
		"error", err,
	)
	if err := s.queueClient.EnqueueEscrowStatusSync(queue.EscrowStatusSyncPayload{
		ApplicationID: applicationID,
		TargetStatus:  targetStatus,
	}); err != nil {
		logger.Errorw("application_status_sync_enqueue_failed",
			"application_id", applicationID,
			"target_status", targetStatus,
			"error", err,
		)
	}
}

// 活动归属很少变化，短暂缓存以减少网关往返
const campaignCacheTTL = 5 * time.Minute

func (s *EscrowService) getCampaign(ctx context.Context, campaignID uint) (*gateway.Campaign, error) {
	cacheKey := fmt.Sprintf("campaign:%d", campaignID)
	var cached gateway.Campaign
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit && cached.ID == campaignID {
		return &cached, nil
	}

	campaign, err := s.gw.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if err := cache.SetJSON(ctx, cacheKey, campaign, campaignCacheTTL); err != nil {
		logger.Debugw("campaign_cache_write_failed", "campaign_id", campaignID, "error", err)
	}
	return campaign, nil
}

func (s *EscrowService) getApplication(ctx context.Context, applicationID uint) (*gateway.Application, error) {
	application, err := s.gw.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return application, nil
}

// generateTransactionID 生成平台交易流水号（TXN + 时间戳 + 随机数字）
func generateTransactionID() string {
	const digits = "0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			suffix[i] = '0'
			continue
		}
		suffix[i] = digits[n.Int64()]
	}
	return fmt.Sprintf("TXN%s%s", time.Now().Format("20060102150405"), suffix)
}
