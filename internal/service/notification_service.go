package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inflink/escrow-ledger/internal/cache"
	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/notify"
	"github.com/inflink/escrow-ledger/internal/queue"

	"github.com/hibiken/asynq"
)

// 重复投递抑制窗口
const notifyDedupeTTL = 24 * time.Hour

// NotificationService 托管事件通知服务
type NotificationService struct {
	notifier    notify.Notifier
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(notifier notify.Notifier, queueClient *queue.Client) *NotificationService {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &NotificationService{
		notifier:    notifier,
		queueClient: queueClient,
	}
}

// NotifyPaymentCreated 通知达人托管支付已创建
func (s *NotificationService) NotifyPaymentCreated(ctx context.Context, payment *models.Payment, influencerID uint) {
	if s == nil || payment == nil {
		return
	}
	s.enqueue(ctx, notify.Notification{
		UserID:  influencerID,
		Type:    constants.NotifyTypePaymentCreated,
		Title:   "合作款项已托管",
		Content: fmt.Sprintf("品牌方已将 %s 存入平台托管，开始履约吧", payment.AmountMoney()),
		Data: map[string]interface{}{
			"application_id": payment.ApplicationID,
			"campaign_id":    payment.CampaignID,
			"amount":         payment.Amount,
			"transaction_id": payment.TransactionID,
		},
	}, fmt.Sprintf("payment_created:%d:%s", payment.ApplicationID, payment.TransactionID))
}

// NotifyPayoutReleased 通知达人款项已放款
func (s *NotificationService) NotifyPayoutReleased(ctx context.Context, payout *models.Payout) {
	if s == nil || payout == nil {
		return
	}
	s.enqueue(ctx, notify.Notification{
		UserID:  payout.InfluencerID,
		Type:    constants.NotifyTypePayoutReleased,
		Title:   "合作款项已放款",
		Content: fmt.Sprintf("扣除平台服务费后，%s 已向你放款", payout.NetMoney()),
		Data: map[string]interface{}{
			"application_id": payout.ApplicationID,
			"amount":         payout.Amount,
			"platform_fee":   payout.PlatformFee,
			"net_amount":     payout.NetAmount,
		},
	}, fmt.Sprintf("payout_released:%d", payout.ApplicationID))
}

// NotifyPayoutRequested 通知达人提现申请已受理
func (s *NotificationService) NotifyPayoutRequested(ctx context.Context, payout *models.Payout) {
	if s == nil || payout == nil {
		return
	}
	s.enqueue(ctx, notify.Notification{
		UserID:  payout.InfluencerID,
		Type:    constants.NotifyTypePayoutRequested,
		Title:   "提现申请已受理",
		Content: fmt.Sprintf("提现申请已受理，预计到账 %s", payout.NetMoney()),
		Data: map[string]interface{}{
			"application_id": payout.ApplicationID,
			"net_amount":     payout.NetAmount,
		},
	}, fmt.Sprintf("payout_requested:%d", payout.ApplicationID))
}

// NotifyPayoutProcessed 通知达人提现已完成
func (s *NotificationService) NotifyPayoutProcessed(ctx context.Context, payout *models.Payout) {
	if s == nil || payout == nil {
		return
	}
	s.enqueue(ctx, notify.Notification{
		UserID:  payout.InfluencerID,
		Type:    constants.NotifyTypePayoutProcessed,
		Title:   "提现已完成",
		Content: fmt.Sprintf("%s 已打款至你的收款账户", payout.NetMoney()),
		Data: map[string]interface{}{
			"application_id": payout.ApplicationID,
			"net_amount":     payout.NetAmount,
		},
	}, fmt.Sprintf("payout_processed:%d", payout.ApplicationID))
}

// enqueue 投递通知任务，失败只记录日志，不影响主流程
func (s *NotificationService) enqueue(ctx context.Context, notification notify.Notification, dedupeKey string) {
	payload := queue.EscrowNotifyPayload{
		Notification: notification,
		DedupeKey:    dedupeKey,
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueEscrowNotify(payload, asynq.MaxRetry(5)); err != nil {
			logger.Warnw("notify_enqueue_failed",
				"type", notification.Type,
				"user_id", notification.UserID,
				"error", err,
			)
		}
		return
	}
	// 队列未启用时直接投递
	if err := s.Dispatch(ctx, payload); err != nil {
		logger.Warnw("notify_send_failed",
			"type", notification.Type,
			"user_id", notification.UserID,
			"error", err,
		)
	}
}

// Dispatch 处理通知投递任务，同一事件只投递一次
func (s *NotificationService) Dispatch(ctx context.Context, payload queue.EscrowNotifyPayload) error {
	if s == nil {
		return nil
	}
	if payload.DedupeKey != "" {
		acquired, err := cache.SetNX(ctx, "notify:"+payload.DedupeKey, 1, notifyDedupeTTL)
		if err != nil {
			logger.Warnw("notify_dedupe_check_failed", "dedupe_key", payload.DedupeKey, "error", err)
		} else if !acquired {
			return nil
		}
	}
	return s.notifier.Send(ctx, payload.Notification)
}
