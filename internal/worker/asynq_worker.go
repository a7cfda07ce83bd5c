package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/provider"
	"github.com/inflink/escrow-ledger/internal/queue"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskEscrowNotify, c.handleEscrowNotify)
	mux.HandleFunc(queue.TaskEscrowStatusSync, c.handleEscrowStatusSync)
}

func (c *Consumer) handleEscrowNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_escrow_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.EscrowNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_escrow_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.Notification.UserID == 0 || payload.Notification.Type == "" {
		logger.Debugw("worker_escrow_notify_skip_invalid_payload",
			"user_id", payload.Notification.UserID,
			"type", payload.Notification.Type,
		)
		return nil
	}
	if err := c.NotificationService.Dispatch(ctx, payload); err != nil {
		logger.Warnw("worker_escrow_notify_send_failed",
			"user_id", payload.Notification.UserID,
			"type", payload.Notification.Type,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleEscrowStatusSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_escrow_status_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.EscrowStatusSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_escrow_status_sync_unmarshal_failed", "error", err)
		return err
	}
	if payload.ApplicationID == 0 || payload.TargetStatus == "" {
		logger.Debugw("worker_escrow_status_sync_skip_invalid_payload",
			"application_id", payload.ApplicationID,
			"target_status", payload.TargetStatus,
		)
		return nil
	}
	err := c.EscrowService.SyncApplicationStatus(ctx, payload.ApplicationID, payload.TargetStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			logger.Debugw("worker_escrow_status_sync_skip_application_not_found", "application_id", payload.ApplicationID)
			return nil
		case errors.Is(err, service.ErrApplicationStateInvalid):
			logger.Debugw("worker_escrow_status_sync_skip_invalid_target", "application_id", payload.ApplicationID, "target_status", payload.TargetStatus)
			return nil
		default:
			logger.Warnw("worker_escrow_status_sync_failed",
				"application_id", payload.ApplicationID,
				"target_status", payload.TargetStatus,
				"error", err,
			)
			return err
		}
	}
	return nil
}
