package queue

import (
	"encoding/json"

	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/notify"

	"github.com/hibiken/asynq"
)

const (
	// TaskEscrowNotify 托管事件通知任务
	TaskEscrowNotify = constants.TaskEscrowNotify
	// TaskEscrowStatusSync 合作申请状态补偿任务
	TaskEscrowStatusSync = constants.TaskEscrowStatusSync
)

// EscrowNotifyPayload 通知任务载荷
type EscrowNotifyPayload struct {
	Notification notify.Notification `json:"notification"`
	DedupeKey    string              `json:"dedupe_key"`
}

// EscrowStatusSyncPayload 状态补偿任务载荷
type EscrowStatusSyncPayload struct {
	ApplicationID uint   `json:"application_id"`
	TargetStatus  string `json:"target_status"`
}

// NewEscrowNotifyTask 创建通知任务
func NewEscrowNotifyTask(payload EscrowNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEscrowNotify, body), nil
}

// NewEscrowStatusSyncTask 创建状态补偿任务
func NewEscrowStatusSyncTask(payload EscrowStatusSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEscrowStatusSync, body), nil
}
