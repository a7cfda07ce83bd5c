package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/gateway"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/notify"
	"github.com/inflink/escrow-ledger/internal/provider"
	"github.com/inflink/escrow-ledger/internal/queue"
	"github.com/inflink/escrow-ledger/internal/repository"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubGateway struct {
	mu           sync.Mutex
	applications map[uint]gateway.Application
	setStatusErr error
}

func (g *stubGateway) GetCampaign(ctx context.Context, campaignID uint) (*gateway.Campaign, error) {
	return nil, gateway.ErrNotFound
}

func (g *stubGateway) GetApplication(ctx context.Context, applicationID uint) (*gateway.Application, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	application, ok := g.applications[applicationID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return &application, nil
}

func (g *stubGateway) SetApplicationStatus(ctx context.Context, applicationID uint, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.setStatusErr != nil {
		return g.setStatusErr
	}
	application := g.applications[applicationID]
	application.Status = status
	g.applications[applicationID] = application
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Send(ctx context.Context, notification notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func setupConsumerTest(t *testing.T) (*Consumer, *stubGateway, *recordingNotifier) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Payment{}, &models.Payout{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	gw := &stubGateway{applications: map[uint]gateway.Application{}}
	notifier := &recordingNotifier{}
	notificationSvc := service.NewNotificationService(notifier, nil)
	escrowSvc := service.NewEscrowService(
		repository.NewPaymentRepository(db),
		repository.NewPayoutRepository(db),
		gw,
		notificationSvc,
		nil,
		decimal.RequireFromString("0.05"),
		30,
	)

	consumer := NewConsumer(&provider.Container{
		NotificationService: notificationSvc,
		EscrowService:       escrowSvc,
	})
	return consumer, gw, notifier
}

func TestHandleEscrowNotify(t *testing.T) {
	consumer, _, notifier := setupConsumerTest(t)

	task, err := queue.NewEscrowNotifyTask(queue.EscrowNotifyPayload{
		Notification: notify.Notification{
			UserID:  201,
			Type:    constants.NotifyTypePayoutReleased,
			Title:   "合作款项已放款",
			Content: "款项已到账",
		},
		DedupeKey: "payout_released:1001",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleEscrowNotify(context.Background(), task); err != nil {
		t.Fatalf("handle notify failed: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != 201 {
		t.Fatalf("unexpected sent notifications: %+v", notifier.sent)
	}
}

func TestHandleEscrowNotifySkipsInvalidPayload(t *testing.T) {
	consumer, _, notifier := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskEscrowNotify, []byte(`{"notification":{"user_id":0,"type":""}}`))
	if err := consumer.handleEscrowNotify(context.Background(), task); err != nil {
		t.Fatalf("invalid payload must be skipped, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("invalid payload must not be dispatched")
	}

	// 非法 JSON 需要返回错误触发重试
	task = asynq.NewTask(queue.TaskEscrowNotify, []byte(`{not json`))
	if err := consumer.handleEscrowNotify(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleEscrowStatusSync(t *testing.T) {
	consumer, gw, _ := setupConsumerTest(t)
	gw.applications[1001] = gateway.Application{
		ID:           1001,
		CampaignID:   11,
		InfluencerID: 201,
		Status:       constants.ApplicationStatusAccepted,
	}

	task, err := queue.NewEscrowStatusSyncTask(queue.EscrowStatusSyncPayload{
		ApplicationID: 1001,
		TargetStatus:  constants.ApplicationStatusContracted,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleEscrowStatusSync(context.Background(), task); err != nil {
		t.Fatalf("handle status sync failed: %v", err)
	}
	if got := gw.applications[1001].Status; got != constants.ApplicationStatusContracted {
		t.Fatalf("application status = %s, want CONTRACTED", got)
	}
}

func TestHandleEscrowStatusSyncSkipsMissingApplication(t *testing.T) {
	consumer, _, _ := setupConsumerTest(t)

	task, err := queue.NewEscrowStatusSyncTask(queue.EscrowStatusSyncPayload{
		ApplicationID: 9999,
		TargetStatus:  constants.ApplicationStatusContracted,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	// 合作申请已不存在，任务直接完成，不再重试
	if err := consumer.handleEscrowStatusSync(context.Background(), task); err != nil {
		t.Fatalf("missing application must be skipped, got %v", err)
	}
}

func TestHandleEscrowStatusSyncRetriesOnGatewayFailure(t *testing.T) {
	consumer, gw, _ := setupConsumerTest(t)
	gw.applications[1001] = gateway.Application{
		ID:     1001,
		Status: constants.ApplicationStatusAccepted,
	}
	gw.setStatusErr = errors.New("gateway down")

	task, err := queue.NewEscrowStatusSyncTask(queue.EscrowStatusSyncPayload{
		ApplicationID: 1001,
		TargetStatus:  constants.ApplicationStatusContracted,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleEscrowStatusSync(context.Background(), task); err == nil {
		t.Fatalf("expected error so asynq retries the task")
	}
}
