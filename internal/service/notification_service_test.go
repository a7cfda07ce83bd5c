package service

import (
	"context"
	"errors"
	"testing"

	"github.com/inflink/escrow-ledger/internal/constants"
	"github.com/inflink/escrow-ledger/internal/models"
	"github.com/inflink/escrow-ledger/internal/notify"
	"github.com/inflink/escrow-ledger/internal/queue"
)

func TestNotificationServiceDispatch(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewNotificationService(notifier, nil)

	err := svc.Dispatch(context.Background(), queue.EscrowNotifyPayload{
		Notification: notify.Notification{
			UserID:  201,
			Type:    constants.NotifyTypePayoutReleased,
			Title:   "合作款项已放款",
			Content: "款项已到账",
		},
		DedupeKey: "payout_released:1001",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != constants.NotifyTypePayoutReleased {
		t.Fatalf("unexpected sent notifications: %+v", notifier.sent)
	}
}

func TestNotificationServiceDispatchPropagatesSendError(t *testing.T) {
	notifier := &fakeNotifier{sendErr: errors.New("notify down")}
	svc := NewNotificationService(notifier, nil)

	err := svc.Dispatch(context.Background(), queue.EscrowNotifyPayload{
		Notification: notify.Notification{UserID: 201, Type: constants.NotifyTypePayoutProcessed},
	})
	if err == nil {
		t.Fatalf("expected send error for worker retry")
	}
}

func TestNotificationServiceInlineFallback(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewNotificationService(notifier, nil)

	// 队列未启用时直接投递
	payout := &models.Payout{
		InfluencerID:  201,
		ApplicationID: 1001,
		Amount:        1_000_000,
		PlatformFee:   50_000,
		NetAmount:     950_000,
		Status:        constants.PayoutStatusRequested,
	}
	svc.NotifyPayoutRequested(context.Background(), payout)

	types := notifier.sentTypes()
	if len(types) != 1 || types[0] != constants.NotifyTypePayoutRequested {
		t.Fatalf("unexpected notifications: %v", types)
	}
}

func TestNotificationServiceNilSafety(t *testing.T) {
	var svc *NotificationService
	svc.NotifyPaymentCreated(context.Background(), &models.Payment{}, 1)
	svc.NotifyPayoutReleased(context.Background(), &models.Payout{})

	real := NewNotificationService(nil, nil)
	real.NotifyPayoutProcessed(context.Background(), nil)
	if err := real.Dispatch(context.Background(), queue.EscrowNotifyPayload{
		Notification: notify.Notification{UserID: 1, Type: "x"},
	}); err != nil {
		t.Fatalf("nop notifier dispatch failed: %v", err)
	}
}
