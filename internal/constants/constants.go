package constants

// 支付状态
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 支付方式
const (
	PaymentMethodCard         = "card"
	PaymentMethodEscrow       = "escrow"
	PaymentMethodBankTransfer = "bank_transfer"
)

// 打款状态
const (
	PayoutStatusRequested  = "requested"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
)

// 合作申请状态，由 Application Gateway 维护
const (
	ApplicationStatusApplied    = "APPLIED"
	ApplicationStatusAccepted   = "ACCEPTED"
	ApplicationStatusContracted = "CONTRACTED"
	ApplicationStatusCompleted  = "COMPLETED"
)

// 通知事件类型
const (
	NotifyTypePaymentCreated  = "escrow_payment_created"
	NotifyTypePayoutReleased  = "payout_released"
	NotifyTypePayoutRequested = "payout_requested"
	NotifyTypePayoutProcessed = "payout_processed"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskEscrowNotify     = "escrow:notify"
	TaskEscrowStatusSync = "escrow:status_sync"
)

// 角色
const (
	RoleBrand      = "brand"
	RoleInfluencer = "influencer"
	RoleOperator   = "operator"
)

// IsValidPaymentMethod 校验支付方式是否受支持
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodEscrow, PaymentMethodBankTransfer:
		return true
	}
	return false
}
