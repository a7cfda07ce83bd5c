package service

import "errors"

// 业务错误定义，由 HTTP 层统一映射为响应码
var (
	ErrCampaignNotFound         = errors.New("campaign not found")
	ErrApplicationNotFound      = errors.New("application not found")
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPayoutNotFound           = errors.New("payout not found")
	ErrNotCampaignOwner         = errors.New("not the campaign owner")
	ErrNotApplicationInfluencer = errors.New("not the application influencer")
	ErrApplicationStateInvalid  = errors.New("application state does not allow this operation")
	ErrPayoutStateInvalid       = errors.New("payout state does not allow this operation")
	ErrPaymentAmountInvalid     = errors.New("payment amount invalid")
	ErrPaymentMethodInvalid     = errors.New("payment method invalid")
	ErrPaymentExists            = errors.New("payment already exists for application")
	ErrPayoutExists             = errors.New("payout already exists for application")
	ErrGatewayUnavailable       = errors.New("application gateway unavailable")
	ErrLedgerUnavailable        = errors.New("ledger storage unavailable")
	ErrInvalidCredentials       = errors.New("invalid username or password")
)
