package escrow

import (
	"errors"

	"github.com/inflink/escrow-ledger/internal/http/response"
	"github.com/inflink/escrow-ledger/internal/logger"
	"github.com/inflink/escrow-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

// respondInternalError 记录原始错误并返回 500
func respondInternalError(c *gin.Context, msg string, err error) {
	appErr := response.WrapError(response.CodeInternal, msg, err)
	logger.Errorw("escrow_request_failed",
		"path", c.FullPath(),
		"code", appErr.Code,
		"error", err,
	)
	response.Error(c, appErr.Code, appErr.Message)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.msg)
			return
		}
	}
	logger.Errorw("escrow_request_failed",
		"path", c.FullPath(),
		"error", err,
	)
	response.Error(c, fallbackCode, fallbackMsg)
}

// 所有操作共用的网关/账本错误映射
var escrowCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCampaignNotFound, code: response.CodeNotFound, msg: "campaign not found"},
	{target: service.ErrApplicationNotFound, code: response.CodeNotFound, msg: "application not found"},
	{target: service.ErrGatewayUnavailable, code: response.CodeUnavailable, msg: "application gateway unavailable"},
	{target: service.ErrLedgerUnavailable, code: response.CodeUnavailable, msg: "ledger unavailable"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrNotCampaignOwner, code: response.CodeForbidden, msg: "not the campaign owner"},
	{target: service.ErrApplicationStateInvalid, code: response.CodeBadRequest, msg: "application state does not allow payment"},
	{target: service.ErrPaymentExists, code: response.CodeConflict, msg: "payment already exists with different terms"},
}

var paymentReleaseErrorRules = []mappedHandlerError{
	{target: service.ErrNotCampaignOwner, code: response.CodeForbidden, msg: "not the campaign owner"},
	{target: service.ErrApplicationStateInvalid, code: response.CodeBadRequest, msg: "application state does not allow release"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "no successful payment for application"},
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrPayoutExists, code: response.CodeConflict, msg: "payout already in progress"},
	{target: service.ErrPayoutNotFound, code: response.CodeNotFound, msg: "payout not found"},
}

var payoutRequestErrorRules = []mappedHandlerError{
	{target: service.ErrNotApplicationInfluencer, code: response.CodeForbidden, msg: "not the application influencer"},
	{target: service.ErrApplicationStateInvalid, code: response.CodeBadRequest, msg: "application state does not allow payout request"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "no successful payment for application"},
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrPayoutNotFound, code: response.CodeNotFound, msg: "payout not found"},
}

var payoutProcessErrorRules = []mappedHandlerError{
	{target: service.ErrPayoutStateInvalid, code: response.CodeBadRequest, msg: "no requested payout to process"},
	{target: service.ErrLedgerUnavailable, code: response.CodeUnavailable, msg: "ledger unavailable"},
}

var statusErrorRules = []mappedHandlerError{
	{target: service.ErrNotCampaignOwner, code: response.CodeForbidden, msg: "not the campaign owner"},
	{target: service.ErrNotApplicationInfluencer, code: response.CodeForbidden, msg: "not the application influencer"},
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(paymentCreateErrorRules, escrowCommonErrorRules), response.CodeInternal, "create escrow payment failed")
}

func respondPaymentReleaseError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(paymentReleaseErrorRules, escrowCommonErrorRules), response.CodeInternal, "release payment failed")
}

func respondPayoutRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(payoutRequestErrorRules, escrowCommonErrorRules), response.CodeInternal, "request payout failed")
}

func respondPayoutProcessError(c *gin.Context, err error) {
	respondWithMappedError(c, err, payoutProcessErrorRules, response.CodeInternal, "process payout failed")
}

func respondStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(statusErrorRules, escrowCommonErrorRules), response.CodeInternal, "query payment status failed")
}
