package fee

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountInvalid = errors.New("fee: amount must be positive")
	ErrRateInvalid   = errors.New("fee: rate must be in [0, 1)")
)

var one = decimal.NewFromInt(1)

// ParseRate 解析费率配置（十进制小数字符串，如 "0.05"）
func ParseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrRateInvalid
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return decimal.Zero, ErrRateInvalid
	}
	return rate, nil
}

// Compute 按费率拆分金额：fee 向零截断，net = amount - fee。
// amount 为最小货币单位整数，任意输入下保证 fee + net == amount。
func Compute(amount int64, rate decimal.Decimal) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, ErrAmountInvalid
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return 0, 0, ErrRateInvalid
	}
	feeAmount := decimal.NewFromInt(amount).Mul(rate).Truncate(0).IntPart()
	return feeAmount, amount - feeAmount, nil
}
