package models

import (
	"github.com/shopspring/decimal"
)

// Money 展示用金额（账本存最小货币单位整数，展示保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromMinorUnits 从最小货币单位整数创建金额（如 1050 -> 10.50）
func NewMoneyFromMinorUnits(amount int64) Money {
	return Money{Decimal: decimal.New(amount, -2)}
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}
