package fee

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseRate(t *testing.T) {
	rate, err := ParseRate("0.05")
	if err != nil {
		t.Fatalf("parse rate failed: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected rate: %s", rate)
	}

	if _, err := ParseRate("abc"); !errors.Is(err, ErrRateInvalid) {
		t.Fatalf("expected ErrRateInvalid for malformed rate, got %v", err)
	}
	if _, err := ParseRate("-0.01"); !errors.Is(err, ErrRateInvalid) {
		t.Fatalf("expected ErrRateInvalid for negative rate, got %v", err)
	}
	if _, err := ParseRate("1"); !errors.Is(err, ErrRateInvalid) {
		t.Fatalf("expected ErrRateInvalid for rate >= 1, got %v", err)
	}

	zero, err := ParseRate("0")
	if err != nil {
		t.Fatalf("zero rate should be valid: %v", err)
	}
	if !zero.IsZero() {
		t.Fatalf("unexpected zero rate: %s", zero)
	}
}

func TestComputeSplitsAmount(t *testing.T) {
	rate := decimal.RequireFromString("0.05")

	tests := []struct {
		name    string
		amount  int64
		wantFee int64
		wantNet int64
	}{
		{name: "even split", amount: 1_000_000, wantFee: 50_000, wantNet: 950_000},
		{name: "fee truncated toward zero", amount: 999, wantFee: 49, wantNet: 950},
		{name: "small amount", amount: 1, wantFee: 0, wantNet: 1},
		{name: "ten", amount: 10, wantFee: 0, wantNet: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			feeAmount, netAmount, err := Compute(tc.amount, rate)
			if err != nil {
				t.Fatalf("compute failed: %v", err)
			}
			if feeAmount != tc.wantFee {
				t.Fatalf("fee = %d, want %d", feeAmount, tc.wantFee)
			}
			if netAmount != tc.wantNet {
				t.Fatalf("net = %d, want %d", netAmount, tc.wantNet)
			}
			if feeAmount+netAmount != tc.amount {
				t.Fatalf("fee %d + net %d != amount %d", feeAmount, netAmount, tc.amount)
			}
		})
	}
}

func TestComputeZeroRate(t *testing.T) {
	feeAmount, netAmount, err := Compute(12345, decimal.Zero)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if feeAmount != 0 || netAmount != 12345 {
		t.Fatalf("unexpected split: fee=%d net=%d", feeAmount, netAmount)
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	rate := decimal.RequireFromString("0.05")

	if _, _, err := Compute(0, rate); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for zero amount, got %v", err)
	}
	if _, _, err := Compute(-100, rate); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected ErrAmountInvalid for negative amount, got %v", err)
	}
	if _, _, err := Compute(100, decimal.NewFromInt(1)); !errors.Is(err, ErrRateInvalid) {
		t.Fatalf("expected ErrRateInvalid for rate >= 1, got %v", err)
	}
	if _, _, err := Compute(100, decimal.RequireFromString("-0.1")); !errors.Is(err, ErrRateInvalid) {
		t.Fatalf("expected ErrRateInvalid for negative rate, got %v", err)
	}
}
