package paylands

import (
	"fmt"
	"math"

	"paylands-gateway/internal/payment"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	maxMinorInt = decimal.NewFromInt(math.MaxInt64)
)

// MinorUnits converts a decimal amount into integer minor units (value × 100),
// which is the only amount convention sent to Paylands. The conversion is
// exact: a third non-zero fractional digit is rejected instead of rounded.
func MinorUnits(a payment.Amount) (int64, error) {
	if a.Value.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", a.Value)
	}

	m := a.Value.Mul(hundred)
	if !m.Equal(m.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", a.Value)
	}
	if m.GreaterThan(maxMinorInt) {
		return 0, fmt.Errorf("amount %s out of range", a.Value)
	}
	return m.IntPart(), nil
}
