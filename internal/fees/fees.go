// Package fees computes marketplace seller fees from a platform fee schedule.
package fees

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidSchedule = errors.New("invalid_fee_schedule")

// Schedule is the immutable per-marketplace fee configuration.
type Schedule struct {
	PercentageFee      decimal.Decimal
	FixedProcessingFee decimal.Decimal
	Currency           string
}

// Breakdown is the fee split for one sale, rounded to the currency's
// minor unit (2 places, half-even).
type Breakdown struct {
	PercentageComponent decimal.Decimal
	FixedComponent      decimal.Decimal
	TotalFee            decimal.Decimal
}

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

// Compute returns the seller fee breakdown for salePrice under schedule.
// Pure; no side effects.
func Compute(salePrice decimal.Decimal, schedule Schedule) (Breakdown, error) {
	if salePrice.LessThanOrEqual(zero) {
		return Breakdown{}, ErrInvalidSchedule
	}
	if schedule.PercentageFee.LessThan(zero) || schedule.PercentageFee.GreaterThan(one) {
		return Breakdown{}, ErrInvalidSchedule
	}
	if schedule.FixedProcessingFee.LessThan(zero) {
		return Breakdown{}, ErrInvalidSchedule
	}

	pct := salePrice.Mul(schedule.PercentageFee).RoundBank(2)
	fixed := schedule.FixedProcessingFee.RoundBank(2)

	return Breakdown{
		PercentageComponent: pct,
		FixedComponent:      fixed,
		TotalFee:            pct.Add(fixed).RoundBank(2),
	}, nil
}
