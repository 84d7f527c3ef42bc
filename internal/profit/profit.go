// Package profit derives the financial outcome of a single resale.
package profit

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/fees"
)

// ErrUndefinedROI signals a zero (or negative) purchase price. The result
// still carries proceeds and profits; only ROI is undefined. Callers decide
// whether to store a null ROI or reject the record.
var ErrUndefinedROI = errors.New("undefined_roi")

// Inputs is the purchase-side view of the inventory item being sold.
type Inputs struct {
	GrossPurchasePrice decimal.Decimal
	PurchaseDate       *time.Time
}

type Result struct {
	NetProceeds   decimal.Decimal
	GrossProfit   decimal.Decimal
	NetProfit     decimal.Decimal
	ROIPercent    *decimal.Decimal
	ShelfLifeDays *int
}

var hundred = decimal.NewFromInt(100)

// Compute combines the sale price and fee breakdown with the item's purchase
// cost. Monetary outputs are rounded to 2 places half-even. A missing
// purchase date is not fatal: shelf life is nil and everything else is still
// computed.
func Compute(in Inputs, salePrice decimal.Decimal, soldAt time.Time, fee fees.Breakdown) (Result, error) {
	res := Result{
		NetProceeds: salePrice.Sub(fee.TotalFee).RoundBank(2),
		GrossProfit: salePrice.Sub(in.GrossPurchasePrice).RoundBank(2),
	}
	res.NetProfit = res.NetProceeds.Sub(in.GrossPurchasePrice).RoundBank(2)

	if in.PurchaseDate != nil {
		days := daysBetween(*in.PurchaseDate, soldAt)
		if days < 0 {
			days = 0
		}
		res.ShelfLifeDays = &days
	}

	if in.GrossPurchasePrice.LessThanOrEqual(decimal.Zero) {
		return res, ErrUndefinedROI
	}

	roi := res.NetProfit.Div(in.GrossPurchasePrice).Mul(hundred).RoundBank(2)
	res.ROIPercent = &roi

	return res, nil
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
