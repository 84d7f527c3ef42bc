// Package notion maps rows exported from the Notion inventory workspace
// into typed purchase and sale records. Every field is parsed up front;
// nothing downstream ever touches the raw export again.
package notion

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	reconciledomain "github.com/soleworks/soleledger/internal/reconcile/domain"
)

var (
	ErrMissingSKU         = errors.New("missing_sku")
	ErrMissingSupplier    = errors.New("missing_supplier")
	ErrMissingSaleID      = errors.New("missing_sale_id")
	ErrSaleBeforePurchase = errors.New("sale_before_purchase")
	ErrInvalidBuyPrice    = errors.New("invalid_buy_price")
)

// Row is one exported Notion page. Buy price is the gross amount paid;
// VATIncluded marks rows whose price carries reclaimable VAT.
type Row struct {
	PageID       string          `json:"page_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	SizeValue    string          `json:"size_value"`
	SizeRegion   string          `json:"size_region"`
	Supplier     string          `json:"supplier"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	VATIncluded  bool            `json:"vat_included"`
	BuyDate      *time.Time      `json:"buy_date"`
	DeliveryDate *time.Time      `json:"delivery_date"`

	Platform  string          `json:"platform"`
	SaleID    string          `json:"sale_id"`
	SalePrice decimal.Decimal `json:"sale_price"`
	SaleDate  *time.Time      `json:"sale_date"`
}

// HasSale reports whether the row records a completed sale alongside the
// purchase.
func (r Row) HasSale() bool {
	return strings.TrimSpace(r.SaleID) != "" || !r.SalePrice.IsZero()
}

var hundred = decimal.NewFromInt(100)

// PurchaseRecord converts the row's buy side into an ingestion request.
// When VATIncluded is set, the net price is derived by dividing the gross
// out of the given rate (19 → gross/1.19) and VAT is the remainder, so
// net + vat reproduces the gross exactly.
func (r Row) PurchaseRecord(vatRate decimal.Decimal) (inventorydomain.IngestPurchaseRequest, error) {
	if strings.TrimSpace(r.SKU) == "" {
		return inventorydomain.IngestPurchaseRequest{}, ErrMissingSKU
	}
	if strings.TrimSpace(r.Supplier) == "" {
		return inventorydomain.IngestPurchaseRequest{}, ErrMissingSupplier
	}
	if r.BuyPrice.LessThanOrEqual(decimal.Zero) {
		return inventorydomain.IngestPurchaseRequest{}, ErrInvalidBuyPrice
	}

	gross := r.BuyPrice.RoundBank(2)
	net := gross
	vat := decimal.Zero
	rate := decimal.Zero
	if r.VATIncluded {
		rate = vatRate
		divisor := decimal.NewFromInt(1).Add(vatRate.Div(hundred))
		net = gross.Div(divisor).RoundBank(2)
		vat = gross.Sub(net)
	}

	req := inventorydomain.IngestPurchaseRequest{
		SKU:                strings.TrimSpace(r.SKU),
		ProductName:        strings.TrimSpace(r.Name),
		Brand:              strings.TrimSpace(r.Brand),
		Category:           strings.TrimSpace(r.Category),
		SizeValue:          strings.TrimSpace(r.SizeValue),
		SizeRegion:         strings.TrimSpace(r.SizeRegion),
		Supplier:           strings.TrimSpace(r.Supplier),
		GrossPurchasePrice: gross,
		NetPurchasePrice:   net,
		VATAmount:          vat,
		VATRate:            rate,
		PurchaseDate:       r.BuyDate,
		DeliveryDate:       r.DeliveryDate,
	}
	if r.PageID != "" {
		req.ExternalIDs = map[string]any{"notion_page_id": r.PageID}
	}
	return req, nil
}

// SaleCandidate converts the row's sale side for reconciliation. The sale
// must postdate the purchase; the original workspace had rows where a typo
// put the sale weeks before the buy.
func (r Row) SaleCandidate() (reconciledomain.SaleCandidate, error) {
	if !r.HasSale() {
		return reconciledomain.SaleCandidate{}, ErrMissingSaleID
	}
	if strings.TrimSpace(r.SaleID) == "" {
		return reconciledomain.SaleCandidate{}, ErrMissingSaleID
	}
	if r.SaleDate != nil && r.BuyDate != nil && r.SaleDate.Before(*r.BuyDate) {
		return reconciledomain.SaleCandidate{}, ErrSaleBeforePurchase
	}

	soldAt := time.Now().UTC()
	if r.SaleDate != nil {
		soldAt = *r.SaleDate
	}

	c := reconciledomain.SaleCandidate{
		ExternalSaleID: strings.TrimSpace(r.SaleID),
		PlatformName:   strings.TrimSpace(r.Platform),
		SalePrice:      r.SalePrice.RoundBank(2),
		SoldAt:         soldAt,
		SKU:            strings.TrimSpace(r.SKU),
		SizeValue:      strings.TrimSpace(r.SizeValue),
		SizeRegion:     strings.TrimSpace(r.SizeRegion),
	}
	if r.PageID != "" {
		c.RawData = map[string]any{"notion_page_id": r.PageID}
	}
	return c, nil
}
