package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// IngestPurchaseRequest is a validated purchase record arriving from an
// ingestion boundary (Notion export, supplier invoice import, manual entry).
type IngestPurchaseRequest struct {
	SKU         string
	ProductName string
	Brand       string
	Category    string
	SizeValue   string
	SizeRegion  string
	Supplier    string

	GrossPurchasePrice decimal.Decimal
	NetPurchasePrice   decimal.Decimal
	VATAmount          decimal.Decimal
	VATRate            decimal.Decimal

	PurchaseDate *time.Time
	DeliveryDate *time.Time

	ExternalIDs map[string]any
}

type Service interface {
	IngestPurchase(ctx context.Context, req IngestPurchaseRequest) (*InventoryItem, error)
	List(ctx context.Context, filter ListFilter) ([]InventoryItem, error)
	FindByExternalRef(ctx context.Context, key, value string) (*InventoryItem, error)
}
