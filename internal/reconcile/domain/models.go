package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
)

// ErrPersistenceConflict is returned when the inventory item changed state
// between resolution and commit. The surrounding transaction rolls back and
// no order row survives.
var ErrPersistenceConflict = errors.New("persistence_conflict")

type OutcomeKind string

const (
	OutcomeCreated          OutcomeKind = "created"
	OutcomeSkippedDuplicate OutcomeKind = "skipped_duplicate"
	OutcomeRejectedInvalid  OutcomeKind = "rejected_invalid"
)

// Rejection reasons carried on RejectedInvalid outcomes.
const (
	ReasonMissingExternalSaleID = "missing_external_sale_id"
	ReasonMissingPlatformName   = "missing_platform_name"
	ReasonInvalidSalePrice      = "invalid_sale_price"
	ReasonMissingItemReference  = "missing_inventory_reference"
	ReasonUnknownPlatform       = "unknown_platform"
	ReasonNoFeeSchedule         = "no_fee_schedule"
	ReasonItemNotFound          = "item_not_found"
	ReasonAmbiguousItem         = "ambiguous_item"
	ReasonUndefinedROI          = "undefined_roi"
	ReasonItemStateConflict     = "item_state_conflict"
)

// SaleCandidate is one unverified sale record from an external source
// (marketplace export, Notion row, API client). Nothing in it is trusted
// until Reconcile admits it.
type SaleCandidate struct {
	ExternalSaleID string          `json:"external_sale_id"`
	PlatformName   string          `json:"platform_name"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	Currency       string          `json:"currency,omitempty"`
	SoldAt         time.Time       `json:"sold_at"`

	// Inventory reference: either a direct item id or an exact SKU + size
	// key. The direct id wins when both are present.
	InventoryItemID snowflake.ID `json:"inventory_item_id,omitempty"`
	SKU             string       `json:"sku,omitempty"`
	SizeValue       string       `json:"size_value,omitempty"`
	SizeRegion      string       `json:"size_region,omitempty"`

	RawData map[string]any `json:"raw_data,omitempty"`
}

// HasItemReference reports whether the candidate carries any way to locate
// the inventory item it claims to have sold.
func (c SaleCandidate) HasItemReference() bool {
	return c.InventoryItemID != 0 || c.SKU != ""
}

type Outcome struct {
	Kind   OutcomeKind        `json:"kind"`
	Reason string             `json:"reason,omitempty"`
	Order  *orderdomain.Order `json:"order,omitempty"`
}

// Summary aggregates one batch run. Failed counts records that errored for
// infrastructure reasons and may succeed on retry.
type Summary struct {
	Created           int `json:"created"`
	SkippedDuplicate  int `json:"skipped_duplicate"`
	RejectedInvalid   int `json:"rejected_invalid"`
	RejectedAmbiguous int `json:"rejected_ambiguous"`
	Failed            int `json:"failed"`
}

func (s Summary) Total() int {
	return s.Created + s.SkippedDuplicate + s.RejectedInvalid + s.RejectedAmbiguous + s.Failed
}
