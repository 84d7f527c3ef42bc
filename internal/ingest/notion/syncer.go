package notion

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/config"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	reconciledomain "github.com/soleworks/soleledger/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Report summarizes one sync run. Purchase and sale sides are counted
// independently because a row can succeed on one and fail on the other.
type Report struct {
	ItemsCreated    int                     `json:"items_created"`
	ItemsSkipped    int                     `json:"items_skipped"`
	PurchasesFailed int                     `json:"purchases_failed"`
	Sales           reconciledomain.Summary `json:"sales"`
}

type SyncerParams struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Inventory inventorydomain.Service
	Reconcile reconciledomain.Service
}

// Syncer replays a Notion export against the ledger: purchases become
// inventory items, sales go through the reconciliation gate. Safe to run
// repeatedly over the same export.
type Syncer struct {
	log       *zap.Logger
	vatRate   decimal.Decimal
	inventory inventorydomain.Service
	reconcile reconciledomain.Service
}

func NewSyncer(p SyncerParams) *Syncer {
	return &Syncer{
		log:       p.Log.Named("notion.syncer"),
		vatRate:   decimal.NewFromFloat(p.Cfg.DefaultVATRate),
		inventory: p.Inventory,
		reconcile: p.Reconcile,
	}
}

func (s *Syncer) Sync(ctx context.Context, rows []Row) Report {
	var report Report
	var sales []reconciledomain.SaleCandidate

	for i, row := range rows {
		created, err := s.syncPurchase(ctx, row)
		switch {
		case err != nil:
			report.PurchasesFailed++
			s.log.Warn("purchase row rejected",
				zap.Int("index", i),
				zap.String("sku", row.SKU),
				zap.Error(err),
			)
		case created:
			report.ItemsCreated++
		default:
			report.ItemsSkipped++
		}

		if !row.HasSale() {
			continue
		}
		candidate, err := row.SaleCandidate()
		if err != nil {
			report.Sales.RejectedInvalid++
			s.log.Warn("sale row rejected",
				zap.Int("index", i),
				zap.String("sku", row.SKU),
				zap.Error(err),
			)
			continue
		}
		sales = append(sales, candidate)
	}

	if len(sales) > 0 {
		summary := s.reconcile.ReconcileBatch(ctx, sales)
		report.Sales.Created = summary.Created
		report.Sales.SkippedDuplicate = summary.SkippedDuplicate
		report.Sales.RejectedInvalid += summary.RejectedInvalid
		report.Sales.RejectedAmbiguous = summary.RejectedAmbiguous
		report.Sales.Failed = summary.Failed
	}

	s.log.Info("notion sync finished",
		zap.Int("rows", len(rows)),
		zap.Int("items_created", report.ItemsCreated),
		zap.Int("items_skipped", report.ItemsSkipped),
		zap.Int("purchases_failed", report.PurchasesFailed),
		zap.Int("sales_created", report.Sales.Created),
	)
	return report
}

// syncPurchase ingests the row's buy side unless an item tagged with the
// same Notion page id already exists.
func (s *Syncer) syncPurchase(ctx context.Context, row Row) (bool, error) {
	req, err := row.PurchaseRecord(s.vatRate)
	if err != nil {
		return false, err
	}

	if row.PageID != "" {
		existing, err := s.inventory.FindByExternalRef(ctx, "notion_page_id", row.PageID)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}
	}

	if _, err := s.inventory.IngestPurchase(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
