// Package analytics serves read-only aggregates over the reconciled
// ledger. Nothing here writes; the reconciliation gate stays the only
// path that mutates orders and inventory.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/clock"
	"github.com/soleworks/soleledger/internal/config"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BrandProfit struct {
	Brand     string           `json:"brand"`
	UnitsSold int              `json:"units_sold"`
	Revenue   decimal.Decimal  `json:"revenue"`
	NetProfit decimal.Decimal  `json:"net_profit"`
	AvgROI    *decimal.Decimal `json:"avg_roi,omitempty"`
}

type SupplierPerformance struct {
	Supplier       string          `json:"supplier"`
	UnitsPurchased int             `json:"units_purchased"`
	UnitsSold      int             `json:"units_sold"`
	TotalSpend     decimal.Decimal `json:"total_spend"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

type MonthlyPnL struct {
	Month     string          `json:"month"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Fees      decimal.Decimal `json:"fees"`
	NetProfit decimal.Decimal `json:"net_profit"`
}

type AgingBucketReport struct {
	Bucket      string          `json:"bucket"`
	Units       int             `json:"units"`
	CapitalTied decimal.Decimal `json:"capital_tied"`
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Holder *config.MarketplaceConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	holder *config.MarketplaceConfigHolder
}

func NewService(p Params) *Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("analytics.service"),
		clock:  p.Clock,
		holder: p.Holder,
	}
}

func (s *Service) BrandProfit(ctx context.Context) ([]BrandProfit, error) {
	var rows []BrandProfit
	err := s.db.WithContext(ctx).Raw(
		`SELECT b.name AS brand,
		        COUNT(o.id) AS units_sold,
		        COALESCE(SUM(o.gross_sale), 0) AS revenue,
		        COALESCE(SUM(o.net_profit), 0) AS net_profit,
		        AVG(o.roi_percent) AS avg_roi
		 FROM orders o
		 JOIN inventory_items i ON i.id = o.inventory_item_id
		 JOIN products p ON p.id = i.product_id
		 JOIN brands b ON b.id = p.brand_id
		 GROUP BY b.name
		 ORDER BY net_profit DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) SupplierPerformance(ctx context.Context) ([]SupplierPerformance, error) {
	var rows []SupplierPerformance
	err := s.db.WithContext(ctx).Raw(
		`SELECT sup.name AS supplier,
		        COUNT(i.id) AS units_purchased,
		        COUNT(o.id) AS units_sold,
		        COALESCE(SUM(i.gross_purchase_price), 0) AS total_spend,
		        COALESCE(SUM(o.net_profit), 0) AS net_profit
		 FROM inventory_items i
		 JOIN suppliers sup ON sup.id = i.supplier_id
		 LEFT JOIN orders o ON o.inventory_item_id = i.id
		 GROUP BY sup.name
		 ORDER BY net_profit DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) MonthlyPnL(ctx context.Context) ([]MonthlyPnL, error) {
	var rows []MonthlyPnL
	err := s.db.WithContext(ctx).Raw(
		`SELECT `+s.monthExpr()+` AS month,
		        COUNT(o.id) AS units_sold,
		        COALESCE(SUM(o.gross_sale), 0) AS revenue,
		        COALESCE(SUM(o.platform_fee), 0) AS fees,
		        COALESCE(SUM(o.net_profit), 0) AS net_profit
		 FROM orders o
		 GROUP BY month
		 ORDER BY month ASC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InventoryAging buckets in-stock capital by days held. Bucketing happens
// in Go so the thresholds follow marketplace config hot reloads without a
// schema change.
func (s *Service) InventoryAging(ctx context.Context) ([]AgingBucketReport, error) {
	var items []inventorydomain.InventoryItem
	err := s.db.WithContext(ctx).
		Where("status = ?", inventorydomain.StatusInStock).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	buckets := s.holder.Get().AgingBuckets
	reports := make([]AgingBucketReport, len(buckets))
	for i, b := range buckets {
		reports[i] = AgingBucketReport{Bucket: b.Label, CapitalTied: decimal.Zero}
	}

	now := s.clock.Now()
	for _, item := range items {
		days := 0
		if item.PurchaseDate != nil {
			days = daysHeld(*item.PurchaseDate, now)
		}
		for i, b := range buckets {
			if days < b.MinDays {
				continue
			}
			if b.MaxDays != nil && days > *b.MaxDays {
				continue
			}
			reports[i].Units++
			reports[i].CapitalTied = reports[i].CapitalTied.Add(item.GrossPurchasePrice)
			break
		}
	}
	return reports, nil
}

func (s *Service) monthExpr() string {
	switch s.db.Dialector.Name() {
	case "mysql":
		return "DATE_FORMAT(o.sold_at, '%Y-%m')"
	case "sqlite":
		return "strftime('%Y-%m', o.sold_at)"
	default:
		return "to_char(o.sold_at, 'YYYY-MM')"
	}
}

func daysHeld(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
