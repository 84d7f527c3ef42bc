package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/clock"
	"github.com/soleworks/soleledger/internal/config"
	"github.com/soleworks/soleledger/internal/fees"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	"github.com/soleworks/soleledger/internal/observability/metrics"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	"github.com/soleworks/soleledger/internal/profit"
	"github.com/soleworks/soleledger/internal/reconcile/domain"
	pkgdb "github.com/soleworks/soleledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// errDuplicateRace marks an insert that lost the unique-index race inside
// the transaction. Converted to SkippedDuplicate after rollback.
var errDuplicateRace = errors.New("duplicate_race")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	GenID     *snowflake.Node
	Metrics   *metrics.Metrics
	Orders    orderdomain.Repository
	Items     inventorydomain.Repository
	Platforms platformdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	clock     clock.Clock
	genID     *snowflake.Node
	metrics   *metrics.Metrics
	orders    orderdomain.Repository
	items     inventorydomain.Repository
	platforms platformdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("reconcile.service"),
		cfg:       p.Cfg,
		clock:     p.Clock,
		genID:     p.GenID,
		metrics:   p.Metrics,
		orders:    p.Orders,
		items:     p.Items,
		platforms: p.Platforms,
	}
}

func (s *Service) Reconcile(ctx context.Context, c domain.SaleCandidate) (domain.Outcome, error) {
	out, err := s.reconcile(ctx, c)
	if err != nil {
		s.log.Error("reconcile failed",
			zap.String("external_sale_id", c.ExternalSaleID),
			zap.String("platform", c.PlatformName),
			zap.Error(err),
		)
		return out, err
	}

	s.metrics.ReconcileOutcomes.WithLabelValues(string(out.Kind), out.Reason).Inc()

	switch out.Kind {
	case domain.OutcomeCreated:
		s.log.Info("sale reconciled",
			zap.String("order_id", out.Order.ID.String()),
			zap.String("external_sale_id", c.ExternalSaleID),
			zap.String("platform", c.PlatformName),
			zap.String("net_profit", out.Order.NetProfit.String()),
		)
	case domain.OutcomeSkippedDuplicate:
		s.log.Info("duplicate sale skipped",
			zap.String("external_sale_id", c.ExternalSaleID),
			zap.String("platform", c.PlatformName),
		)
	case domain.OutcomeRejectedInvalid:
		s.log.Warn("sale rejected",
			zap.String("external_sale_id", c.ExternalSaleID),
			zap.String("platform", c.PlatformName),
			zap.String("reason", out.Reason),
		)
	}
	return out, nil
}

func (s *Service) reconcile(ctx context.Context, c domain.SaleCandidate) (domain.Outcome, error) {
	if reason, ok := validate(c); !ok {
		return rejected(reason), nil
	}

	platform, err := s.platforms.FindByName(ctx, s.db, c.PlatformName)
	if err != nil {
		return domain.Outcome{}, err
	}
	if platform == nil {
		return rejected(domain.ReasonUnknownPlatform), nil
	}

	// Idempotency fast path. The unique index remains the authoritative
	// guard; this just avoids pointless fee math on replays.
	existing, err := s.orders.FindByExternalID(ctx, s.db, platform.ID, c.ExternalSaleID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if existing != nil {
		return domain.Outcome{Kind: domain.OutcomeSkippedDuplicate, Order: existing}, nil
	}

	item, reason, err := s.resolveItem(ctx, c)
	if err != nil {
		return domain.Outcome{}, err
	}
	if reason != "" {
		return rejected(reason), nil
	}

	schedule, err := s.platforms.ActiveSchedule(ctx, s.db, platform.ID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if schedule == nil {
		return rejected(domain.ReasonNoFeeSchedule), nil
	}

	fee, err := fees.Compute(c.SalePrice, schedule.FeeInputs())
	if err != nil {
		return domain.Outcome{}, err
	}

	result, err := profit.Compute(profit.Inputs{
		GrossPurchasePrice: item.GrossPurchasePrice,
		PurchaseDate:       item.PurchaseDate,
	}, c.SalePrice, c.SoldAt, fee)
	if err != nil {
		if !errors.Is(err, profit.ErrUndefinedROI) {
			return domain.Outcome{}, err
		}
		if !s.cfg.AllowNullROI {
			return rejected(domain.ReasonUndefinedROI), nil
		}
	}

	currency := c.Currency
	if currency == "" {
		currency = schedule.Currency
	}

	now := s.clock.Now()
	order := &orderdomain.Order{
		ID:              s.genID.Generate(),
		InventoryItemID: item.ID,
		PlatformID:      platform.ID,
		ExternalID:      c.ExternalSaleID,
		Status:          orderdomain.StatusCompleted,
		Currency:        currency,
		SoldAt:          c.SoldAt,
		GrossSale:       c.SalePrice.RoundBank(2),
		PlatformFee:     fee.TotalFee,
		NetProceeds:     result.NetProceeds,
		GrossProfit:     result.GrossProfit,
		NetProfit:       result.NetProfit,
		ROIPercent:      result.ROIPercent,
		ShelfLifeDays:   result.ShelfLifeDays,
		RawData:         datatypes.JSONMap(c.RawData),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Order insert and inventory transition commit or roll back together.
	// A sold item without its order, or the reverse, must be impossible.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.items.MarkSold(ctx, tx, item.ID, result.ROIPercent, result.ShelfLifeDays, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrPersistenceConflict
		}

		inserted, err := s.orders.Insert(ctx, tx, order)
		if err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return errDuplicateRace
			}
			return err
		}
		if !inserted {
			return errDuplicateRace
		}
		return nil
	})
	switch {
	case errors.Is(err, errDuplicateRace):
		existing, ferr := s.orders.FindByExternalID(ctx, s.db, platform.ID, c.ExternalSaleID)
		if ferr != nil {
			return domain.Outcome{}, ferr
		}
		return domain.Outcome{Kind: domain.OutcomeSkippedDuplicate, Order: existing}, nil
	case errors.Is(err, domain.ErrPersistenceConflict):
		return rejected(domain.ReasonItemStateConflict), nil
	case err != nil:
		return domain.Outcome{}, err
	}

	return domain.Outcome{Kind: domain.OutcomeCreated, Order: order}, nil
}

func (s *Service) ReconcileBatch(ctx context.Context, candidates []domain.SaleCandidate) domain.Summary {
	var summary domain.Summary
	for i, c := range candidates {
		out, err := s.Reconcile(ctx, c)
		if err != nil {
			summary.Failed++
			s.log.Error("batch record failed",
				zap.Int("index", i),
				zap.String("external_sale_id", c.ExternalSaleID),
				zap.Error(err),
			)
			continue
		}
		switch out.Kind {
		case domain.OutcomeCreated:
			summary.Created++
		case domain.OutcomeSkippedDuplicate:
			summary.SkippedDuplicate++
		case domain.OutcomeRejectedInvalid:
			if out.Reason == domain.ReasonAmbiguousItem {
				summary.RejectedAmbiguous++
			} else {
				summary.RejectedInvalid++
			}
		}
	}

	s.log.Info("batch reconciled",
		zap.Int("total", summary.Total()),
		zap.Int("created", summary.Created),
		zap.Int("skipped_duplicate", summary.SkippedDuplicate),
		zap.Int("rejected_invalid", summary.RejectedInvalid),
		zap.Int("rejected_ambiguous", summary.RejectedAmbiguous),
		zap.Int("failed", summary.Failed),
	)
	return summary
}

func (s *Service) ResolvePreview(ctx context.Context, c domain.SaleCandidate) ([]inventorydomain.InventoryItem, error) {
	if c.InventoryItemID != 0 {
		item, err := s.items.FindByID(ctx, s.db, c.InventoryItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, nil
		}
		return []inventorydomain.InventoryItem{*item}, nil
	}
	return s.items.ResolveInStock(ctx, s.db, c.SKU, c.SizeValue, c.SizeRegion)
}

// resolveItem locates exactly one in-stock item for the candidate. A
// non-empty reason means rejection; error means infrastructure failure.
func (s *Service) resolveItem(ctx context.Context, c domain.SaleCandidate) (*inventorydomain.InventoryItem, string, error) {
	if c.InventoryItemID != 0 {
		item, err := s.items.FindByID(ctx, s.db, c.InventoryItemID)
		if err != nil {
			return nil, "", err
		}
		if item == nil {
			return nil, domain.ReasonItemNotFound, nil
		}
		if item.Status != inventorydomain.StatusInStock {
			return nil, domain.ReasonItemStateConflict, nil
		}
		return item, "", nil
	}

	matches, err := s.items.ResolveInStock(ctx, s.db, c.SKU, c.SizeValue, c.SizeRegion)
	if err != nil {
		return nil, "", err
	}
	switch len(matches) {
	case 0:
		return nil, domain.ReasonItemNotFound, nil
	case 1:
		return &matches[0], "", nil
	default:
		return nil, domain.ReasonAmbiguousItem, nil
	}
}

func validate(c domain.SaleCandidate) (string, bool) {
	if strings.TrimSpace(c.ExternalSaleID) == "" {
		return domain.ReasonMissingExternalSaleID, false
	}
	if strings.TrimSpace(c.PlatformName) == "" {
		return domain.ReasonMissingPlatformName, false
	}
	if c.SalePrice.LessThanOrEqual(decimal.Zero) {
		return domain.ReasonInvalidSalePrice, false
	}
	if !c.HasItemReference() {
		return domain.ReasonMissingItemReference, false
	}
	return "", true
}

func rejected(reason string) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeRejectedInvalid, Reason: reason}
}
