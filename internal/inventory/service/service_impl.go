package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/soleworks/soleledger/internal/catalog/domain"
	"github.com/soleworks/soleledger/internal/inventory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Purchase prices may drift by a cent between gross and net+vat because the
// upstream bookkeeping rounds each part independently.
var priceTolerance = decimal.RequireFromString("0.01")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Catalog catalogdomain.Repository
	Repo    domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	catalog catalogdomain.Repository
	repo    domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("inventory.service"),
		genID:   p.GenID,
		catalog: p.Catalog,
		repo:    p.Repo,
	}
}

func (s *Service) IngestPurchase(ctx context.Context, req domain.IngestPurchaseRequest) (*domain.InventoryItem, error) {
	if strings.TrimSpace(req.SKU) == "" {
		return nil, domain.ErrInvalidPurchase
	}
	if strings.TrimSpace(req.Supplier) == "" {
		return nil, domain.ErrInvalidPurchase
	}
	if req.GrossPurchasePrice.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidPurchase
	}

	net := req.NetPurchasePrice
	vat := req.VATAmount
	if net.IsZero() && vat.IsZero() {
		net = req.GrossPurchasePrice
	}
	if req.GrossPurchasePrice.Sub(net.Add(vat)).Abs().GreaterThan(priceTolerance) {
		return nil, domain.ErrPurchaseInvariant
	}

	var item *domain.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brand, err := s.catalog.GetOrCreateBrand(ctx, tx, req.Brand)
		if err != nil {
			return err
		}
		category, err := s.catalog.GetOrCreateCategory(ctx, tx, req.Category)
		if err != nil {
			return err
		}
		supplier, err := s.catalog.GetOrCreateSupplier(ctx, tx, req.Supplier)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(req.ProductName)
		if name == "" {
			name = strings.TrimSpace(req.Brand + " " + req.SKU)
		}
		product, err := s.catalog.GetOrCreateProduct(ctx, tx, req.SKU, name, brand.ID, category.ID)
		if err != nil {
			return err
		}
		size, err := s.catalog.GetOrCreateSize(ctx, tx, req.SizeValue, req.SizeRegion, category.ID)
		if err != nil {
			return err
		}

		item = &domain.InventoryItem{
			ID:                 s.genID.Generate(),
			ProductID:          product.ID,
			SizeID:             size.ID,
			SupplierID:         &supplier.ID,
			Quantity:           1,
			NetPurchasePrice:   net.RoundBank(2),
			GrossPurchasePrice: req.GrossPurchasePrice.RoundBank(2),
			VATAmount:          vat.RoundBank(2),
			VATRate:            req.VATRate,
			PurchaseDate:       req.PurchaseDate,
			DeliveryDate:       req.DeliveryDate,
			Status:             domain.StatusInStock,
			ExternalIDs:        datatypes.JSONMap(req.ExternalIDs),
		}
		return s.repo.Create(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase ingested",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", req.SKU),
		zap.String("supplier", req.Supplier),
		zap.String("gross", item.GrossPurchasePrice.String()),
	)

	return item, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.InventoryItem, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) FindByExternalRef(ctx context.Context, key, value string) (*domain.InventoryItem, error) {
	return s.repo.FindByExternalRef(ctx, s.db, key, value)
}
