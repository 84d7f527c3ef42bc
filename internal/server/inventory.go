package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
)

type ingestPurchaseRequest struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	SizeValue   string `json:"size_value"`
	SizeRegion  string `json:"size_region"`
	Supplier    string `json:"supplier"`

	GrossPurchasePrice decimal.Decimal `json:"gross_purchase_price"`
	NetPurchasePrice   decimal.Decimal `json:"net_purchase_price"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	VATRate            decimal.Decimal `json:"vat_rate"`

	PurchaseDate *time.Time `json:"purchase_date"`
	DeliveryDate *time.Time `json:"delivery_date"`

	ExternalIDs map[string]any `json:"external_ids"`
}

func (s *Server) ingestPurchase(c *gin.Context) {
	var req ingestPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.inventorySvc.IngestPurchase(c.Request.Context(), inventorydomain.IngestPurchaseRequest{
		SKU:                req.SKU,
		ProductName:        req.ProductName,
		Brand:              req.Brand,
		Category:           req.Category,
		SizeValue:          req.SizeValue,
		SizeRegion:         req.SizeRegion,
		Supplier:           req.Supplier,
		GrossPurchasePrice: req.GrossPurchasePrice,
		NetPurchasePrice:   req.NetPurchasePrice,
		VATAmount:          req.VATAmount,
		VATRate:            req.VATRate,
		PurchaseDate:       req.PurchaseDate,
		DeliveryDate:       req.DeliveryDate,
		ExternalIDs:        req.ExternalIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type listInventoryQuery struct {
	Status string `form:"status"`
	SKU    string `form:"sku"`
	Limit  int    `form:"limit,default=100"`
}

func (s *Server) listInventory(c *gin.Context) {
	var q listInventoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.inventorySvc.List(c.Request.Context(), inventorydomain.ListFilter{
		Status: q.Status,
		SKU:    q.SKU,
		Limit:  q.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
