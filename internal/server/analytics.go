package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) brandProfit(c *gin.Context) {
	rows, err := s.analyticsSvc.BrandProfit(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": rows})
}

func (s *Server) supplierPerformance(c *gin.Context) {
	rows, err := s.analyticsSvc.SupplierPerformance(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": rows})
}

func (s *Server) monthlyPnL(c *gin.Context) {
	rows, err := s.analyticsSvc.MonthlyPnL(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": rows})
}

func (s *Server) inventoryAging(c *gin.Context) {
	rows, err := s.analyticsSvc.InventoryAging(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": rows})
}
