package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reconciledomain "github.com/soleworks/soleledger/internal/reconcile/domain"
)

func (s *Server) reconcileSale(c *gin.Context) {
	var candidate reconciledomain.SaleCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	out, err := s.reconcileSvc.Reconcile(c.Request.Context(), candidate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	switch out.Kind {
	case reconciledomain.OutcomeCreated:
		c.JSON(http.StatusCreated, out)
	case reconciledomain.OutcomeRejectedInvalid:
		c.JSON(http.StatusUnprocessableEntity, out)
	default:
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) reconcileBatch(c *gin.Context) {
	var candidates []reconciledomain.SaleCandidate
	if err := c.ShouldBindJSON(&candidates); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	summary := s.reconcileSvc.ReconcileBatch(c.Request.Context(), candidates)
	c.JSON(http.StatusOK, summary)
}

func (s *Server) reconcilePreview(c *gin.Context) {
	var candidate reconciledomain.SaleCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	matches, err := s.reconcileSvc.ResolvePreview(c.Request.Context(), candidate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
