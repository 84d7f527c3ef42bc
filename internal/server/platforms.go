package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soleworks/soleledger/internal/ingest/notion"
)

func (s *Server) listPlatforms(c *gin.Context) {
	platforms, err := s.platforms.FindAll(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}

type notionSyncRequest struct {
	Rows []notion.Row `json:"rows"`
}

func (s *Server) notionSync(c *gin.Context) {
	var req notionSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	report := s.syncer.Sync(c.Request.Context(), req.Rows)
	c.JSON(http.StatusOK, report)
}
