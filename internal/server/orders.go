package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	"github.com/soleworks/soleledger/pkg/db/pagination"
)

type listOrdersQuery struct {
	pagination.Pagination
	Platform   string     `form:"platform"`
	SoldAfter  *time.Time `form:"sold_after" time_format:"2006-01-02"`
	SoldBefore *time.Time `form:"sold_before" time_format:"2006-01-02"`
}

func (s *Server) listOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	filter := orderdomain.ListFilter{
		SoldAfter:  q.SoldAfter,
		SoldBefore: q.SoldBefore,
		Limit:      q.PageSize,
	}

	if q.Platform != "" {
		platform, err := s.platforms.FindByName(c.Request.Context(), s.db, q.Platform)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if platform == nil {
			c.JSON(http.StatusOK, gin.H{"orders": []any{}, "page_info": pagination.PageInfo{}})
			return
		}
		filter.PlatformID = platform.ID
	}

	if q.PageToken != "" {
		cursor, err := pagination.DecodeCursor(q.PageToken)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Cursor = id
	}

	orders, err := s.orders.List(c.Request.Context(), s.db, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pageInfo := pagination.BuildCursorPageInfo(orders, q.PageSize, func(o *orderdomain.Order) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: o.ID.String()})
		return token
	})
	if len(orders) > q.PageSize {
		orders = orders[:q.PageSize]
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "page_info": pageInfo})
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orders.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order == nil {
		AbortWithError(c, orderdomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

type confirmPayoutRequest struct {
	PayoutDate *time.Time `json:"payout_date"`
}

func (s *Server) confirmPayout(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req confirmPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	payoutDate := time.Now().UTC()
	if req.PayoutDate != nil {
		payoutDate = *req.PayoutDate
	}

	rows, err := s.orders.ConfirmPayout(c.Request.Context(), s.db, id, payoutDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if rows == 0 {
		AbortWithError(c, orderdomain.ErrNotFound)
		return
	}

	order, err := s.orders.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
