package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/soleworks/soleledger/internal/analytics"
	"github.com/soleworks/soleledger/internal/catalog"
	"github.com/soleworks/soleledger/internal/config"
	"github.com/soleworks/soleledger/internal/ingest"
	"github.com/soleworks/soleledger/internal/ingest/notion"
	"github.com/soleworks/soleledger/internal/inventory"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	"github.com/soleworks/soleledger/internal/observability/metrics"
	"github.com/soleworks/soleledger/internal/order"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	"github.com/soleworks/soleledger/internal/platform"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	"github.com/soleworks/soleledger/internal/reconcile"
	reconciledomain "github.com/soleworks/soleledger/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	catalog.Module,
	platform.Module,
	inventory.Module,
	order.Module,
	reconcile.Module,
	analytics.Module,
	ingest.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(m.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	reconcileSvc reconciledomain.Service
	inventorySvc inventorydomain.Service
	orders       orderdomain.Repository
	platforms    platformdomain.Repository
	analyticsSvc *analytics.Service
	syncer       *notion.Syncer
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	ReconcileSvc reconciledomain.Service
	InventorySvc inventorydomain.Service
	Orders       orderdomain.Repository
	Platforms    platformdomain.Repository
	AnalyticsSvc *analytics.Service
	Syncer       *notion.Syncer
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		reconcileSvc: p.ReconcileSvc,
		inventorySvc: p.InventorySvc,
		orders:       p.Orders,
		platforms:    p.Platforms,
		analyticsSvc: p.AnalyticsSvc,
		syncer:       p.Syncer,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api")

	sales := api.Group("/sales")
	sales.POST("/reconcile", s.reconcileSale)
	sales.POST("/reconcile/batch", s.reconcileBatch)
	sales.POST("/reconcile/preview", s.reconcilePreview)

	orders := api.Group("/orders")
	orders.GET("", s.listOrders)
	orders.GET("/:id", s.getOrder)
	orders.PATCH("/:id/payout", s.confirmPayout)

	inv := api.Group("/inventory")
	inv.POST("", s.ingestPurchase)
	inv.GET("", s.listInventory)

	an := api.Group("/analytics")
	an.GET("/brands", s.brandProfit)
	an.GET("/suppliers", s.supplierPerformance)
	an.GET("/monthly", s.monthlyPnL)
	an.GET("/aging", s.inventoryAging)

	api.GET("/platforms", s.listPlatforms)
	api.POST("/ingest/notion", s.notionSync)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
