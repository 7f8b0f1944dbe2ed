package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dealerstack/vaahan/internal/audit"
	auditdomain "github.com/dealerstack/vaahan/internal/audit/domain"
	"github.com/dealerstack/vaahan/internal/booking"
	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"github.com/dealerstack/vaahan/internal/clock"
	"github.com/dealerstack/vaahan/internal/commission"
	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	"github.com/dealerstack/vaahan/internal/config"
	"github.com/dealerstack/vaahan/internal/counter"
	"github.com/dealerstack/vaahan/internal/disbursement"
	disbursementdomain "github.com/dealerstack/vaahan/internal/disbursement/domain"
	"github.com/dealerstack/vaahan/internal/ledger"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"github.com/dealerstack/vaahan/internal/migration"
	"github.com/dealerstack/vaahan/internal/observability"
	obsmiddleware "github.com/dealerstack/vaahan/internal/observability/logger"
	obsmetrics "github.com/dealerstack/vaahan/internal/observability/metrics"
	"github.com/dealerstack/vaahan/internal/receipt"
	receiptdomain "github.com/dealerstack/vaahan/internal/receipt/domain"
	"github.com/dealerstack/vaahan/internal/reconcile"
	"github.com/dealerstack/vaahan/internal/reference"
	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	fx.Provide(registerGin),
	migration.Module,
	counter.Module,
	reference.Module,
	audit.Module,
	booking.Module,
	ledger.Module,
	receipt.Module,
	disbursement.Module,
	commission.Module,
	reconcile.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	auditSvc        auditdomain.Service
	bookingSvc      bookingdomain.Service
	ledgerSvc       ledgerdomain.Service
	receiptSvc      receiptdomain.Service
	disbursementSvc disbursementdomain.Service
	commissionSvc   commissiondomain.Service
	refrepo         refdomain.Repository
	reconciler      *reconcile.Reconciler
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuditSvc        auditdomain.Service
	BookingSvc      bookingdomain.Service
	LedgerSvc       ledgerdomain.Service
	ReceiptSvc      receiptdomain.Service
	DisbursementSvc disbursementdomain.Service
	CommissionSvc   commissiondomain.Service
	Refrepo         refdomain.Repository
	Reconciler      *reconcile.Reconciler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		auditSvc:        p.AuditSvc,
		bookingSvc:      p.BookingSvc,
		ledgerSvc:       p.LedgerSvc,
		receiptSvc:      p.ReceiptSvc,
		disbursementSvc: p.DisbursementSvc,
		commissionSvc:   p.CommissionSvc,
		refrepo:         p.Refrepo,
		reconciler:      p.Reconciler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(ActorContext())

	bookings := v1.Group("/bookings")
	bookings.POST("", s.CreateBooking)
	bookings.GET("/:id", s.GetBooking)
	bookings.GET("/:id/ledger", s.ListLedgerEntries)
	bookings.POST("/:id/receipts", s.AddReceipt)
	bookings.GET("/:id/receipts", s.ListReceipts)
	bookings.POST("/:id/debits", s.AddDebit)
	bookings.POST("/:id/disbursements", s.CreateDisbursement)
	bookings.GET("/:id/disbursements", s.ListDisbursements)

	v1.PATCH("/ledger-entries/:id", s.UpdateLedgerEntry)
	v1.POST("/receipts/:id/cancel", s.CancelReceipt)
	v1.POST("/disbursements/:id/cancel", s.CancelDisbursement)

	subdealers := v1.Group("/subdealers")
	subdealers.PUT("/:id/models/:modelId/commission-rates", s.UpsertCommissionRates)
	subdealers.GET("/:id/models/:modelId/commission-history", s.ListCommissionHistory)
	subdealers.POST("/:id/commission-date-range", s.SetCommissionDateRange)
	subdealers.GET("/:id/commission-report", s.CommissionReport)

	refs := v1.Group("/reference")
	refs.GET("/cash-locations", s.ListCashLocations)
	refs.GET("/banks", s.ListBanks)
	refs.GET("/finance-providers", s.ListFinanceProviders)
	refs.GET("/subdealers", s.ListSubdealers)
	refs.GET("/vehicle-models", s.ListVehicleModels)
	refs.GET("/price-headers", s.ListPriceHeaders)

	admin := v1.Group("/admin")
	admin.POST("/reconcile", s.RunReconciliation)
	admin.GET("/audit-logs", s.ListAuditLogs)
}
