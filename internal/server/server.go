package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/voltgrid/internal/aggregation"
	aggregationdomain "github.com/smallbiznis/voltgrid/internal/aggregation/domain"
	"github.com/smallbiznis/voltgrid/internal/config"
	"github.com/smallbiznis/voltgrid/internal/costing"
	costingdomain "github.com/smallbiznis/voltgrid/internal/costing/domain"
	"github.com/smallbiznis/voltgrid/internal/normalizer"
	"github.com/smallbiznis/voltgrid/internal/observability"
	obslogger "github.com/smallbiznis/voltgrid/internal/observability/logger"
	obstracing "github.com/smallbiznis/voltgrid/internal/observability/tracing"
	"github.com/smallbiznis/voltgrid/internal/tariff"
	"github.com/smallbiznis/voltgrid/internal/telemetry"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	"github.com/smallbiznis/voltgrid/internal/unit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	fx.Provide(registerGin),
	normalizer.Module,
	telemetry.Module,
	aggregation.Module,
	tariff.Module,
	unit.Module,
	costing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	telemetrySvc   telemetrydomain.Service
	aggregationSvc aggregationdomain.Service
	costingSvc     costingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	TelemetrySvc   telemetrydomain.Service
	AggregationSvc aggregationdomain.Service
	CostingSvc     costingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		telemetrySvc:   p.TelemetrySvc,
		aggregationSvc: p.AggregationSvc,
		costingSvc:     p.CostingSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/telemetry", s.IngestTelemetry)
	v1.GET("/equipments/:equipment_id/readings", s.ListReadings)
	v1.GET("/equipments/:equipment_id/history", s.GetHistory)
	v1.GET("/units/:code/cost", s.GetCost)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1/admin")

	admin.POST("/readings/repair", s.RepairReading)
	admin.GET("/readings/duplicates", s.ListDuplicates)
	admin.POST("/readings/duplicates/purge", s.PurgeDuplicates)
}
