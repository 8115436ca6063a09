package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/observability"
	obsmiddleware "github.com/sandistd/carbon-footprint-app/internal/observability/logger"
	obsmetrics "github.com/sandistd/carbon-footprint-app/internal/observability/metrics"
	obstracing "github.com/sandistd/carbon-footprint-app/internal/observability/tracing"
	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/report/pdf"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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

type dashboardRenderer interface {
	Render(context.Context, reportdomain.DashboardReport) ([]byte, error)
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	factorSvc      factordomain.Service
	stakeholderSvc stakeholderdomain.Service
	emissionSvc    emissiondomain.Service
	reportSvc      reportdomain.Service
	renderer       dashboardRenderer
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	FactorSvc      factordomain.Service
	StakeholderSvc stakeholderdomain.Service
	EmissionSvc    emissiondomain.Service
	ReportSvc      reportdomain.Service
	Renderer       *pdf.Renderer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		factorSvc:      p.FactorSvc,
		stakeholderSvc: p.StakeholderSvc,
		emissionSvc:    p.EmissionSvc,
		reportSvc:      p.ReportSvc,
		renderer:       p.Renderer,
	}

	svc.registerHealthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHealthRoutes() {
	s.engine.GET("/health", s.Health)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Emission factors --------
	api.GET("/factors", s.ListFactors)
	api.GET("/factors/active", s.ListActiveFactors)
	api.POST("/factors", s.CreateFactor)
	api.GET("/factors/:id", s.GetFactorByID)
	api.PUT("/factors/:id", s.UpdateFactor)
	api.DELETE("/factors/:id", s.DeleteFactor)

	// -------- Stakeholders --------
	api.GET("/stakeholders", s.ListStakeholders)
	api.POST("/stakeholders", s.CreateStakeholder)
	api.GET("/stakeholders/:id", s.GetStakeholderByID)
	api.PUT("/stakeholders/:id", s.UpdateStakeholder)
	api.DELETE("/stakeholders/:id", s.DeleteStakeholder)

	// -------- Emission records --------
	api.GET("/emissions/:scope", s.ListRecords)
	api.POST("/emissions/:scope", s.CreateRecord)
	api.GET("/emissions/:scope/categories", s.ListCategories)
	api.GET("/emissions/:scope/:id", s.GetRecord)
	api.PUT("/emissions/:scope/:id", s.UpdateRecord)
	api.DELETE("/emissions/:scope/:id", s.DeleteRecord)

	// -------- Reporting --------
	api.GET("/departments", s.ListDepartments)
	api.GET("/years", s.ListYears)
	api.GET("/dashboard", s.GetDashboard)
	api.GET("/dashboard/export.pdf", s.ExportDashboardPDF)
}

// Health reports liveness plus database reachability.
func (s *Server) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			s.log.Warn("health check database ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			body = gin.H{"status": "degraded", "database": "unreachable"}
		}
	}
	c.JSON(status, body)
}
