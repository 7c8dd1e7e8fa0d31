package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	"github.com/kahera/kahera/internal/auth/session"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	"github.com/kahera/kahera/internal/config"
	dashboarddomain "github.com/kahera/kahera/internal/dashboard/domain"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	"github.com/kahera/kahera/internal/metrics"
	saledomain "github.com/kahera/kahera/internal/sale/domain"
	timelogdomain "github.com/kahera/kahera/internal/timelog/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
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
	log          *zap.Logger
	genID        *snowflake.Node
	sessions     *session.Manager
	authsvc      authdomain.Service
	catalogSvc   catalogdomain.Service
	saleSvc      saledomain.Service
	ledgerSvc    ledgerdomain.Service
	timelogSvc   timelogdomain.Service
	dashboardSvc dashboarddomain.Service
	metrics      *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Sessions     *session.Manager
	Authsvc      authdomain.Service
	CatalogSvc   catalogdomain.Service
	SaleSvc      saledomain.Service
	LedgerSvc    ledgerdomain.Service
	TimelogSvc   timelogdomain.Service
	DashboardSvc dashboarddomain.Service
	Metrics      *metrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		genID:        p.GenID,
		sessions:     p.Sessions,
		authsvc:      p.Authsvc,
		catalogSvc:   p.CatalogSvc,
		saleSvc:      p.SaleSvc,
		ledgerSvc:    p.LedgerSvc,
		timelogSvc:   p.TimelogSvc,
		dashboardSvc: p.DashboardSvc,
		metrics:      p.Metrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	s.engine.POST("/auth/login", s.Login)
	s.engine.POST("/auth/logout", s.AuthRequired(), s.Logout)
	s.engine.GET("/auth/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired(), s.Timezone())

	// Shared read surface.
	api.GET("/products", s.ListProducts)
	api.GET("/products/low-stock", s.LowStockProducts)
	api.GET("/products/:id", s.GetProduct)
	api.GET("/categories", s.ListCategories)
	api.GET("/sales", s.ListSales)
	api.GET("/sales/:id", s.GetSale)
	api.POST("/sales", s.CreateSale)
	api.GET("/dashboard/cashier", s.CashierDashboard)
	api.GET("/logs/sales", s.ListSalesLogs)
	api.GET("/logs/time", s.ListTimeLogs)

	admin := api.Group("", s.RequireRole(authdomain.RoleAdmin))
	admin.GET("/dashboard/admin", s.AdminDashboard)
	admin.POST("/users", s.CreateUser)
	admin.POST("/products", s.CreateProduct)
	admin.PUT("/products/:id", s.UpdateProduct)
	admin.DELETE("/products/:id", s.DeleteProduct)
	admin.POST("/products/bulk-delete", s.DeleteProducts)
	admin.POST("/products/:id/restock", s.RestockProduct)
	admin.POST("/products/:id/deduct", s.DeductProduct)
	admin.POST("/categories", s.CreateCategory)
	admin.PUT("/categories/:id", s.UpdateCategory)
	admin.DELETE("/categories/:id", s.DeleteCategory)
	admin.DELETE("/sales/:id", s.DeleteSale)
	admin.GET("/logs/inventory", s.ListInventoryLogs)
}
