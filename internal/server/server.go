// Package server exposes the invoice engine to the presentation layer.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/invoicedesk/internal/config"
	draftdomain "github.com/smallbiznis/invoicedesk/internal/draft/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	engine   *gin.Engine
	draftSvc draftdomain.Service
	taxSvc   taxdomain.Service
	renderer render.Renderer
}

type ServerParam struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Engine   *gin.Engine
	DraftSvc draftdomain.Service
	TaxSvc   taxdomain.Service
	Renderer render.Renderer
}

// NewEngine builds the gin engine with the observability middleware chain.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware(cfg.ServiceName))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:      p.Config,
		log:      p.Log.Named("server"),
		engine:   p.Engine,
		draftSvc: p.DraftSvc,
		taxSvc:   p.TaxSvc,
		renderer: p.Renderer,
	}
}

// RegisterRoutes mounts the API surface.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/tax_rates", s.ListTaxRates)

		drafts := api.Group("/drafts")
		{
			drafts.POST("", s.CreateDraft)
			drafts.GET("/:id", s.GetDraft)
			drafts.PATCH("/:id", s.UpdateDraft)
			drafts.DELETE("/:id", s.DiscardDraft)
			drafts.GET("/:id/totals", s.GetTotals)
			drafts.POST("/:id/items", s.AppendItem)
			drafts.DELETE("/:id/items", s.RemoveItemAt)
			drafts.PATCH("/:id/items/:item_id", s.UpdateItem)
			drafts.DELETE("/:id/items/:item_id", s.RemoveItem)
			drafts.POST("/:id/submit", s.SubmitDraft)
			drafts.POST("/:id/render", s.RenderDraft)
		}
	}
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(RunHTTP),
)
