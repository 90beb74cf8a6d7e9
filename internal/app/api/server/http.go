package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/petrelhq/petrel/docs"
	"github.com/petrelhq/petrel/internal/app/api/handlers"
	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	foodsvc "github.com/petrelhq/petrel/internal/app/service/fooditem"
	hesvc "github.com/petrelhq/petrel/internal/app/service/healthevent"
	mfasvc "github.com/petrelhq/petrel/internal/app/service/mfa"
	petsvc "github.com/petrelhq/petrel/internal/app/service/pet"
	"github.com/petrelhq/petrel/internal/app/service/session"
	subsvc "github.com/petrelhq/petrel/internal/app/service/subscription"
	wlsvc "github.com/petrelhq/petrel/internal/app/service/waitlist"
	"github.com/petrelhq/petrel/internal/app/service/webhook"
	cfgpkg "github.com/petrelhq/petrel/pkg/config"
	metrics "github.com/petrelhq/petrel/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing only here; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Factory  *session.Factory
	Verifier *webhook.Verifier
	Disp     *webhook.Dispatcher
	Subs     *subsvc.Service
	Pets     *petsvc.Service
	Events   *hesvc.Service
	Food     *foodsvc.Service
	Waitlist *wlsvc.Service
	Mfa      *mfasvc.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	handlers.RegisterWaitlistRoutes(pub.Group("/api/v1"), d.Waitlist)

	// Provider webhooks authenticate with their own signature scheme, not
	// bearer tokens, so they bypass the auth middleware.
	hooks := r.Group("/webhooks")
	hooks.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(hooks, d.Verifier, d.Disp, d.Log)

	// Protected group using auth middleware
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware(), mw.AuthMiddleware(d.Cfg, d.Factory, d.Log))
	handlers.RegisterPetRoutes(apiV1, d.Pets)
	handlers.RegisterHealthEventRoutes(apiV1, d.Events)
	handlers.RegisterFoodItemRoutes(apiV1, d.Food)
	handlers.RegisterSubscriptionRoutes(apiV1, d.Subs)
	handlers.RegisterMfaRoutes(apiV1, d.Mfa)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
