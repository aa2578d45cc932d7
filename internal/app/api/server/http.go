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
	"golang.org/x/time/rate"

	"github.com/usecmdr-rgb/ovrsee-sub007/docs"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/api/handlers"
	mw "github.com/usecmdr-rgb/ovrsee-sub007/internal/app/api/middleware"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/billing"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/campaign"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/entitlement"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/retention"
	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/trial"
	cfgpkg "github.com/usecmdr-rgb/ovrsee-sub007/pkg/config"
	metrics "github.com/usecmdr-rgb/ovrsee-sub007/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request tracing only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func newRateLimiter(cfg *cfgpkg.Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	limiter *rate.Limiter,
	gate *entitlement.Gate,
	trials *trial.Service,
	campaigns *campaign.Service,
	bill *billing.Service,
	ret *retention.Service,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authenticated APIs: identity first so logs carry user_id
	apiV1 := r.Group("/api/v1")
	apiV1.Use(
		mw.IdentityMiddleware(cfg),
		mw.RateLimitMiddleware(limiter),
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
	)

	handlers.RegisterAccountRoutes(apiV1, gate)
	handlers.RegisterTrialRoutes(apiV1, gate, trials)
	handlers.RegisterCampaignRoutes(apiV1, campaigns)

	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), bill, ret)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
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
	fx.Provide(newRateLimiter),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
