package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/server/http/handlers"
	"github.com/polkiloo/storebot/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.StorefrontFacade
	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	sessionHandler := handlers.NewSessionHandler(p.Facade)
	checkoutHandler := handlers.NewCheckoutHandler(p.Facade, p.Logger)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	webhookHandler := handlers.NewWebhookHandler(p.Facade, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.POST(p.Config.WebhookPath, webhookHandler.Notify)
	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/session", sessionHandler.Open)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(p.Facade))
	userAuth.POST("/checkout", checkoutHandler.Create)
	userAuth.GET("/orders", orderHandler.List)

	return engine
}
