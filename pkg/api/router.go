package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/voicelink/pkg/api/handlers"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/device/schema"
	"github.com/urmzd/voicelink/pkg/oauth"
	"github.com/urmzd/voicelink/pkg/provider"
)

// Options holds the router dependencies
type Options struct {
	Provider   *provider.Service
	OAuth      *oauth.Service
	Controller backend.Controller
	Validator  *schema.Validator
	// Unlink is called on account unlink; nil only acknowledges it
	Unlink handlers.UnlinkFunc
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine  *gin.Engine
	opts    Options
	metrics *Metrics
}

// NewRouter creates a new API router
func NewRouter(opts Options) *Router {
	gin.SetMode(gin.ReleaseMode)

	if opts.Controller == nil {
		opts.Controller = backend.NewNullController()
	}
	if opts.Validator == nil {
		opts.Validator = schema.NewValidator()
	}

	engine := gin.New()
	metrics := NewMetrics()
	SetupMiddleware(engine, metrics)

	router := &Router{
		engine:  engine,
		opts:    opts,
		metrics: metrics,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.opts.Controller)
	r.engine.GET("/health", healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{})))

	// Account linking
	r.opts.OAuth.Register(r.engine)

	webhook := handlers.NewWebhookHandler(r.opts.Provider, r.opts.Validator, r.opts.Unlink)
	v1 := r.engine.Group("/v1.0")
	{
		v1.HEAD("", webhook.Ping)

		user := v1.Group("/user", r.opts.OAuth.Verify())
		{
			user.GET("/devices", webhook.Devices)
			user.POST("/devices/query", webhook.Query)
			user.POST("/devices/action", webhook.Action)
			user.POST("/unlink", webhook.Unlink)
		}
	}
}

// Handler returns the HTTP handler of the router
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
