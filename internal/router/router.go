package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/oppe-api/internal/handler"
	"github.com/jwalitptl/oppe-api/internal/middleware"
	"github.com/jwalitptl/oppe-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	health     *handler.HealthHandler
	physicianH Handler
	caseH      Handler
	reviewH    Handler
	scoreH     Handler
	alertH     Handler
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	health *handler.HealthHandler,
	physicianH Handler,
	caseH Handler,
	reviewH Handler,
	scoreH Handler,
	alertH Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:     engine,
		auth:       auth,
		health:     health,
		physicianH: physicianH,
		caseH:      caseH,
		reviewH:    reviewH,
		scoreH:     scoreH,
		alertH:     alertH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/healthz", r.health.Live)
	r.engine.GET("/ready", r.health.Ready)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.caseH.RegisterRoutes(protected)
	r.reviewH.RegisterRoutes(protected)
	r.scoreH.RegisterRoutes(protected)
	r.alertH.RegisterRoutes(protected)

	// Physician administration is restricted to department leadership.
	admin := protected.Group("")
	admin.Use(r.auth.RequireRole(model.RoleDepartmentHead, model.RoleAdministrator))
	r.physicianH.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
