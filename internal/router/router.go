package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func() error

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	storeController     *controller.StoreController
	ratingController    *controller.RatingController
	dashboardController *controller.DashboardController
	authMiddleware      *middleware.AuthMiddleware
	rateLimiter         *middleware.RateLimiter
	httpMetrics         *metrics.HTTPMetrics
	gatherer            prometheus.Gatherer
	healthCheck         HealthCheck
	config              *config.Config
}

// NewRouter collects the handlers. rateLimiter, httpMetrics, gatherer and
// healthCheck may be nil.
func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	dashboardController *controller.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	healthCheck HealthCheck,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		storeController:     storeController,
		ratingController:    ratingController,
		dashboardController: dashboardController,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		httpMetrics:         httpMetrics,
		gatherer:            gatherer,
		healthCheck:         healthCheck,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.httpMetrics))
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.authMiddleware
	admin := auth.RequireRole(model.RoleAdmin)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", r.limit(), r.authController.Register)
			authGroup.POST("/login", r.limit(), r.authController.Login)
			authGroup.GET("/verify", auth.Authenticate(), r.authController.Verify)
			authGroup.POST("/logout", auth.Authenticate(), r.authController.Logout)
		}

		users := api.Group("/users", auth.Authenticate())
		{
			users.PUT("/password", r.userController.ChangePassword)
			users.GET("", admin, r.userController.ListUsers)
			users.POST("", admin, r.userController.CreateUser)
			users.GET("/:id", admin, r.userController.GetUser)
		}

		stores := api.Group("/stores")
		{
			stores.GET("", auth.OptionalAuthenticate(), r.storeController.ListStores)
			stores.GET("/mine",
				auth.Authenticate(),
				auth.RequireRole(model.RoleStoreOwner),
				r.storeController.ListMyStores,
			)
			stores.GET("/export", auth.Authenticate(), admin, r.storeController.ExportStores)
			stores.POST("", auth.Authenticate(), admin, r.storeController.CreateStore)
			stores.GET("/:id", auth.OptionalAuthenticate(), r.storeController.GetStore)
		}

		ratings := api.Group("/ratings")
		{
			ratings.POST("", auth.Authenticate(), r.ratingController.SubmitRating)
			ratings.GET("/user/:storeId", auth.Authenticate(), r.ratingController.GetUserRating)
			ratings.GET("/store/:storeId", auth.Authenticate(), r.ratingController.ListStoreRatings)
			ratings.GET("/store/:storeId/ws", auth.AuthenticateWebSocket(), r.ratingController.StreamStoreRatings)
		}

		api.GET("/dashboard/stats", auth.Authenticate(), admin, r.dashboardController.Stats)
	}

	return router
}

func (r *Router) limit() gin.HandlerFunc {
	if r.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return r.rateLimiter.Middleware()
}

func (r *Router) health(c *gin.Context) {
	if r.healthCheck != nil {
		if err := r.healthCheck(); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err, nil)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Store rating API is running",
	})
}
