// Package routes assembles the HTTP surface of the API.
package routes

import (
	"time"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/controllers"
	"github.com/ducali/ducali-api/metrics"
	"github.com/ducali/ducali-api/middleware"
	"github.com/ducali/ducali-api/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup builds the router. auth authenticates the caller; production passes
// middleware.EnsureValidToken and tests pass a stand-in.
func Setup(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		cors.New(corsConfig(cfg)),
		middleware.Timeout(cfg.RequestTimeout),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.GET("/metrics", metrics.Handler())

		// Public browsing
		v1.GET("/search", controllers.Search)
		v1.GET("/artisans/:id", controllers.GetArtisan)
		v1.GET("/artisans/:id/reviews", controllers.ListArtisanReviews)
		v1.GET("/portfolio/:id", controllers.GetPortfolioItem)
	}

	authed := v1.Group("", auth)
	{
		authed.POST("/auth/signup", controllers.Signup)
		authed.POST("/auth/login", controllers.Login)

		authed.GET("/users/me", controllers.GetMyProfile)
		authed.PUT("/users/me", controllers.UpdateMyProfile)

		authed.POST("/orders", controllers.CreateOrder)
		authed.GET("/orders", controllers.ListOrders)
		authed.GET("/orders/:id", controllers.GetOrder)
		authed.PUT("/orders/:id", controllers.UpdateOrder)
		authed.DELETE("/orders/:id", controllers.CancelOrder)
		authed.GET("/orders/:id/messages", controllers.ListMessages)
		authed.POST("/orders/:id/messages", controllers.SendMessage)
		authed.POST("/orders/:id/review", controllers.CreateReview)

		authed.PUT("/artisans/me", middleware.RequireRole(models.RoleArtisan), controllers.UpdateMyArtisanProfile)
		authed.POST("/services", middleware.RequireRole(models.RoleArtisan), controllers.CreateService)
		authed.POST("/portfolio", middleware.RequireRole(models.RoleArtisan), controllers.CreatePortfolioItem)

		authed.POST("/reviews/:id/helpful", controllers.MarkReviewHelpful)

		authed.GET("/notifications", controllers.ListNotifications)
		authed.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
	}

	admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/orders", controllers.SearchOrders)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsCfg.MaxAge = 12 * time.Hour
	return corsCfg
}
