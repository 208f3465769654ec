package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studentnest/internal/auth"
)

// NewRouter builds the gin engine with CORS, request logging and every route
func NewRouter(handler *Handler, issuer *auth.TokenIssuer, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(handler.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	SetupRoutes(router, handler, issuer)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, issuer *auth.TokenIssuer) {
	public := router.Group("/api")
	public.Use(auth.OptionalActor(issuer))
	{
		public.GET("/stats", handler.GetStats)
		public.GET("/properties", handler.SearchProperties)
		public.GET("/properties/:id", handler.GetProperty)
	}

	api := router.Group("/api")
	api.Use(auth.RequireActor(issuer))
	{
		api.POST("/properties", handler.CreateProperty)
		api.PATCH("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.POST("/properties/:id/favorite", handler.ToggleFavorite)
		api.POST("/properties/:id/bookings", handler.CreateBooking)
		api.POST("/properties/:id/inquiries", handler.CreateInquiry)

		api.GET("/bookings", handler.ListBookings)
		api.GET("/bookings/:id", handler.GetBooking)
		api.POST("/bookings/:id/status/:status", handler.UpdateBookingStatus)

		api.GET("/inquiries", handler.ListInquiries)
		api.POST("/inquiries/:id/status/:status", handler.UpdateInquiryStatus)

		api.GET("/me", handler.GetMe)
		api.GET("/me/dashboard", handler.GetDashboard)
		api.PATCH("/me/profile", handler.UpdateProfile)
		api.GET("/me/properties", handler.GetMyProperties)
		api.GET("/me/favorites", handler.GetMyFavorites)

		api.GET("/notifications", handler.ListNotifications)
		api.GET("/notifications/feed", handler.GetNotificationFeed)
		api.POST("/notifications/read-all", handler.MarkAllNotificationsRead)
		api.POST("/notifications/:id/read", handler.MarkNotificationRead)

		api.POST("/telegram/test", handler.TestTelegramConfig)
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	}
}
