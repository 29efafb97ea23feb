package routes

import (
	"time"

	"travelhub/handlers"
	"travelhub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TravelHub API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth (rate limited, no token required)
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit())
	auth.POST("/signup", handlers.Signup)
	auth.POST("/login", handlers.Login)
	auth.GET("/google/url", handlers.GetGoogleAuthURL)
	auth.GET("/google/callback", handlers.GoogleOAuthCallback)
	auth.POST("/google", handlers.GoogleAuthWithCredential)

	// Public post reads; identity is attached when a token is present
	// so the feed can serve logged-in callers without requiring one.
	feed := router.Group("/api")
	feed.Use(middleware.OptionalAuth())
	feed.GET("/posts", handlers.ListPosts)
	feed.GET("/posts/:id", handlers.GetPost)
	// Serves /api/posts/tag/:tag and /api/posts/user/:userId.
	feed.GET("/posts/:id/:sub", handlers.PostsSubList)

	router.GET("/api/users/:id", handlers.GetUser)
	router.GET("/api/push/vapid-public-key", handlers.GetVapidPublicKey)

	// Everything below requires a valid token.
	protected := router.Group("/api")
	protected.Use(middleware.Protect())

	protected.GET("/me", handlers.GetMyProfile)
	protected.PUT("/me", handlers.UpdateMyProfile)
	protected.GET("/me/saved", handlers.GetSavedPosts)

	protected.POST("/posts", handlers.CreatePost)
	protected.PUT("/posts/:id", handlers.UpdatePost)
	protected.DELETE("/posts/:id", handlers.DeletePost)

	protected.POST("/posts/:id/like", handlers.LikePost)
	protected.DELETE("/posts/:id/like", handlers.UnlikePost)
	protected.POST("/posts/:id/share", handlers.SharePost)
	protected.POST("/posts/:id/save", handlers.SavePost)
	protected.DELETE("/posts/:id/save", handlers.UnsavePost)
	protected.POST("/posts/:id/interested", handlers.MarkInterested)
	protected.POST("/posts/:id/not-interested", handlers.MarkNotInterested)
	protected.POST("/posts/:id/report", handlers.ReportPost)

	protected.POST("/posts/:id/comment", handlers.AddComment)
	protected.PUT("/posts/:id/comment/:commentId", handlers.UpdateComment)
	protected.DELETE("/posts/:id/comment/:commentId", handlers.DeleteComment)
	protected.POST("/posts/:id/comment/:commentId/reply", handlers.AddReply)
	protected.POST("/posts/:id/comment/:commentId/like", handlers.LikeComment)
	protected.DELETE("/posts/:id/comment/:commentId/like", handlers.UnlikeComment)

	protected.POST("/upload", handlers.UploadImage)
	protected.POST("/push/subscribe", handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"success": false,
				"message": "Endpoint not found",
			})
			return
		}
		c.Next()
	})

	return router
}
