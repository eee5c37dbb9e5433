package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/middleware"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")

	// Public routes (no auth required)
	authLimiter := middleware.NewIPRateLimiter(10, time.Minute)
	api.POST("/auth/register", middleware.RateLimitMiddleware(authLimiter), handlers.Register)
	api.POST("/auth/login", middleware.RateLimitMiddleware(authLimiter), handlers.Login)

	api.GET("/posts", handlers.ListPosts)
	api.GET("/posts/:id", handlers.GetPost)
	api.GET("/posts/:id/comments", handlers.ListComments)
	api.GET("/categories", handlers.ListCategories)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware())

	protected.GET("/auth/me", handlers.Me)

	protected.POST("/posts", handlers.CreatePost)
	protected.PUT("/posts/:id", handlers.UpdatePost)
	protected.DELETE("/posts/:id", handlers.DeletePost)

	protected.POST("/posts/:id/comments", handlers.AddComment)

	protected.POST("/categories", handlers.CreateCategory)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success": false,
			"message": "Endpoint not found",
		})
	})

	return router
}
