package routes

import (
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/pointloop/PointLoop/controllers"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "pointloop-dev-secret"
	}
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("pointloop", store))

	// Auth routes (OAuth, OTP login, staff PIN login)
	auth := router.Group("/auth")
	{
		auth.GET("/google/login", controllers.GoogleLogin)
		auth.GET("/google/callback", controllers.GoogleCallback)
		auth.POST("/otp/request", controllers.RequestLoginOTP)
		auth.POST("/otp/verify", controllers.VerifyLoginOTP)
		auth.POST("/vendor/login", controllers.VendorLogin)
		auth.POST("/logout", controllers.Logout)
	}

	// API version group
	api := router.Group("/v1")
	{
		initCustomerRoutes(api)
		initVendorRoutes(api)
	}

	return router
}
