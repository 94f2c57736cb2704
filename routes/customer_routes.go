package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pointloop/PointLoop/controllers"
	"github.com/pointloop/PointLoop/middleware"
)

// initCustomerRoutes initializes all customer-facing routes
func initCustomerRoutes(router *gin.RouterGroup) {
	customer := router.Group("")
	customer.Use(middleware.CustomerAuthMiddleware())
	{
		customer.GET("/wallet", controllers.GetWallet)
		customer.GET("/shop/:merchant_id", controllers.GetShopView)

		customer.POST("/claim", controllers.ClaimEarnToken)

		customer.POST("/redeem/start", controllers.StartRedemption)
		customer.GET("/redeem/status/:redeem_token", controllers.RedemptionStatus)
	}
}
