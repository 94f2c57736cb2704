package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pointloop/PointLoop/controllers"
	"github.com/pointloop/PointLoop/middleware"
)

// initVendorRoutes initializes all vendor-facing routes
func initVendorRoutes(router *gin.RouterGroup) {
	vendor := router.Group("/vendor")
	vendor.Use(middleware.VendorAuthMiddleware())
	{
		// Store and program management
		vendor.GET("/store", controllers.GetStoreOverview)
		vendor.PATCH("/program", controllers.UpdateProgram)
		vendor.POST("/rewards", controllers.CreateReward)

		// Earn tokens
		vendor.POST("/tokens", controllers.IssueEarnToken)
		vendor.POST("/tokens/void", controllers.VoidEarnToken)

		// Redemptions
		vendor.POST("/redeem/complete", controllers.CompleteRedemption)

		// Audit trail
		vendor.GET("/ledger", controllers.GetLedgerHistory)
		vendor.GET("/ledger/export/excel", controllers.DownloadActivityReportExcel)
		vendor.GET("/ledger/export/pdf", controllers.DownloadActivityReportPDF)
	}
}
