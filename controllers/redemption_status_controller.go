package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// RedemptionStatus reports the state of the customer's own pending
// redemption; the "show QR" page polls this
func RedemptionStatus(c *gin.Context) {
	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	redeemToken := c.Param("redeem_token")
	redemption, err := utils.RedemptionStatus(config.DB, redeemToken, customer.CustomerID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "Redemption not found")
		case errors.Is(err, utils.ErrForbidden):
			utils.Forbidden(c, "This redemption belongs to another customer")
		default:
			utils.LogError("Failed to read redemption status: %v", err)
			utils.InternalServerError(c, "Failed to read redemption status", nil)
		}
		return
	}

	// Expiry is derived at read time; the stored status stays PENDING
	status := redemption.Status
	if status == models.RedemptionStatusPending && time.Now().After(redemption.RedeemExpiresAt) {
		status = "EXPIRED"
	}

	utils.Success(c, "Redemption status", gin.H{
		"status":            status,
		"redeem_expires_at": redemption.RedeemExpiresAt,
		"completed_at":      redemption.CompletedAt,
	})
}
