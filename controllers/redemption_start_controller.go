package controllers

import (
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// StartRedemptionRequest represents the redemption start request
type StartRedemptionRequest struct {
	MerchantID string `json:"merchant_id" binding:"required"`
	RewardID   string `json:"reward_id" binding:"required"`
}

// StartRedemption opens a pending redemption and returns the redeem
// URL the customer shows to staff as a QR code. No points are deducted
// until staff approve.
func StartRedemption(c *gin.Context) {
	utils.LogInfo("StartRedemption called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	var req StartRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Merchant id and reward id are required", err.Error())
		return
	}

	result, err := utils.StartRedemption(config.DB, req.MerchantID, customer.CustomerID, req.RewardID)
	if err != nil {
		var insufficient *utils.InsufficientPointsError
		switch {
		case errors.As(err, &insufficient):
			utils.BadRequest(c, "Not enough points for this reward", gin.H{"balance": insufficient.Balance})
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "Merchant or reward not found")
		default:
			utils.LogError("Failed to start redemption: %v", err)
			utils.InternalServerError(c, "Failed to start redemption", nil)
		}
		return
	}

	redemption := result.Redemption
	redeemURL := config.BaseURL() + "/redeem?rt=" + url.QueryEscape(redemption.RedeemToken)

	utils.LogInfo("Redemption %s started by customer %s", redemption.RedemptionID, customer.CustomerID)
	utils.Created(c, "Redemption started", gin.H{
		"redeem_token":      redemption.RedeemToken,
		"redeem_url":        redeemURL,
		"redeem_expires_at": redemption.RedeemExpiresAt,
		"reward_name":       result.RewardName,
		"points_cost":       result.PointsCost,
	})
}
