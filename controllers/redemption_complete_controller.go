package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// CompleteRedemptionRequest represents the completion request sent by
// staff after scanning the customer's redeem QR
type CompleteRedemptionRequest struct {
	RedeemToken string `json:"redeem_token" binding:"required"`
}

// CompleteRedemption approves a pending redemption: deducts the reward
// cost from the customer's lots and marks the redemption completed
func CompleteRedemption(c *gin.Context) {
	utils.LogInfo("CompleteRedemption called")

	staffVal, exists := c.Get("staff")
	if !exists {
		utils.Unauthorized(c, "Staff not found")
		return
	}
	staff := staffVal.(models.Staff)
	storeVal, _ := c.Get("store")
	store := storeVal.(models.Store)

	var req CompleteRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Redeem token is required", err.Error())
		return
	}

	result, err := utils.CompleteRedemption(config.DB, req.RedeemToken, &store, staff.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "Redemption not found")
		case errors.Is(err, utils.ErrNotPending):
			utils.BadRequest(c, "Redemption is no longer pending", nil)
		case errors.Is(err, utils.ErrRedeemTokenExpired):
			utils.BadRequest(c, "Redemption has expired, ask the customer to start again", nil)
		case errors.Is(err, utils.ErrWrongMerchant):
			utils.Forbidden(c, "Redemption belongs to another merchant")
		case errors.Is(err, utils.ErrInsufficientPoints):
			utils.BadRequest(c, "Customer no longer has enough points", nil)
		default:
			utils.LogError("Failed to complete redemption: %v", err)
			utils.InternalServerError(c, "Failed to complete redemption", nil)
		}
		return
	}

	utils.LogInfo("Redemption completed by staff %s for customer %s", staff.StaffID, result.CustomerID)
	utils.Success(c, "Redemption completed", gin.H{
		"reward_name": result.RewardName,
		"new_balance": result.NewBalance,
	})
}
