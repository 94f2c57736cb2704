package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// ClaimTokenRequest represents the claim request from a customer who
// scanned an earn QR code
type ClaimTokenRequest struct {
	TokenID     string `json:"token_id" binding:"required"`
	ReceiptCode string `json:"receipt_code"`
}

// ClaimEarnToken awards the scanned token's points to the signed-in
// customer
func ClaimEarnToken(c *gin.Context) {
	utils.LogInfo("ClaimEarnToken called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	var req ClaimTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Token id is required", err.Error())
		return
	}

	result, err := utils.ClaimEarnToken(config.DB, req.TokenID, customer.CustomerID, req.ReceiptCode, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		var rateErr *utils.RateLimitedError
		switch {
		case errors.Is(err, utils.ErrTokenNotFound):
			utils.NotFound(c, "Token not found")
		case errors.Is(err, utils.ErrTokenAlreadyUsed):
			utils.BadRequest(c, "Token has already been used", nil)
		case errors.Is(err, utils.ErrTokenExpired):
			utils.BadRequest(c, "Token has expired", nil)
		case errors.Is(err, utils.ErrBadReceiptCode):
			utils.BadRequest(c, "Receipt code does not match", nil)
		case errors.As(err, &rateErr):
			utils.LogError("Claim rate limited for customer %s", customer.CustomerID)
			utils.TooManyRequests(c, "Too many claims, try again later", rateErr.RetryAfter)
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "No active loyalty program for this merchant")
		default:
			utils.LogError("Failed to claim token %s: %v", req.TokenID, err)
			utils.InternalServerError(c, "Failed to claim token", nil)
		}
		return
	}

	utils.LogInfo("Customer %s claimed token %s", customer.CustomerID, req.TokenID)
	utils.Success(c, "Points added", gin.H{
		"merchant_id":  result.MerchantID,
		"points_added": result.PointsAdded,
		"new_balance":  result.NewBalance,
	})
}
