package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// VoidTokenRequest represents the void request
type VoidTokenRequest struct {
	TokenID string `json:"token_id" binding:"required"`
}

// VoidEarnToken cancels a token issued by the vendor's store,
// reversing its points when it had already been claimed. Safe to
// retry.
func VoidEarnToken(c *gin.Context) {
	utils.LogInfo("VoidEarnToken called")

	staffVal, exists := c.Get("staff")
	if !exists {
		utils.Unauthorized(c, "Staff not found")
		return
	}
	staff := staffVal.(models.Staff)
	storeVal, _ := c.Get("store")
	store := storeVal.(models.Store)

	var req VoidTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Token id is required", err.Error())
		return
	}

	err := utils.VoidEarnToken(config.DB, req.TokenID, &store, staff.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenNotFound):
			utils.NotFound(c, "Token not found")
		case errors.Is(err, utils.ErrWrongStore):
			utils.Forbidden(c, "Token belongs to another store")
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "No active loyalty program for this merchant")
		default:
			utils.LogError("Failed to void token %s: %v", req.TokenID, err)
			utils.InternalServerError(c, "Failed to void token", nil)
		}
		return
	}

	utils.LogInfo("Token %s voided by staff %s", req.TokenID, staff.StaffID)
	utils.Success(c, "Token voided", nil)
}
