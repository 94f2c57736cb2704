package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// VendorLoginRequest represents the vendor kiosk login request
type VendorLoginRequest struct {
	StoreID string `json:"store_id" binding:"required"`
	PIN     string `json:"pin" binding:"required"`
}

// VendorLogin authenticates a staff member with their store id and PIN
func VendorLogin(c *gin.Context) {
	utils.LogInfo("VendorLogin called")

	var req VendorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Store id and PIN are required", err.Error())
		return
	}

	var staff models.Staff
	if err := config.DB.Where("store_id = ? AND status = ?", req.StoreID, models.StaffStatusActive).First(&staff).Error; err != nil {
		utils.LogError("No active staff for store %s: %v", req.StoreID, err)
		utils.NotFound(c, "No active staff for this store")
		return
	}

	if !utils.CheckPIN(req.PIN, staff.PINHash) {
		utils.LogError("Bad PIN for store %s", req.StoreID)
		utils.Unauthorized(c, "Invalid PIN")
		return
	}

	now := time.Now()
	if err := config.DB.Model(&models.Staff{}).
		Where("staff_id = ?", staff.StaffID).
		UpdateColumn("last_login_at", now).Error; err != nil {
		utils.LogError("Failed to update last login for staff %s: %v", staff.StaffID, err)
	}

	token, err := utils.GenerateVendorToken(staff.StaffID, staff.StoreID)
	if err != nil {
		utils.LogError("Failed to generate vendor token: %v", err)
		utils.InternalServerError(c, "Failed to generate session token", nil)
		return
	}

	utils.LogInfo("Staff %s signed in for store %s", staff.StaffID, staff.StoreID)
	utils.Success(c, "Signed in", gin.H{
		"token":    token,
		"staff_id": staff.StaffID,
		"store_id": staff.StoreID,
		"role":     staff.Role,
	})
}
