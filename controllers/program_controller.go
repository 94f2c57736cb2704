package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// GetStoreOverview returns the vendor's store, active program and
// rewards
func GetStoreOverview(c *gin.Context) {
	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	program, err := utils.GetActiveProgram(config.DB, store.MerchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.NotFound(c, "No active loyalty program for this merchant")
			return
		}
		utils.LogError("Failed to fetch program: %v", err)
		utils.InternalServerError(c, "Failed to fetch store", nil)
		return
	}

	var rewards []models.Reward
	if err := config.DB.Where("program_id = ? AND active = ?", program.ProgramID, true).
		Order("points_cost ASC").
		Find(&rewards).Error; err != nil {
		utils.LogError("Failed to fetch rewards: %v", err)
		utils.InternalServerError(c, "Failed to fetch store", nil)
		return
	}

	utils.Success(c, "Store overview", gin.H{
		"store":   store,
		"program": program,
		"rewards": rewards,
	})
}

// UpdateProgramRequest carries the policy fields staff may change.
// Pointers distinguish "leave unchanged" from explicit values; an
// explicit null for points_expire_days turns expiry off.
type UpdateProgramRequest struct {
	PointsPerEarn      *int `json:"points_per_earn"`
	TokenExpiryMinutes *int `json:"token_expiry_minutes"`
	PointsExpireDays   *int `json:"points_expire_days"`
	ClearExpiry        bool `json:"clear_points_expiry"`
	MaxEarnsPerDay     *int `json:"max_earns_per_day"`
	MaxEarnsPer10Min   *int `json:"max_earns_per_10min"`
}

// UpdateProgram updates the active program's policy. Out-of-range
// values are clamped to their floors rather than rejected.
func UpdateProgram(c *gin.Context) {
	utils.LogInfo("UpdateProgram called")

	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	program, err := utils.GetActiveProgram(config.DB, store.MerchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.NotFound(c, "No active loyalty program for this merchant")
			return
		}
		utils.LogError("Failed to fetch program: %v", err)
		utils.InternalServerError(c, "Failed to update program", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.PointsPerEarn != nil {
		updates["points_per_earn"] = utils.ClampMin(*req.PointsPerEarn, utils.MinPointsPerEarn)
	}
	if req.TokenExpiryMinutes != nil {
		updates["token_expiry_minutes"] = utils.ClampMin(*req.TokenExpiryMinutes, utils.MinTokenExpiryMinutes)
	}
	if req.ClearExpiry {
		updates["points_expire_days"] = nil
	} else if req.PointsExpireDays != nil {
		updates["points_expire_days"] = utils.ClampMin(*req.PointsExpireDays, utils.MinPointsExpireDays)
	}
	if req.MaxEarnsPerDay != nil {
		updates["max_earns_per_day"] = utils.ClampMin(*req.MaxEarnsPerDay, 0)
	}
	if req.MaxEarnsPer10Min != nil {
		updates["max_earns_per_10min"] = utils.ClampMin(*req.MaxEarnsPer10Min, 0)
	}

	if len(updates) == 0 {
		utils.Success(c, "Nothing to update", gin.H{"program": program})
		return
	}

	if err := config.DB.Model(&models.LoyaltyProgram{}).
		Where("program_id = ?", program.ProgramID).
		Updates(updates).Error; err != nil {
		utils.LogError("Failed to update program %s: %v", program.ProgramID, err)
		utils.InternalServerError(c, "Failed to update program", nil)
		return
	}

	updated, err := utils.GetActiveProgram(config.DB, store.MerchantID)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload program", nil)
		return
	}

	utils.LogInfo("Program %s updated", program.ProgramID)
	utils.Success(c, "Program updated", gin.H{"program": updated})
}

// CreateRewardRequest represents the reward creation request
type CreateRewardRequest struct {
	Name       string `json:"name" binding:"required"`
	PointsCost int    `json:"points_cost" binding:"required"`
}

// CreateReward adds a reward to the vendor's active program
func CreateReward(c *gin.Context) {
	utils.LogInfo("CreateReward called")

	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	var req CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Name and points cost are required", err.Error())
		return
	}

	program, err := utils.GetActiveProgram(config.DB, store.MerchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.NotFound(c, "No active loyalty program for this merchant")
			return
		}
		utils.LogError("Failed to fetch program: %v", err)
		utils.InternalServerError(c, "Failed to create reward", nil)
		return
	}

	reward := models.Reward{
		RewardID:   utils.NewID("r_"),
		ProgramID:  program.ProgramID,
		Name:       strings.TrimSpace(req.Name),
		PointsCost: utils.ClampMin(req.PointsCost, utils.MinRewardPointsCost),
		Active:     true,
	}
	if err := config.DB.Create(&reward).Error; err != nil {
		utils.LogError("Failed to create reward: %v", err)
		utils.InternalServerError(c, "Failed to create reward", nil)
		return
	}

	utils.LogInfo("Reward %s created for program %s", reward.RewardID, program.ProgramID)
	utils.Created(c, "Reward created", gin.H{"reward": reward})
}
