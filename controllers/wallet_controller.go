package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// GetWallet returns the customer's balance at every active merchant
func GetWallet(c *gin.Context) {
	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	var merchants []models.Merchant
	if err := config.DB.Preload("Stores").
		Where("status = ?", models.MerchantStatusActive).
		Order("name ASC").
		Find(&merchants).Error; err != nil {
		utils.LogError("Failed to fetch merchants: %v", err)
		utils.InternalServerError(c, "Failed to fetch wallet", nil)
		return
	}

	accounts := make([]gin.H, 0, len(merchants))
	for _, merchant := range merchants {
		balance, err := utils.GetPointBalance(config.DB, merchant.MerchantID, customer.CustomerID)
		if err != nil {
			utils.LogError("Failed to read balance for merchant %s: %v", merchant.MerchantID, err)
			utils.InternalServerError(c, "Failed to fetch wallet", nil)
			return
		}
		account := gin.H{
			"merchant_id":   merchant.MerchantID,
			"merchant_name": merchant.Name,
			"balance":       utils.ClampBalance(balance),
		}
		if len(merchant.Stores) > 0 {
			account["store_id"] = merchant.Stores[0].StoreID
			account["store_name"] = merchant.Stores[0].Name
		}
		accounts = append(accounts, account)
	}

	utils.Success(c, "Wallet", gin.H{"accounts": accounts})
}

// GetShopView returns one merchant's program, rewards and the
// customer's balance there
func GetShopView(c *gin.Context) {
	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	merchantID := c.Param("merchant_id")
	merchant, err := utils.GetActiveMerchant(config.DB, merchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.NotFound(c, "Merchant not found")
			return
		}
		utils.LogError("Failed to fetch merchant %s: %v", merchantID, err)
		utils.InternalServerError(c, "Failed to fetch shop", nil)
		return
	}

	var store models.Store
	if err := config.DB.Where("merchant_id = ?", merchantID).Order("created_at ASC").First(&store).Error; err != nil {
		utils.LogError("No store for merchant %s: %v", merchantID, err)
		utils.NotFound(c, "Store not found")
		return
	}

	program, err := utils.GetActiveProgram(config.DB, merchantID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.NotFound(c, "No active loyalty program for this merchant")
			return
		}
		utils.LogError("Failed to fetch program for %s: %v", merchantID, err)
		utils.InternalServerError(c, "Failed to fetch shop", nil)
		return
	}

	var rewards []models.Reward
	if err := config.DB.Where("program_id = ? AND active = ?", program.ProgramID, true).
		Order("points_cost ASC").
		Find(&rewards).Error; err != nil {
		utils.LogError("Failed to fetch rewards for %s: %v", program.ProgramID, err)
		utils.InternalServerError(c, "Failed to fetch shop", nil)
		return
	}

	balance, err := utils.GetPointBalance(config.DB, merchantID, customer.CustomerID)
	if err != nil {
		utils.LogError("Failed to read balance: %v", err)
		utils.InternalServerError(c, "Failed to fetch shop", nil)
		return
	}

	utils.Success(c, "Shop", gin.H{
		"merchant": merchant,
		"store":    store,
		"program":  program,
		"rewards":  rewards,
		"balance":  utils.ClampBalance(balance),
	})
}
