package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// GetLedgerHistory returns the merchant's audit trail, newest first,
// optionally filtered to one customer. The ledger is read-only here;
// balances always come from the lots.
func GetLedgerHistory(c *gin.Context) {
	storeVal, exists := c.Get("store")
	if !exists {
		utils.Unauthorized(c, "Store not found")
		return
	}
	store := storeVal.(models.Store)

	page, limit := utils.GetPaginationParams(c)
	offset := (page - 1) * limit

	query := config.DB.Model(&models.LedgerEntry{}).Where("merchant_id = ?", store.MerchantID)
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count ledger entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch ledger", nil)
		return
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		utils.LogError("Failed to fetch ledger entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch ledger", nil)
		return
	}

	formatted := make([]gin.H, len(entries))
	for i, entry := range entries {
		formatted[i] = gin.H{
			"ledger_id":     entry.LedgerID,
			"customer_id":   entry.CustomerID,
			"event_type":    entry.EventType,
			"points_delta":  entry.PointsDelta,
			"token_id":      entry.TokenID,
			"redemption_id": entry.RedemptionID,
			"created_at":    entry.CreatedAt,
			"note":          entry.Note,
		}
	}

	utils.SuccessWithPagination(c, "Ledger history", formatted, total, page, limit)
}
