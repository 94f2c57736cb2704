package controllers

import (
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// IssueTokenRequest represents the token issuance request
type IssueTokenRequest struct {
	TransactionRef string `json:"transaction_ref"`
}

// IssueEarnToken creates a short-lived earn token for the vendor's
// store and returns the claim URL to render as a QR code
func IssueEarnToken(c *gin.Context) {
	utils.LogInfo("IssueEarnToken called")

	staffVal, exists := c.Get("staff")
	if !exists {
		utils.Unauthorized(c, "Staff not found")
		return
	}
	staff := staffVal.(models.Staff)
	storeVal, _ := c.Get("store")
	store := storeVal.(models.Store)

	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	token, err := utils.IssueEarnToken(config.DB, &store, staff.StaffID, req.TransactionRef, c.ClientIP())
	if err != nil {
		var rateErr *utils.RateLimitedError
		switch {
		case errors.As(err, &rateErr):
			utils.LogError("Issuance rate limited for staff %s", staff.StaffID)
			utils.TooManyRequests(c, "Too many tokens issued, slow down", rateErr.RetryAfter)
		case errors.Is(err, utils.ErrNotFound):
			utils.NotFound(c, "No active loyalty program for this merchant")
		default:
			utils.LogError("Failed to issue token: %v", err)
			utils.InternalServerError(c, "Failed to issue token", nil)
		}
		return
	}

	claimURL := config.BaseURL() + "/claim?token=" + url.QueryEscape(token.TokenID)

	utils.LogInfo("Token %s issued by staff %s", token.TokenID, staff.StaffID)
	utils.Created(c, "Token issued", gin.H{
		"token_id":     token.TokenID,
		"claim_url":    claimURL,
		"expires_at":   token.ExpiresAt,
		"receipt_code": token.ReceiptCode,
	})
}
