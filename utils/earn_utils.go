package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/gorm"
)

// ClaimResult is returned on a successful token claim
type ClaimResult struct {
	MerchantID  string `json:"merchant_id"`
	PointsAdded int    `json:"points_added"`
	NewBalance  int    `json:"new_balance"`
}

// IssueEarnToken creates a single-use ISSUED token for the store's
// merchant. Issuance is capped per staff member by a fixed window
// independent of the program policy.
func IssueEarnToken(db *gorm.DB, store *models.Store, staffID, transactionRef, ip string) (*models.EarnToken, error) {
	program, err := GetActiveProgram(db, store.MerchantID)
	if err != nil {
		return nil, err
	}

	rl, err := CheckRateLimit(db, "issue:"+staffID, IssueRateLimitMax, IssueRateLimitWindowSeconds)
	if err != nil {
		return nil, err
	}
	if !rl.OK {
		return nil, &RateLimitedError{RetryAfter: rl.RetryAfter}
	}

	code, err := ShortCode(ReceiptCodeLength)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := models.EarnToken{
		TokenID:         NewID("t_"),
		MerchantID:      store.MerchantID,
		StoreID:         store.StoreID,
		IssuedByStaffID: staffID,
		IssuedAt:        now,
		ExpiresAt:       now.Add(time.Duration(program.TokenExpiryMinutes) * time.Minute),
		Status:          models.TokenStatusIssued,
		ReceiptCode:     code,
		IPIssued:        ip,
	}
	if transactionRef != "" {
		token.TransactionRef = &transactionRef
	}
	if err := db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// checkEarnCaps applies the policy's per-customer claim caps: a
// 10-minute burst window and a UTC calendar-day window, each only when
// the policy sets a nonzero cap.
func checkEarnCaps(db *gorm.DB, program *models.LoyaltyProgram, merchantID, customerID string) error {
	if program.MaxEarnsPer10Min > 0 {
		key := fmt.Sprintf("earn10:%s:%s", merchantID, customerID)
		rl, err := CheckRateLimit(db, key, program.MaxEarnsPer10Min, EarnBurstWindowSeconds)
		if err != nil {
			return err
		}
		if !rl.OK {
			return &RateLimitedError{RetryAfter: rl.RetryAfter}
		}
	}
	if program.MaxEarnsPerDay > 0 {
		key := fmt.Sprintf("earnday:%s:%s:%s", merchantID, customerID, DayKey(time.Now()))
		rl, err := CheckRateLimit(db, key, program.MaxEarnsPerDay, EarnDayWindowSeconds)
		if err != nil {
			return err
		}
		if !rl.OK {
			return &RateLimitedError{RetryAfter: rl.RetryAfter}
		}
	}
	return nil
}

// ClaimEarnToken awards the token's points to the customer. The token
// status is re-checked inside the transaction with a guarded update,
// so exactly one of any set of concurrent claims can succeed; losers
// get ErrTokenAlreadyUsed.
func ClaimEarnToken(db *gorm.DB, tokenID, customerID, receiptCode, ip, userAgent string) (*ClaimResult, error) {
	var token models.EarnToken
	err := db.Where("token_id = ?", tokenID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if token.Status != models.TokenStatusIssued {
		return nil, ErrTokenAlreadyUsed
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	if receiptCode != "" && !strings.EqualFold(strings.TrimSpace(receiptCode), token.ReceiptCode) {
		return nil, ErrBadReceiptCode
	}

	program, err := GetActiveProgram(db, token.MerchantID)
	if err != nil {
		return nil, err
	}

	if err := checkEarnCaps(db, program, token.MerchantID, customerID); err != nil {
		return nil, err
	}

	now := time.Now()
	points := program.PointsPerEarn
	if points <= 0 {
		points = 1
	}
	var lotExpiry *time.Time
	note := "No expiry"
	if program.PointsExpireDays != nil {
		e := now.Add(time.Duration(*program.PointsExpireDays) * 24 * time.Hour)
		lotExpiry = &e
		note = fmt.Sprintf("Expires at %s", e.Format(time.RFC3339))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Guarded update: only an ISSUED token flips to REDEEMED.
		// Zero rows means another claim won the race.
		res := tx.Model(&models.EarnToken{}).
			Where("token_id = ? AND status = ?", tokenID, models.TokenStatusIssued).
			Updates(map[string]interface{}{
				"status":                  models.TokenStatusRedeemed,
				"redeemed_at":             now,
				"redeemed_by_customer_id": customerID,
				"ip_redeemed":             ip,
				"ua_redeemed":             userAgent,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenAlreadyUsed
		}

		// The lot is the real balance; the ledger row is audit only.
		if _, err := AddEarnLot(tx, token.MerchantID, customerID, points, lotExpiry, &token.TokenID, "Earned point"); err != nil {
			return err
		}

		return AppendLedgerEntry(tx, &models.LedgerEntry{
			MerchantID:  token.MerchantID,
			CustomerID:  customerID,
			EventType:   models.LedgerEventEarn,
			PointsDelta: points,
			TokenID:     &token.TokenID,
			Note:        note,
		})
	})
	if err != nil {
		return nil, err
	}

	balance, err := GetPointBalance(db, token.MerchantID, customerID)
	if err != nil {
		return nil, err
	}
	return &ClaimResult{
		MerchantID:  token.MerchantID,
		PointsAdded: points,
		NewBalance:  ClampBalance(balance),
	}, nil
}

// VoidEarnToken marks a token VOIDED. Voiding an already-voided token
// is a no-op success. When the token had been claimed, its points are
// clawed back FIFO, with a debt lot covering any shortfall, and a
// VOID_EARN entry is appended.
func VoidEarnToken(db *gorm.DB, tokenID string, store *models.Store, staffID string) error {
	var token models.EarnToken
	err := db.Where("token_id = ?", tokenID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}

	if token.StoreID != store.StoreID {
		return ErrWrongStore
	}
	if token.Status == models.TokenStatusVoided {
		return nil
	}

	program, err := GetActiveProgram(db, token.MerchantID)
	if err != nil {
		return err
	}
	points := program.PointsPerEarn
	if points <= 0 {
		points = 1
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var fresh models.EarnToken
		if err := tx.Where("token_id = ?", tokenID).First(&fresh).Error; err != nil {
			return err
		}
		if fresh.Status == models.TokenStatusVoided {
			return nil
		}

		// Guarded update: the claw-back below must run at most once,
		// so only the void that flips the observed status proceeds.
		// Zero rows means another void won the race; that is the same
		// no-op as voiding a VOIDED token.
		res := tx.Model(&models.EarnToken{}).
			Where("token_id = ? AND status = ?", tokenID, fresh.Status).
			UpdateColumn("status", models.TokenStatusVoided)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if fresh.Status == models.TokenStatusRedeemed && fresh.RedeemedByCustomerID != nil {
			if err := RemovePoints(tx, fresh.MerchantID, *fresh.RedeemedByCustomerID, points); err != nil {
				return err
			}
			return AppendLedgerEntry(tx, &models.LedgerEntry{
				MerchantID:       fresh.MerchantID,
				CustomerID:       *fresh.RedeemedByCustomerID,
				EventType:        models.LedgerEventVoidEarn,
				PointsDelta:      -points,
				TokenID:          &fresh.TokenID,
				CreatedByStaffID: &staffID,
				Note:             "Voided by vendor",
			})
		}
		return nil
	})
}
