package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/gorm"
)

// StartRedemptionResult is returned when a redemption handshake is
// opened
type StartRedemptionResult struct {
	Redemption *models.Redemption
	RewardName string
	PointsCost int
}

// CompleteRedemptionResult is returned when staff approve a redemption
type CompleteRedemptionResult struct {
	RewardName string
	CustomerID string
	NewBalance int
}

// StartRedemption opens a PENDING redemption with a short approval
// window. Points are not held: deduction happens only at completion,
// so a customer can open several redemptions against the same balance
// and only the ones that complete in time, in order, will succeed.
func StartRedemption(db *gorm.DB, merchantID, customerID, rewardID string) (*StartRedemptionResult, error) {
	if _, err := GetActiveMerchant(db, merchantID); err != nil {
		return nil, err
	}
	program, err := GetActiveProgram(db, merchantID)
	if err != nil {
		return nil, err
	}

	var reward models.Reward
	err = db.Where("reward_id = ? AND program_id = ? AND active = ?", rewardID, program.ProgramID, true).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	balance, err := GetPointBalance(db, merchantID, customerID)
	if err != nil {
		return nil, err
	}
	if balance < reward.PointsCost {
		return nil, &InsufficientPointsError{Balance: ClampBalance(balance)}
	}

	now := time.Now()
	redemption := models.Redemption{
		RedemptionID:    NewID("x_"),
		MerchantID:      merchantID,
		CustomerID:      customerID,
		RewardID:        rewardID,
		CreatedAt:       now,
		Status:          models.RedemptionStatusPending,
		RedeemToken:     NewID("rt_"),
		RedeemExpiresAt: now.Add(RedemptionWindowSeconds * time.Second),
	}
	if err := db.Create(&redemption).Error; err != nil {
		return nil, err
	}

	return &StartRedemptionResult{
		Redemption: &redemption,
		RewardName: reward.Name,
		PointsCost: reward.PointsCost,
	}, nil
}

// RedemptionStatus returns the redemption for the polling customer.
// Only the owner may read it.
func RedemptionStatus(db *gorm.DB, redeemToken, customerID string) (*models.Redemption, error) {
	var redemption models.Redemption
	err := db.Where("redeem_token = ?", redeemToken).First(&redemption).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if redemption.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return &redemption, nil
}

// CompleteRedemption deducts the reward cost FIFO and marks the
// redemption COMPLETED, all in one transaction. The PENDING status is
// re-checked inside the transaction with a guarded update, so a
// double-approval race resolves to exactly one winner.
func CompleteRedemption(db *gorm.DB, redeemToken string, store *models.Store, staffID string) (*CompleteRedemptionResult, error) {
	var redemption models.Redemption
	err := db.Where("redeem_token = ?", redeemToken).First(&redemption).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if redemption.Status != models.RedemptionStatusPending {
		return nil, ErrNotPending
	}
	if time.Now().After(redemption.RedeemExpiresAt) {
		return nil, ErrRedeemTokenExpired
	}
	if redemption.MerchantID != store.MerchantID {
		return nil, ErrWrongMerchant
	}

	var reward models.Reward
	err = db.Where("reward_id = ? AND active = ?", redemption.RewardID, true).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		// Guarded update: only a PENDING redemption completes. Zero
		// rows means another approval won the race.
		res := tx.Model(&models.Redemption{}).
			Where("redemption_id = ? AND status = ?", redemption.RedemptionID, models.RedemptionStatusPending).
			Updates(map[string]interface{}{
				"status":                models.RedemptionStatusCompleted,
				"completed_at":          now,
				"completed_by_staff_id": staffID,
				"store_id":              store.StoreID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		if _, err := ConsumePointsFIFO(tx, redemption.MerchantID, redemption.CustomerID, reward.PointsCost, &redemption.RedemptionID); err != nil {
			return err
		}

		return AppendLedgerEntry(tx, &models.LedgerEntry{
			MerchantID:       redemption.MerchantID,
			CustomerID:       redemption.CustomerID,
			EventType:        models.LedgerEventRedeem,
			PointsDelta:      -reward.PointsCost,
			RedemptionID:     &redemption.RedemptionID,
			CreatedByStaffID: &staffID,
			Note:             fmt.Sprintf("Reward: %s", reward.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	balance, err := GetPointBalance(db, redemption.MerchantID, redemption.CustomerID)
	if err != nil {
		return nil, err
	}
	return &CompleteRedemptionResult{
		RewardName: reward.Name,
		CustomerID: redemption.CustomerID,
		NewBalance: ClampBalance(balance),
	}, nil
}
