package controllers

import (
	"time"

	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
	"github.com/pointloop/PointLoop/utils"
)

// CreateDemoMerchant seeds a demo merchant with one store, an active
// program, a sample reward and a manager with PIN 1234. Idempotent;
// run once at startup so a fresh database is usable immediately.
func CreateDemoMerchant() error {
	now := time.Now()

	const (
		merchantID = "morgany"
		storeID    = "morgany-main"
		programID  = "morgany-program"
		rewardID   = "morgany-reward-1"
		staffID    = "morgany-staff-1"
	)

	var merchant models.Merchant
	if err := config.DB.Where("merchant_id = ?", merchantID).First(&merchant).Error; err != nil {
		merchant = models.Merchant{
			MerchantID: merchantID,
			Name:       "Morgany Bakery (Demo)",
			Status:     models.MerchantStatusActive,
			CreatedAt:  now,
		}
		if err := config.DB.Create(&merchant).Error; err != nil {
			return err
		}
		utils.LogInfo("Seeded demo merchant %s", merchantID)
	}

	var store models.Store
	if err := config.DB.Where("store_id = ?", storeID).First(&store).Error; err != nil {
		store = models.Store{
			StoreID:    storeID,
			MerchantID: merchantID,
			Name:       "Morgany Bakery - Middlesbrough",
			Address:    "Middlesbrough, UK",
			Timezone:   "Europe/London",
			CreatedAt:  now,
		}
		if err := config.DB.Create(&store).Error; err != nil {
			return err
		}
	}

	var program models.LoyaltyProgram
	if err := config.DB.Where("program_id = ?", programID).First(&program).Error; err != nil {
		expireDays := 180
		program = models.LoyaltyProgram{
			ProgramID:          programID,
			MerchantID:         merchantID,
			PointsPerEarn:      1,
			TokenExpiryMinutes: 120,
			PointsExpireDays:   &expireDays,
			MaxEarnsPerDay:     0,
			MaxEarnsPer10Min:   0,
			CreatedAt:          now,
			Active:             true,
		}
		if err := config.DB.Create(&program).Error; err != nil {
			return err
		}
	}

	var reward models.Reward
	if err := config.DB.Where("reward_id = ?", rewardID).First(&reward).Error; err != nil {
		reward = models.Reward{
			RewardID:   rewardID,
			ProgramID:  programID,
			Name:       "Free hot drink (demo)",
			PointsCost: 8,
			Active:     true,
			CreatedAt:  now,
		}
		if err := config.DB.Create(&reward).Error; err != nil {
			return err
		}
	}

	var staff models.Staff
	if err := config.DB.Where("staff_id = ?", staffID).First(&staff).Error; err != nil {
		pinHash, err := utils.HashPIN("1234")
		if err != nil {
			return err
		}
		staff = models.Staff{
			StaffID:   staffID,
			StoreID:   storeID,
			Email:     "demo@morgany.local",
			PINHash:   pinHash,
			Role:      models.StaffRoleManager,
			Status:    models.StaffStatusActive,
			CreatedAt: now,
		}
		if err := config.DB.Create(&staff).Error; err != nil {
			return err
		}
		utils.LogInfo("Seeded demo staff %s (PIN 1234)", staffID)
	}

	return nil
}
