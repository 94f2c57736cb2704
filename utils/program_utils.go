package utils

import (
	"errors"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/gorm"
)

// GetActiveProgram returns the merchant's active loyalty program
func GetActiveProgram(db *gorm.DB, merchantID string) (*models.LoyaltyProgram, error) {
	var program models.LoyaltyProgram
	err := db.Where("merchant_id = ? AND active = ?", merchantID, true).First(&program).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// GetActiveMerchant returns the merchant when it exists and is active
func GetActiveMerchant(db *gorm.DB, merchantID string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := db.Where("merchant_id = ? AND status = ?", merchantID, models.MerchantStatusActive).First(&merchant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}
