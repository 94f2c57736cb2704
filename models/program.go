package models

import "time"

// LoyaltyProgram holds the per-merchant earning and expiry policy.
// One active program per merchant at a time, by convention.
type LoyaltyProgram struct {
	ProgramID          string    `gorm:"primaryKey" json:"program_id"`
	MerchantID         string    `gorm:"index" json:"merchant_id"`
	PointsPerEarn      int       `json:"points_per_earn" gorm:"default:1"`
	TokenExpiryMinutes int       `json:"token_expiry_minutes" gorm:"default:120"`
	PointsExpireDays   *int      `json:"points_expire_days"`
	MaxEarnsPerDay     int       `json:"max_earns_per_day" gorm:"default:0"`
	MaxEarnsPer10Min   int       `json:"max_earns_per_10min" gorm:"column:max_earns_per_10min;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	Active             bool      `json:"active" gorm:"default:true"`
}

// Reward represents something a customer can redeem points for
type Reward struct {
	RewardID   string    `gorm:"primaryKey" json:"reward_id"`
	ProgramID  string    `gorm:"index" json:"program_id"`
	Name       string    `json:"name"`
	PointsCost int       `json:"points_cost"`
	Active     bool      `json:"active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
}
