package models

import "time"

// Redemption is a customer-initiated, staff-approved exchange of
// points for a reward. A redemption past its approval window is
// treated as expired at read time; the stored status stays PENDING.
type Redemption struct {
	RedemptionID       string     `gorm:"primaryKey" json:"redemption_id"`
	MerchantID         string     `gorm:"index" json:"merchant_id"`
	CustomerID         string     `gorm:"index" json:"customer_id"`
	RewardID           string     `json:"reward_id"`
	CreatedAt          time.Time  `json:"created_at"`
	Status             string     `json:"status"`
	RedeemToken        string     `gorm:"uniqueIndex" json:"-"`
	RedeemExpiresAt    time.Time  `json:"redeem_expires_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CompletedByStaffID *string    `json:"completed_by_staff_id"`
	StoreID            *string    `json:"store_id"`
}

// Redemption status constants. VOIDED is reserved for manual
// reversals; no current flow sets it.
const (
	RedemptionStatusPending   = "PENDING"
	RedemptionStatusCompleted = "COMPLETED"
	RedemptionStatusVoided    = "VOIDED"
)
