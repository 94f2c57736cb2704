package models

import "time"

// PointLot is the atomic unit of a customer's balance: a discrete
// quantity of points with its own creation time and optional expiry.
// The balance of a (merchant, customer) pair is the sum of its
// non-expired, nonzero lots. Lots are never deleted; PointsRemaining
// only moves toward zero after creation. A lot created with a negative
// value is a debt lot left behind by a void that could not be fully
// absorbed.
type PointLot struct {
	LotID           string     `gorm:"primaryKey" json:"lot_id"`
	MerchantID      string     `gorm:"index:idx_lots_account" json:"merchant_id"`
	CustomerID      string     `gorm:"index:idx_lots_account" json:"customer_id"`
	PointsRemaining int        `json:"points_remaining"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       *time.Time `json:"expires_at"`
	SourceTokenID   *string    `json:"source_token_id"`
	Note            string     `json:"note"`
}

// RedemptionConsumption records which lots a redemption drew from.
// Append-only, audit only.
type RedemptionConsumption struct {
	RedemptionID string `gorm:"primaryKey" json:"redemption_id"`
	LotID        string `gorm:"primaryKey" json:"lot_id"`
	PointsUsed   int    `json:"points_used"`
}
