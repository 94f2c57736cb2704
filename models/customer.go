package models

import "time"

// Customer represents an end customer collecting points
type Customer struct {
	CustomerID    string    `gorm:"primaryKey" json:"customer_id"`
	GoogleSub     *string   `gorm:"uniqueIndex;default:null" json:"-"`
	Email         string    `gorm:"uniqueIndex" json:"email"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}
