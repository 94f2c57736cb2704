package models

import "time"

// Merchant represents a business enrolled in the loyalty program
type Merchant struct {
	MerchantID string    `gorm:"primaryKey" json:"merchant_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status" gorm:"default:'active'"`
	CreatedAt  time.Time `json:"created_at"`
	Stores     []Store   `json:"stores,omitempty" gorm:"foreignKey:MerchantID"`
}

// Merchant status constants
const (
	MerchantStatusActive   = "active"
	MerchantStatusDisabled = "disabled"
)

// Store represents a physical location of a merchant
type Store struct {
	StoreID    string    `gorm:"primaryKey" json:"store_id"`
	MerchantID string    `gorm:"index" json:"merchant_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
}
