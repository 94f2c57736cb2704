package models

import "time"

// EarnToken is a single-use code issued by staff representing one
// pending point award. Expiry is derived from ExpiresAt at read time;
// an expired token keeps status ISSUED until a claim or void touches
// it.
type EarnToken struct {
	TokenID              string     `gorm:"primaryKey" json:"token_id"`
	MerchantID           string     `gorm:"index" json:"merchant_id"`
	StoreID              string     `gorm:"index" json:"store_id"`
	IssuedByStaffID      string     `json:"issued_by_staff_id"`
	IssuedAt             time.Time  `json:"issued_at"`
	ExpiresAt            time.Time  `json:"expires_at"`
	Status               string     `json:"status"`
	RedeemedAt           *time.Time `json:"redeemed_at"`
	RedeemedByCustomerID *string    `json:"redeemed_by_customer_id"`
	ReceiptCode          string     `json:"receipt_code"`
	TransactionRef       *string    `json:"transaction_ref"`
	IPIssued             string     `json:"-"`
	IPRedeemed           string     `json:"-"`
	UARedeemed           string     `json:"-"`
}

// Earn token status constants
const (
	TokenStatusIssued   = "ISSUED"
	TokenStatusRedeemed = "REDEEMED"
	TokenStatusVoided   = "VOIDED"
)
