package models

import "time"

// LedgerEntry is an immutable audit record of a balance-affecting
// event. The ledger is append-only and is never used to compute a
// balance; point lots are the source of truth.
type LedgerEntry struct {
	LedgerID         string    `gorm:"primaryKey" json:"ledger_id"`
	MerchantID       string    `gorm:"index:idx_ledger_account" json:"merchant_id"`
	CustomerID       string    `gorm:"index:idx_ledger_account" json:"customer_id"`
	EventType        string    `json:"event_type"`
	PointsDelta      int       `json:"points_delta"`
	TokenID          *string   `json:"token_id"`
	RedemptionID     *string   `json:"redemption_id"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedByStaffID *string   `json:"created_by_staff_id"`
	Note             string    `json:"note"`
}

// Ledger event type constants
const (
	LedgerEventEarn     = "EARN"
	LedgerEventRedeem   = "REDEEM"
	LedgerEventVoidEarn = "VOID_EARN"
	LedgerEventAdjust   = "ADJUST"
)
