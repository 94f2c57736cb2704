package models

import "time"

// Staff represents a staff member operating a store kiosk
type Staff struct {
	StaffID     string     `gorm:"primaryKey" json:"staff_id"`
	StoreID     string     `gorm:"index" json:"store_id"`
	Email       string     `gorm:"uniqueIndex" json:"email"`
	PINHash     string     `json:"-"`
	Role        string     `json:"role" gorm:"default:'staff'"`
	Status      string     `json:"status" gorm:"default:'active'"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Staff role constants
const (
	StaffRoleManager = "manager"
	StaffRoleStaff   = "staff"
)

// Staff status constants
const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)
