package models

// RateLimitWindow is a fixed-window counter row keyed by an arbitrary
// string. It lives in the same store as the ledger so every worker
// sees one window per key.
type RateLimitWindow struct {
	Key           string `gorm:"primaryKey;column:key" json:"key"`
	Count         int    `json:"count"`
	WindowStart   int64  `json:"window_start"`
	WindowSeconds int    `json:"window_seconds"`
}

// TableName overrides the default table name
func (RateLimitWindow) TableName() string {
	return "rate_limits"
}
