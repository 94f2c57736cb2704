package utils

// Application constants
const (
	// Application name
	AppName = "PointLoop"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default database host
	DefaultDBHost = "localhost"

	// Default database port
	DefaultDBPort = "5432"

	// Default database name
	DefaultDBName = "pointloop"

	// Default database user
	DefaultDBUser = "postgres"

	// Vendor session expiry (7 days)
	VendorTokenExpiration = "168h"

	// Customer session expiry (30 days)
	CustomerTokenExpiration = "720h"

	// Login OTP expiry (10 minutes)
	OTPExpiration = "10m"

	// Alphabet for receipt codes; ambiguous characters (0/O, 1/I/L)
	// are excluded
	ReceiptCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// Receipt code length
	ReceiptCodeLength = 4

	// Staff issuance cap: tokens per window
	IssueRateLimitMax = 120

	// Staff issuance window in seconds
	IssueRateLimitWindowSeconds = 60

	// Earn burst window for the per-customer cap, in seconds
	EarnBurstWindowSeconds = 600

	// Earn daily window for the per-customer cap, in seconds
	EarnDayWindowSeconds = 86400

	// Redemption approval window in seconds
	RedemptionWindowSeconds = 300

	// Policy update floors
	MinPointsPerEarn      = 1
	MinTokenExpiryMinutes = 5
	MinPointsExpireDays   = 1
	MinRewardPointsCost   = 1

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100
)
