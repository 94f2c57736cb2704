package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pointloop/PointLoop/models"
)

func TestIssueAndClaimEarnToken(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "receipt-42", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusIssued, token.Status)
	assert.Len(t, token.ReceiptCode, ReceiptCodeLength)
	assert.WithinDuration(t, time.Now().Add(120*time.Minute), token.ExpiresAt, time.Minute)
	require.NotNil(t, token.TransactionRef)
	assert.Equal(t, "receipt-42", *token.TransactionRef)

	result, err := ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "10.0.0.2", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, f.Merchant.MerchantID, result.MerchantID)
	assert.Equal(t, 1, result.PointsAdded)
	assert.Equal(t, 1, result.NewBalance)

	var fresh models.EarnToken
	require.NoError(t, db.First(&fresh, "token_id = ?", token.TokenID).Error)
	assert.Equal(t, models.TokenStatusRedeemed, fresh.Status)
	require.NotNil(t, fresh.RedeemedByCustomerID)
	assert.Equal(t, "c1", *fresh.RedeemedByCustomerID)
	require.NotNil(t, fresh.RedeemedAt)

	var entry models.LedgerEntry
	require.NoError(t, db.Where("token_id = ?", token.TokenID).First(&entry).Error)
	assert.Equal(t, models.LedgerEventEarn, entry.EventType)
	assert.Equal(t, 1, entry.PointsDelta)
}

func TestClaimAppliesProgramPointExpiry(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	expireDays := 180
	require.NoError(t, db.Model(&models.LoyaltyProgram{}).
		Where("program_id = ?", f.Program.ProgramID).
		Update("points_expire_days", &expireDays).Error)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	var lot models.PointLot
	require.NoError(t, db.Where("source_token_id = ?", token.TokenID).First(&lot).Error)
	require.NotNil(t, lot.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(180*24*time.Hour), *lot.ExpiresAt, time.Minute)
}

func TestClaimTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)

	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	_, err = ClaimEarnToken(db, token.TokenID, "c2", token.ReceiptCode, "", "")
	assert.True(t, errors.Is(err, ErrTokenAlreadyUsed))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c2")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestClaimRaceResolvesToOneWinner(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)

	// Simulate the loser of a race: its pre-checks saw ISSUED, but the
	// guarded update inside the transaction must find zero rows.
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.EarnToken{}).
			Where("token_id = ? AND status = ?", token.TokenID, models.TokenStatusIssued).
			Update("status", models.TokenStatusRedeemed)
		require.NoError(t, res.Error)
		require.Equal(t, int64(1), res.RowsAffected)
		return nil
	})
	require.NoError(t, err)

	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	assert.True(t, errors.Is(err, ErrTokenAlreadyUsed))
}

func TestClaimExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.EarnToken{}).
		Where("token_id = ?", token.TokenID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	assert.True(t, errors.Is(err, ErrTokenExpired))

	// Expiry is derived at read time; storage keeps ISSUED.
	var fresh models.EarnToken
	require.NoError(t, db.First(&fresh, "token_id = ?", token.TokenID).Error)
	assert.Equal(t, models.TokenStatusIssued, fresh.Status)
}

func TestClaimWrongReceiptCode(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)

	_, err = ClaimEarnToken(db, token.TokenID, "c1", "XXXX", "", "")
	assert.True(t, errors.Is(err, ErrBadReceiptCode))

	// Case-insensitive match is accepted.
	_, err = ClaimEarnToken(db, token.TokenID, "c1", "  "+strings.ToLower(token.ReceiptCode)+" ", "", "")
	require.NoError(t, err)
}

func TestClaimUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	seedFixture(t, db)

	_, err := ClaimEarnToken(db, "t_missing", "c1", "", "", "")
	assert.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestClaimVoidedToken(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	assert.True(t, errors.Is(err, ErrTokenAlreadyUsed))
}

func TestClaimBurstCap(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	require.NoError(t, db.Model(&models.LoyaltyProgram{}).
		Where("program_id = ?", f.Program.ProgramID).
		Update("max_earns_per_10min", 2).Error)

	for i := 0; i < 2; i++ {
		token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
		require.NoError(t, err)
		_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
		require.NoError(t, err)
	}

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")

	var rateErr *RateLimitedError
	require.True(t, errors.As(err, &rateErr))
	assert.Greater(t, rateErr.RetryAfter, 0)

	// The cap is per customer; another customer still claims.
	_, err = ClaimEarnToken(db, token.TokenID, "c2", token.ReceiptCode, "", "")
	require.NoError(t, err)
}

func TestIssueRateLimited(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	// Exhaust the issuing staff member's window directly.
	for i := 0; i < IssueRateLimitMax; i++ {
		rl, err := CheckRateLimit(db, "issue:"+f.Staff.StaffID, IssueRateLimitMax, IssueRateLimitWindowSeconds)
		require.NoError(t, err)
		require.True(t, rl.OK)
	}

	_, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	var rateErr *RateLimitedError
	require.True(t, errors.As(err, &rateErr))
	assert.Greater(t, rateErr.RetryAfter, 0)
}

func TestVoidRedeemedTokenClawsBackPoints(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	var entry models.LedgerEntry
	require.NoError(t, db.Where("token_id = ? AND event_type = ?", token.TokenID, models.LedgerEventVoidEarn).First(&entry).Error)
	assert.Equal(t, -1, entry.PointsDelta)
}

func TestVoidAfterSpendLeavesDebt(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	// Spend the earned point before the void lands.
	_, err = ConsumePointsFIFO(db, f.Merchant.MerchantID, "c1", 1, nil)
	require.NoError(t, err)

	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, -1, balance)
	assert.Equal(t, 0, ClampBalance(balance))

	// Ledger deltas stay balanced: +1 earn, -1 void.
	var total int
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(points_delta), 0)").
		Where("merchant_id = ? AND customer_id = ?", f.Merchant.MerchantID, "c1").
		Scan(&total).Error)
	assert.Equal(t, 0, total)
}

func TestVoidClawsBackAtMostOnce(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	// A competing void that observed REDEEMED before the first one
	// landed runs the same guarded update and must find zero rows, so
	// it cannot claw back a second time.
	res := db.Model(&models.EarnToken{}).
		Where("token_id = ? AND status = ?", token.TokenID, models.TokenStatusRedeemed).
		UpdateColumn("status", models.TokenStatusVoided)
	require.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("token_id = ? AND event_type = ?", token.TokenID, models.LedgerEventVoidEarn).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVoidIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	_, err = ClaimEarnToken(db, token.TokenID, "c1", token.ReceiptCode, "", "")
	require.NoError(t, err)

	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))
	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	// The claw-back ran once.
	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("token_id = ? AND event_type = ?", token.TokenID, models.LedgerEventVoidEarn).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVoidWrongStore(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	other := models.Store{StoreID: "s2", MerchantID: f.Merchant.MerchantID, Name: "Other", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&other).Error)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)

	err = VoidEarnToken(db, token.TokenID, &other, f.Staff.StaffID)
	assert.True(t, errors.Is(err, ErrWrongStore))
}

func TestVoidUnclaimedTokenAddsNoLedger(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	token, err := IssueEarnToken(db, &f.Store, f.Staff.StaffID, "", "")
	require.NoError(t, err)
	require.NoError(t, VoidEarnToken(db, token.TokenID, &f.Store, f.Staff.StaffID))

	var fresh models.EarnToken
	require.NoError(t, db.First(&fresh, "token_id = ?", token.TokenID).Error)
	assert.Equal(t, models.TokenStatusVoided, fresh.Status)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
