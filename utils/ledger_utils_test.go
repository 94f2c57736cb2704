package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pointloop/PointLoop/models"
)

func TestGetPointBalanceIgnoresExpiredLots(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	now := time.Now()

	seedLot(t, db, f.Merchant.MerchantID, "c1", 5, nil, now.Add(-2*time.Hour))
	seedLot(t, db, f.Merchant.MerchantID, "c1", 3, timePtr(now.Add(time.Hour)), now.Add(-time.Hour))
	seedLot(t, db, f.Merchant.MerchantID, "c1", 7, timePtr(now.Add(-time.Minute)), now.Add(-time.Hour))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestGetPointBalanceIsolatesAccounts(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	now := time.Now()

	seedLot(t, db, f.Merchant.MerchantID, "c1", 5, nil, now)
	seedLot(t, db, f.Merchant.MerchantID, "c2", 9, nil, now)
	seedLot(t, db, "other-merchant", "c1", 4, nil, now)

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestGetPointBalanceCanGoNegative(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	seedLot(t, db, f.Merchant.MerchantID, "c1", -3, nil, time.Now())

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, -3, balance)
	assert.Equal(t, 0, ClampBalance(balance))
}

func TestConsumePointsFIFOExpiringLotsFirst(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	now := time.Now()

	// Oldest lot never expires; a newer lot expires soon and must be
	// spent first.
	noExpiry := seedLot(t, db, f.Merchant.MerchantID, "c1", 5, nil, now.Add(-3*time.Hour))
	expiresLate := seedLot(t, db, f.Merchant.MerchantID, "c1", 5, timePtr(now.Add(48*time.Hour)), now.Add(-2*time.Hour))
	expiresSoon := seedLot(t, db, f.Merchant.MerchantID, "c1", 5, timePtr(now.Add(time.Hour)), now.Add(-time.Hour))

	used, err := ConsumePointsFIFO(db, f.Merchant.MerchantID, "c1", 7, nil)
	require.NoError(t, err)

	require.Len(t, used, 2)
	assert.Equal(t, LotConsumption{LotID: expiresSoon, Used: 5}, used[0])
	assert.Equal(t, LotConsumption{LotID: expiresLate, Used: 2}, used[1])

	var untouched models.PointLot
	require.NoError(t, db.First(&untouched, "lot_id = ?", noExpiry).Error)
	assert.Equal(t, 5, untouched.PointsRemaining)

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestConsumePointsFIFOOldestFirstWithinSameExpiry(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	now := time.Now()

	newer := seedLot(t, db, f.Merchant.MerchantID, "c1", 2, nil, now.Add(-time.Hour))
	older := seedLot(t, db, f.Merchant.MerchantID, "c1", 2, nil, now.Add(-2*time.Hour))

	used, err := ConsumePointsFIFO(db, f.Merchant.MerchantID, "c1", 3, nil)
	require.NoError(t, err)

	require.Len(t, used, 2)
	assert.Equal(t, older, used[0].LotID)
	assert.Equal(t, newer, used[1].LotID)
}

func TestConsumePointsFIFOInsufficientRollsBack(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	lotID := seedLot(t, db, f.Merchant.MerchantID, "c1", 5, nil, time.Now())

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ConsumePointsFIFO(tx, f.Merchant.MerchantID, "c1", 8, nil)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientPoints))

	// The partial decrement must have rolled back with the transaction.
	var lot models.PointLot
	require.NoError(t, db.First(&lot, "lot_id = ?", lotID).Error)
	assert.Equal(t, 5, lot.PointsRemaining)
}

func TestConsumePointsFIFORecordsConsumptions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	seedLot(t, db, f.Merchant.MerchantID, "c1", 10, nil, time.Now())

	redemptionID := "x_test"
	used, err := ConsumePointsFIFO(db, f.Merchant.MerchantID, "c1", 4, &redemptionID)
	require.NoError(t, err)
	require.Len(t, used, 1)

	var records []models.RedemptionConsumption
	require.NoError(t, db.Where("redemption_id = ?", redemptionID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, used[0].LotID, records[0].LotID)
	assert.Equal(t, 4, records[0].PointsUsed)
}

func TestTakeFromLotNeverOverdraws(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	lotID := seedLot(t, db, f.Merchant.MerchantID, "c1", 3, nil, time.Now())

	// A consumer that selected this lot when it held more asks for 5;
	// the guarded update caps the take at what is actually left.
	took, err := takeFromLot(db, lotID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, took)

	var lot models.PointLot
	require.NoError(t, db.First(&lot, "lot_id = ?", lotID).Error)
	assert.Equal(t, 0, lot.PointsRemaining)

	// A drained lot yields nothing instead of going negative.
	took, err = takeFromLot(db, lotID, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, took)

	require.NoError(t, db.First(&lot, "lot_id = ?", lotID).Error)
	assert.Equal(t, 0, lot.PointsRemaining)
}

func TestRemovePointsLeavesDebtLot(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	seedLot(t, db, f.Merchant.MerchantID, "c1", 2, nil, time.Now())

	require.NoError(t, RemovePoints(db, f.Merchant.MerchantID, "c1", 5))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, -3, balance)

	var debt models.PointLot
	require.NoError(t, db.Where("merchant_id = ? AND customer_id = ? AND points_remaining < 0", f.Merchant.MerchantID, "c1").First(&debt).Error)
	assert.Equal(t, -3, debt.PointsRemaining)
	assert.Equal(t, "Debt from void (insufficient points)", debt.Note)
}

func TestRemovePointsAbsorbedByLots(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	seedLot(t, db, f.Merchant.MerchantID, "c1", 4, nil, time.Now())

	require.NoError(t, RemovePoints(db, f.Merchant.MerchantID, "c1", 3))

	balance, err := GetPointBalance(db, f.Merchant.MerchantID, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance)

	var count int64
	require.NoError(t, db.Model(&models.PointLot{}).
		Where("merchant_id = ? AND customer_id = ? AND points_remaining < 0", f.Merchant.MerchantID, "c1").
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAppendLedgerEntryFillsDefaults(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	entry := models.LedgerEntry{
		MerchantID:  f.Merchant.MerchantID,
		CustomerID:  "c1",
		EventType:   models.LedgerEventEarn,
		PointsDelta: 1,
	}
	require.NoError(t, AppendLedgerEntry(db, &entry))
	assert.NotEmpty(t, entry.LedgerID)
	assert.False(t, entry.CreatedAt.IsZero())
}
