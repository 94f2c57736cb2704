package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pointloop/PointLoop/config"
	"github.com/pointloop/PointLoop/models"
)

// setupTestDB opens a fresh in-memory database per test. The named
// shared-cache DSN keeps gorm's pooled connections on the same
// database while isolating tests from each other.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.MigrateModels(db))
	return db
}

type testFixture struct {
	Merchant models.Merchant
	Store    models.Store
	Program  models.LoyaltyProgram
	Reward   models.Reward
	Staff    models.Staff
}

// seedFixture creates one merchant with a store, an active program
// (1 point per earn, 120 minute tokens, no point expiry, no caps), a
// reward costing 8 points and one staff member.
func seedFixture(t *testing.T, db *gorm.DB) testFixture {
	t.Helper()
	now := time.Now()

	f := testFixture{
		Merchant: models.Merchant{
			MerchantID: "m1",
			Name:       "Test Bakery",
			Status:     models.MerchantStatusActive,
			CreatedAt:  now,
		},
		Store: models.Store{
			StoreID:    "s1",
			MerchantID: "m1",
			Name:       "Test Bakery Main",
			CreatedAt:  now,
		},
		Program: models.LoyaltyProgram{
			ProgramID:          "p1",
			MerchantID:         "m1",
			PointsPerEarn:      1,
			TokenExpiryMinutes: 120,
			CreatedAt:          now,
			Active:             true,
		},
		Reward: models.Reward{
			RewardID:   "r1",
			ProgramID:  "p1",
			Name:       "Free hot drink",
			PointsCost: 8,
			Active:     true,
			CreatedAt:  now,
		},
		Staff: models.Staff{
			StaffID:   "st1",
			StoreID:   "s1",
			Email:     "staff@test.local",
			Role:      models.StaffRoleManager,
			Status:    models.StaffStatusActive,
			CreatedAt: now,
		},
	}

	require.NoError(t, db.Create(&f.Merchant).Error)
	require.NoError(t, db.Create(&f.Store).Error)
	require.NoError(t, db.Create(&f.Program).Error)
	require.NoError(t, db.Create(&f.Reward).Error)
	require.NoError(t, db.Create(&f.Staff).Error)
	return f
}

// seedLot inserts a lot directly, bypassing the earn path
func seedLot(t *testing.T, db *gorm.DB, merchantID, customerID string, points int, expiresAt *time.Time, createdAt time.Time) string {
	t.Helper()
	lot := models.PointLot{
		LotID:           NewID("lot_"),
		MerchantID:      merchantID,
		CustomerID:      customerID,
		PointsRemaining: points,
		CreatedAt:       createdAt,
		ExpiresAt:       expiresAt,
	}
	require.NoError(t, db.Create(&lot).Error)
	return lot.LotID
}

func timePtr(tm time.Time) *time.Time { return &tm }
