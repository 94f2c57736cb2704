package utils

import (
	"time"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/gorm"
)

// LotConsumption reports how many points a consumption took from one
// lot
type LotConsumption struct {
	LotID string `json:"lot_id"`
	Used  int    `json:"used"`
}

// lotFIFOOrder spends lots nearest to expiry first, then oldest, so
// that the fewest earned points are lost to expiry. Non-expiring lots
// come last.
const lotFIFOOrder = "CASE WHEN expires_at IS NULL THEN 1 ELSE 0 END ASC, expires_at ASC, created_at ASC"

// GetPointBalance returns the signed balance for a (merchant,
// customer) pair at the current time: the sum of points_remaining over
// nonzero lots that have not expired. The result may be negative when
// debt lots are outstanding; display sites clamp with ClampBalance.
func GetPointBalance(db *gorm.DB, merchantID, customerID string) (int, error) {
	var balance int
	err := db.Model(&models.PointLot{}).
		Select("COALESCE(SUM(points_remaining), 0)").
		Where("merchant_id = ? AND customer_id = ? AND points_remaining != 0", merchantID, customerID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ClampBalance clamps a signed balance to the displayable range
func ClampBalance(balance int) int {
	if balance < 0 {
		return 0
	}
	return balance
}

// AddEarnLot creates a new lot. Only the earn path calls this, always
// with a positive quantity; debt lots are created by RemovePoints.
func AddEarnLot(db *gorm.DB, merchantID, customerID string, points int, expiresAt *time.Time, sourceTokenID *string, note string) (string, error) {
	lot := models.PointLot{
		LotID:           NewID("lot_"),
		MerchantID:      merchantID,
		CustomerID:      customerID,
		PointsRemaining: points,
		CreatedAt:       time.Now(),
		ExpiresAt:       expiresAt,
		SourceTokenID:   sourceTokenID,
		Note:            note,
	}
	if err := db.Create(&lot).Error; err != nil {
		return "", err
	}
	return lot.LotID, nil
}

func eligibleLots(db *gorm.DB, merchantID, customerID string) ([]models.PointLot, error) {
	var lots []models.PointLot
	err := db.Where("merchant_id = ? AND customer_id = ? AND points_remaining > 0", merchantID, customerID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order(lotFIFOOrder).
		Find(&lots).Error
	return lots, err
}

// takeFromLot decrements up to want points from one lot with a guarded
// relative update. The guard re-checks the remaining quantity, so a
// concurrent consumer that drained the lot after it was selected cannot
// drive it negative; the return value is the points actually taken,
// which may be less than want, or zero when nothing is left.
func takeFromLot(tx *gorm.DB, lotID string, want int) (int, error) {
	res := tx.Model(&models.PointLot{}).
		Where("lot_id = ? AND points_remaining >= ?", lotID, want).
		UpdateColumn("points_remaining", gorm.Expr("points_remaining - ?", want))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		return want, nil
	}

	// The lot shrank since it was selected. Re-read the committed
	// value and take what remains, if anything.
	var fresh models.PointLot
	if err := tx.Where("lot_id = ?", lotID).First(&fresh).Error; err != nil {
		return 0, err
	}
	if fresh.PointsRemaining <= 0 {
		return 0, nil
	}
	take := fresh.PointsRemaining
	if take > want {
		take = want
	}
	res = tx.Model(&models.PointLot{}).
		Where("lot_id = ? AND points_remaining >= ?", lotID, take).
		UpdateColumn("points_remaining", gorm.Expr("points_remaining - ?", take))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return take, nil
}

// ConsumePointsFIFO deducts pointsNeeded from the customer's eligible
// lots in FIFO order. When the eligible total falls short it returns
// ErrInsufficientPoints; the caller must run this inside a transaction
// so the partial decrements roll back. When redemptionID is set, one
// consumption record is written per touched lot.
func ConsumePointsFIFO(tx *gorm.DB, merchantID, customerID string, pointsNeeded int, redemptionID *string) ([]LotConsumption, error) {
	lots, err := eligibleLots(tx, merchantID, customerID)
	if err != nil {
		return nil, err
	}

	remaining := pointsNeeded
	var used []LotConsumption
	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		want := lot.PointsRemaining
		if want > remaining {
			want = remaining
		}
		took, err := takeFromLot(tx, lot.LotID, want)
		if err != nil {
			return nil, err
		}
		if took == 0 {
			continue
		}
		used = append(used, LotConsumption{LotID: lot.LotID, Used: took})
		remaining -= took
	}

	if remaining > 0 {
		return nil, ErrInsufficientPoints
	}

	if redemptionID != nil {
		for _, u := range used {
			record := models.RedemptionConsumption{
				RedemptionID: *redemptionID,
				LotID:        u.LotID,
				PointsUsed:   u.Used,
			}
			if err := tx.Create(&record).Error; err != nil {
				return nil, err
			}
		}
	}

	return used, nil
}

// RemovePoints reverses an earn: it deducts from eligible lots in the
// same FIFO order and, when those cannot absorb the full amount,
// leaves a negative debt lot for the remainder so total ledger
// accounting stays exactly balanced. It never fails for lack of
// points.
func RemovePoints(tx *gorm.DB, merchantID, customerID string, pointsToRemove int) error {
	lots, err := eligibleLots(tx, merchantID, customerID)
	if err != nil {
		return err
	}

	remaining := pointsToRemove
	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		want := lot.PointsRemaining
		if want > remaining {
			want = remaining
		}
		took, err := takeFromLot(tx, lot.LotID, want)
		if err != nil {
			return err
		}
		remaining -= took
	}

	if remaining > 0 {
		debt := models.PointLot{
			LotID:           NewID("lot_"),
			MerchantID:      merchantID,
			CustomerID:      customerID,
			PointsRemaining: -remaining,
			CreatedAt:       time.Now(),
			Note:            "Debt from void (insufficient points)",
		}
		if err := tx.Create(&debt).Error; err != nil {
			return err
		}
	}

	return nil
}

// AppendLedgerEntry writes one audit row. Fills in the id and
// timestamp when the caller left them empty.
func AppendLedgerEntry(tx *gorm.DB, entry *models.LedgerEntry) error {
	if entry.LedgerID == "" {
		entry.LedgerID = NewID("l_")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return tx.Create(entry).Error
}
