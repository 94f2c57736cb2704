package utils

import (
	"errors"
	"time"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/gorm"
)

// RateLimitResult reports the outcome of a rate-limit check
type RateLimitResult struct {
	OK         bool
	RetryAfter int
}

// CheckRateLimit applies a fixed-window counter to the given key. A
// missing window starts one; an elapsed window resets; otherwise the
// count is compared against max and incremented. This is
// reset-on-expiry, not a sliding log: bursts at window boundaries are
// possible and acceptable for abuse mitigation. max <= 0 disables the
// check. The counter row shares the ledger's store, and increments use
// a relative UPDATE so concurrent workers cannot lose updates.
func CheckRateLimit(db *gorm.DB, key string, max, windowSeconds int) (RateLimitResult, error) {
	if max <= 0 {
		return RateLimitResult{OK: true}, nil
	}

	now := time.Now().Unix()

	var window models.RateLimitWindow
	err := db.Where("key = ?", key).First(&window).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return startWindow(db, key, windowSeconds)
	}
	if err != nil {
		return RateLimitResult{}, err
	}

	elapsed := now - window.WindowStart
	if elapsed >= int64(window.WindowSeconds) {
		err := db.Model(&models.RateLimitWindow{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{
				"count":          1,
				"window_start":   now,
				"window_seconds": windowSeconds,
			}).Error
		if err != nil {
			return RateLimitResult{}, err
		}
		return RateLimitResult{OK: true}, nil
	}

	if window.Count >= max {
		return RateLimitResult{OK: false, RetryAfter: window.WindowSeconds - int(elapsed)}, nil
	}

	err = db.Model(&models.RateLimitWindow{}).
		Where("key = ?", key).
		UpdateColumn("count", gorm.Expr("count + 1")).Error
	if err != nil {
		return RateLimitResult{}, err
	}
	return RateLimitResult{OK: true}, nil
}

// startWindow inserts the first counter row for a key. When two
// workers race the insert, the loser's Create hits the primary key;
// it falls back to incrementing the row the winner created so the
// request is still counted.
func startWindow(db *gorm.DB, key string, windowSeconds int) (RateLimitResult, error) {
	window := models.RateLimitWindow{
		Key:           key,
		Count:         1,
		WindowStart:   time.Now().Unix(),
		WindowSeconds: windowSeconds,
	}
	if err := db.Create(&window).Error; err != nil {
		incErr := db.Model(&models.RateLimitWindow{}).
			Where("key = ?", key).
			UpdateColumn("count", gorm.Expr("count + 1")).Error
		if incErr != nil {
			return RateLimitResult{}, err
		}
	}
	return RateLimitResult{OK: true}, nil
}
