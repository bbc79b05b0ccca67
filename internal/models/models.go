package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email            string  `gorm:"uniqueIndex;not null"`
	PasswordHash     string  `gorm:"not null"`
	StripeCustomerID *string // nil until the first subscription is created
	// BlockedCount is the lifetime number of block actions recorded for
	// this user. Mutated only through Store.IncrementBlockCounters.
	BlockedCount int64 `gorm:"default:0"`
}

// ConnectedAccount links a user to an external social-media handle.
type ConnectedAccount struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex:idx_user_handle"`
	Username  string `gorm:"uniqueIndex:idx_user_handle"`
	Connected bool   `gorm:"default:false"`
}

// PaymentRecord is an append-only record of a confirmed payment.
// A user with at least one record is considered paid.
type PaymentRecord struct {
	gorm.Model
	UserID  uint `gorm:"index"`
	Amount  float64
	Package string
	PaidAt  time.Time
}

// DailyBlockCount tracks block actions per user per calendar day (UTC).
// Blocked counts toward the rolling 100-action quota; LastBlockAt is the
// timestamp of the most recent write and drives the staleness reset.
type DailyBlockCount struct {
	gorm.Model
	UserID      uint      `gorm:"uniqueIndex:idx_user_day"`
	Date        time.Time `gorm:"uniqueIndex:idx_user_day;type:date"` // Date only (no time)
	Blocked     int       `gorm:"default:0"`
	LastBlockAt *time.Time // nil until the first block on this day
}
