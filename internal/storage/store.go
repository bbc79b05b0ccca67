package storage

import (
	"time"

	"github.com/fuckp0/feedsheild/internal/models"
)

// Store defines the interface for data persistence operations.
// This allows for easy testing with mock implementations and
// potential future support for different storage backends.
type Store interface {
	// User operations
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
	SetStripeCustomerID(userID uint, customerID string) error

	// Connected account operations
	ListConnectedAccounts(userID uint) ([]models.ConnectedAccount, error)
	UpsertConnectedAccount(userID uint, username string, connected bool) error

	// Payment operations
	CreatePaymentRecord(rec *models.PaymentRecord) error
	ListPaymentRecords(userID uint) ([]models.PaymentRecord, error)
	ListPaidUserIDs() ([]uint, error)

	// Block counter operations.
	// GetDayCounter returns a zero-valued counter (nil LastBlockAt) when no
	// row exists for the given day; absence is not an error.
	GetDayCounter(userID uint, day time.Time) (*models.DailyBlockCount, error)
	// ResetDayCounter sets the day's window count back to zero. It is a
	// standalone write, committed independently of any later increment.
	ResetDayCounter(userID uint, day time.Time) error
	// IncrementBlockCounters adds one to both the day's window count and the
	// user's lifetime count in a single transaction, but only while the
	// window count is below limit. Returns whether the increment applied.
	IncrementBlockCounters(userID uint, day time.Time, now time.Time, limit int) (bool, error)
	// ListDayCounters returns all day counters on or after since, oldest first.
	ListDayCounters(userID uint, since time.Time) ([]models.DailyBlockCount, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
