package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fuckp0/feedsheild/internal/apperrors"
	"github.com/fuckp0/feedsheild/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is the gorm-backed Store implementation.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Busy timeout keeps concurrent writers (request handlers vs. the
	// blocking cycle) waiting instead of failing with SQLITE_BUSY.
	if !strings.Contains(path, "?") {
		path += "?_busy_timeout=5000"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ConnectedAccount{},
		&models.PaymentRecord{},
		&models.DailyBlockCount{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// translateError maps gorm/driver errors onto the apperrors sentinels so
// callers never have to match on driver error strings.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", apperrors.ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicateKey, err)
	}
	return err
}

// utcDay normalizes a timestamp to midnight UTC so that day-keyed rows
// always match regardless of the caller's clock precision.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SQLiteStore) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(user *models.User) error {
	return translateError(s.db.Create(user).Error)
}

func (s *SQLiteStore) SetStripeCustomerID(userID uint, customerID string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListConnectedAccounts(userID uint) ([]models.ConnectedAccount, error) {
	var accounts []models.ConnectedAccount
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, translateError(err)
	}
	return accounts, nil
}

func (s *SQLiteStore) UpsertConnectedAccount(userID uint, username string, connected bool) error {
	return translateError(s.db.Transaction(func(tx *gorm.DB) error {
		account := models.ConnectedAccount{UserID: userID, Username: username}
		if err := tx.Where("user_id = ? AND username = ?", userID, username).
			FirstOrCreate(&account).Error; err != nil {
			return err
		}
		if account.Connected == connected {
			return nil
		}
		return tx.Model(&account).Update("connected", connected).Error
	}))
}

func (s *SQLiteStore) CreatePaymentRecord(rec *models.PaymentRecord) error {
	return translateError(s.db.Create(rec).Error)
}

func (s *SQLiteStore) ListPaymentRecords(userID uint) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	if err := s.db.Where("user_id = ?", userID).
		Order("paid_at").Find(&records).Error; err != nil {
		return nil, translateError(err)
	}
	return records, nil
}

// ListPaidUserIDs returns the IDs of users with at least one payment record.
// DISTINCT guarantees each user appears once per cycle.
func (s *SQLiteStore) ListPaidUserIDs() ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.PaymentRecord{}).
		Distinct("user_id").Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

func (s *SQLiteStore) GetDayCounter(userID uint, day time.Time) (*models.DailyBlockCount, error) {
	day = utcDay(day)
	var counter models.DailyBlockCount
	err := s.db.Where("user_id = ? AND date = ?", userID, day).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Absent counter reads as zero with no last-update time.
		return &models.DailyBlockCount{UserID: userID, Date: day}, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &counter, nil
}

func (s *SQLiteStore) ResetDayCounter(userID uint, day time.Time) error {
	day = utcDay(day)
	res := s.db.Model(&models.DailyBlockCount{}).
		Where("user_id = ? AND date = ?", userID, day).
		Update("blocked", 0)
	return translateError(res.Error)
}

func (s *SQLiteStore) IncrementBlockCounters(userID uint, day time.Time, now time.Time, limit int) (bool, error) {
	day = utcDay(day)
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		counter := models.DailyBlockCount{UserID: userID, Date: day}
		if err := tx.Where("user_id = ? AND date = ?", userID, day).
			FirstOrCreate(&counter).Error; err != nil {
			return err
		}

		// Guarded update: only one of two racing increments can win the
		// last slot below the cap.
		res := tx.Model(&models.DailyBlockCount{}).
			Where("user_id = ? AND date = ? AND blocked < ?", userID, day, limit).
			Updates(map[string]interface{}{
				"blocked":       gorm.Expr("blocked + ?", 1),
				"last_block_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("blocked_count", gorm.Expr("blocked_count + ?", 1)).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, translateError(err)
	}
	return applied, nil
}

func (s *SQLiteStore) ListDayCounters(userID uint, since time.Time) ([]models.DailyBlockCount, error) {
	var counters []models.DailyBlockCount
	if err := s.db.Where("user_id = ? AND date >= ?", userID, utcDay(since)).
		Order("date").Find(&counters).Error; err != nil {
		return nil, translateError(err)
	}
	return counters, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
