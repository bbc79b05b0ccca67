package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fuckp0/feedsheild/internal/apperrors"
	"github.com/fuckp0/feedsheild/internal/models"
)

// setupTestStore creates a temp-file SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	f, err := os.CreateTemp("", "feedsheild-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp db: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	store, err := NewSQLiteStore(f.Name())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// createTestUser inserts a minimal user and returns its ID.
func createTestUser(t *testing.T, store *SQLiteStore, email string) uint {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x"}
	if err := store.CreateUser(u); err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return u.ID
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	createTestUser(t, store, "dup@example.com")

	err := store.CreateUser(&models.User{Email: "dup@example.com", PasswordHash: "y"})
	if err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
	if !errors.Is(err, apperrors.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got: %v", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUserByEmail("ghost@example.com")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// TestGetDayCounter_AbsentReadsAsZero verifies that a missing counter row is
// not an error: it reads as count 0 with no last-update time.
func TestGetDayCounter_AbsentReadsAsZero(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "zero@example.com")

	counter, err := store.GetDayCounter(userID, time.Now())
	if err != nil {
		t.Fatalf("GetDayCounter: %v", err)
	}
	if counter.Blocked != 0 {
		t.Errorf("Blocked = %d, want 0", counter.Blocked)
	}
	if counter.LastBlockAt != nil {
		t.Errorf("LastBlockAt = %v, want nil", counter.LastBlockAt)
	}
}

func TestIncrementBlockCounters_MovesBothCounters(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "inc@example.com")
	now := time.Now().UTC()

	applied, err := store.IncrementBlockCounters(userID, now, now, 100)
	if err != nil {
		t.Fatalf("IncrementBlockCounters: %v", err)
	}
	if !applied {
		t.Fatal("expected increment to apply")
	}

	counter, err := store.GetDayCounter(userID, now)
	if err != nil {
		t.Fatalf("GetDayCounter: %v", err)
	}
	if counter.Blocked != 1 {
		t.Errorf("Blocked = %d, want 1", counter.Blocked)
	}
	if counter.LastBlockAt == nil {
		t.Error("LastBlockAt not recorded")
	}

	user, err := store.GetUserByID(userID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if user.BlockedCount != 1 {
		t.Errorf("BlockedCount = %d, want 1", user.BlockedCount)
	}
}

// TestIncrementBlockCounters_RespectsLimit verifies the guarded update stops
// at the cap and leaves the lifetime counter untouched once there.
func TestIncrementBlockCounters_RespectsLimit(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "cap@example.com")
	now := time.Now().UTC()

	const limit = 3
	for i := 0; i < limit; i++ {
		applied, err := store.IncrementBlockCounters(userID, now, now, limit)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if !applied {
			t.Fatalf("increment %d unexpectedly refused", i)
		}
	}

	applied, err := store.IncrementBlockCounters(userID, now, now, limit)
	if err != nil {
		t.Fatalf("increment past cap: %v", err)
	}
	if applied {
		t.Error("increment past cap unexpectedly applied")
	}

	counter, _ := store.GetDayCounter(userID, now)
	if counter.Blocked != limit {
		t.Errorf("Blocked = %d, want %d", counter.Blocked, limit)
	}
	user, _ := store.GetUserByID(userID)
	if user.BlockedCount != limit {
		t.Errorf("BlockedCount = %d, want %d", user.BlockedCount, limit)
	}
}

func TestResetDayCounter(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "reset@example.com")
	now := time.Now().UTC()

	if _, err := store.IncrementBlockCounters(userID, now, now, 100); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.ResetDayCounter(userID, now); err != nil {
		t.Fatalf("ResetDayCounter: %v", err)
	}

	counter, err := store.GetDayCounter(userID, now)
	if err != nil {
		t.Fatalf("GetDayCounter: %v", err)
	}
	if counter.Blocked != 0 {
		t.Errorf("Blocked = %d after reset, want 0", counter.Blocked)
	}

	// Lifetime counter is unaffected by window resets.
	user, _ := store.GetUserByID(userID)
	if user.BlockedCount != 1 {
		t.Errorf("BlockedCount = %d, want 1", user.BlockedCount)
	}
}

// TestListPaidUserIDs_Distinct verifies a user with several payment records
// appears exactly once.
func TestListPaidUserIDs_Distinct(t *testing.T) {
	store := setupTestStore(t)
	paid := createTestUser(t, store, "paid@example.com")
	createTestUser(t, store, "free@example.com")

	for i := 0; i < 3; i++ {
		rec := &models.PaymentRecord{UserID: paid, Amount: 9.99, Package: "monthly", PaidAt: time.Now()}
		if err := store.CreatePaymentRecord(rec); err != nil {
			t.Fatalf("CreatePaymentRecord: %v", err)
		}
	}

	ids, err := store.ListPaidUserIDs()
	if err != nil {
		t.Fatalf("ListPaidUserIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != paid {
		t.Errorf("ListPaidUserIDs = %v, want [%d]", ids, paid)
	}
}

func TestUpsertConnectedAccount(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "insta@example.com")

	if err := store.UpsertConnectedAccount(userID, "@instagram_acc", true); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Second upsert must update in place, not create a second row.
	if err := store.UpsertConnectedAccount(userID, "@instagram_acc", false); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	accounts, err := store.ListConnectedAccounts(userID)
	if err != nil {
		t.Fatalf("ListConnectedAccounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Connected {
		t.Error("Connected = true, want false after second upsert")
	}
}

func TestListDayCounters_SinceFilter(t *testing.T) {
	store := setupTestStore(t)
	userID := createTestUser(t, store, "chart@example.com")
	today := time.Now().UTC()
	longAgo := today.AddDate(0, 0, -120)

	if _, err := store.IncrementBlockCounters(userID, longAgo, longAgo, 100); err != nil {
		t.Fatalf("old increment: %v", err)
	}
	if _, err := store.IncrementBlockCounters(userID, today, today, 100); err != nil {
		t.Fatalf("recent increment: %v", err)
	}

	counters, err := store.ListDayCounters(userID, today.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("ListDayCounters: %v", err)
	}
	if len(counters) != 1 {
		t.Fatalf("got %d counters, want 1 (120-day-old row filtered out)", len(counters))
	}
	if got := counters[0].Date.UTC().Format("2006-01-02"); got != today.Format("2006-01-02") {
		t.Errorf("Date = %s, want %s", got, today.Format("2006-01-02"))
	}
}
