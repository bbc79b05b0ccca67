package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/fuckp0/feedsheild/internal/apperrors"
	"github.com/fuckp0/feedsheild/internal/auth"
	"github.com/fuckp0/feedsheild/internal/models"
	"github.com/fuckp0/feedsheild/internal/sentry"

	"github.com/gin-gonic/gin"
)

// chartDays is the trailing window shown in the dashboard chart.
const chartDays = 90

// instagramHandle is the handle recorded by the connect flow. The real
// OAuth handshake lives in the frontend; the backend only tracks the link.
const instagramHandle = "@instagram_acc"

type paymentOut struct {
	Amount  float64 `json:"amount"`
	Package string  `json:"package"`
	Date    string  `json:"date"`
}

type chartPointOut struct {
	Name    string `json:"name"`
	Blocked int    `json:"blocked"`
}

type dashboardOut struct {
	ID                 uint            `json:"id"`
	Email              string          `json:"email"`
	InstagramConnected bool            `json:"instagram_connected"`
	InstagramAccounts  []string        `json:"instagram_accounts"`
	PaymentHistory     []paymentOut    `json:"payment_history"`
	BlockedCount       int64           `json:"blocked_count"`
	ChartData          []chartPointOut `json:"chart_data"`
}

// currentUser resolves the authenticated user or writes a 401.
func (s *Server) currentUser(c *gin.Context) (*models.User, bool) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
		return nil, false
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
			return nil, false
		}
		sentry.CaptureErrorWithContext(c, err, "resolving authenticated user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return nil, false
	}
	return user, true
}

// Dashboard returns the user's usage statistics: lifetime blocked count,
// connected accounts, payment history and the trailing 90-day chart.
func (s *Server) Dashboard(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	accounts, err := s.store.ListConnectedAccounts(user.ID)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "dashboard: listing accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}

	handles := make([]string, 0, len(accounts))
	connected := false
	for _, account := range accounts {
		if account.Username != "" {
			handles = append(handles, account.Username)
		}
		if account.Connected {
			connected = true
		}
	}

	records, err := s.store.ListPaymentRecords(user.ID)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "dashboard: listing payments")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}
	history := make([]paymentOut, 0, len(records))
	for _, rec := range records {
		history = append(history, paymentOut{
			Amount:  rec.Amount,
			Package: rec.Package,
			Date:    rec.PaidAt.UTC().Format(time.RFC3339),
		})
	}

	since := time.Now().UTC().AddDate(0, 0, -chartDays)
	counters, err := s.store.ListDayCounters(user.ID, since)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "dashboard: listing day counters")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}
	chart := make([]chartPointOut, 0, len(counters))
	for _, counter := range counters {
		chart = append(chart, chartPointOut{
			Name:    counter.Date.UTC().Format("2006-01-02"),
			Blocked: counter.Blocked,
		})
	}

	c.JSON(http.StatusOK, dashboardOut{
		ID:                 user.ID,
		Email:              user.Email,
		InstagramConnected: connected,
		InstagramAccounts:  handles,
		PaymentHistory:     history,
		BlockedCount:       user.BlockedCount,
		ChartData:          chart,
	})
}

// ConnectInstagram marks the user's Instagram account as connected.
func (s *Server) ConnectInstagram(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	if err := s.store.UpsertConnectedAccount(user.ID, instagramHandle, true); err != nil {
		sentry.CaptureErrorWithContext(c, err, "connecting instagram account")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Instagram connected successfully"})
}
