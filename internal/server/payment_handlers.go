package server

import (
	"net/http"
	"time"

	"github.com/fuckp0/feedsheild/internal/models"
	"github.com/fuckp0/feedsheild/internal/payments"
	"github.com/fuckp0/feedsheild/internal/sentry"

	"github.com/gin-gonic/gin"
)

// billingAnchorDelay is how far in the future new subscriptions start billing.
const billingAnchorDelay = 30 * 24 * time.Hour

type paymentIntentReq struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type confirmPaymentReq struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

type subscriptionReq struct {
	PriceID string `json:"price_id" binding:"required"`
}

// CreatePaymentIntent opens a payment intent with the processor and returns
// the client secret the frontend needs to collect payment.
func (s *Server) CreatePaymentIntent(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req paymentIntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	intent, err := s.payments.CreateIntent(user.Email, req.Amount, req.Description)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "creating payment intent")
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// ConfirmPayment checks the intent's status with the processor and records
// a payment only when it succeeded. The payment history is append-only.
func (s *Server) ConfirmPayment(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req confirmPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	intent, err := s.payments.GetIntent(req.PaymentIntentID)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "retrieving payment intent")
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if intent.Status != payments.IntentStatusSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Payment not successful. Status: " + intent.Status,
		})
		return
	}

	rec := models.PaymentRecord{
		UserID:  user.ID,
		Amount:  float64(intent.Amount) / 100.0,
		Package: intent.Description,
		PaidAt:  time.Now().UTC(),
	}
	if err := s.store.CreatePaymentRecord(&rec); err != nil {
		sentry.CaptureErrorWithContext(c, err, "recording payment")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed"})
}

// CreateSubscription ensures a processor-side customer for the user and
// starts a subscription anchored 30 days out.
func (s *Server) CreateSubscription(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req subscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	customerID, err := s.payments.EnsureCustomer(user.Email, user.StripeCustomerID)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "ensuring payment customer")
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID != customerID {
		if err := s.store.SetStripeCustomerID(user.ID, customerID); err != nil {
			sentry.CaptureErrorWithContext(c, err, "persisting customer id")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
			return
		}
	}

	anchor := time.Now().UTC().Add(billingAnchorDelay)
	sub, err := s.payments.CreateSubscription(customerID, req.PriceID, anchor)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "creating subscription")
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret":   sub.ClientSecret,
		"subscriptionId": sub.ID,
	})
}
