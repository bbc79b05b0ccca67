// Package payments wraps the payment processor behind a small interface so
// HTTP handlers can be tested without network calls.
package payments

import "time"

// IntentStatusSucceeded is the processor status that allows a payment to be
// recorded. Any other status leaves the payment history untouched.
const IntentStatusSucceeded = "succeeded"

// Intent is the subset of a payment intent the handlers care about.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // smallest currency unit (cents)
	Description  string
}

// Subscription is the result of creating a recurring subscription.
type Subscription struct {
	ID           string
	ClientSecret string
}

// Provider is the boundary to the payment processor.
type Provider interface {
	// CreateIntent opens a payment intent for the given amount in cents.
	CreateIntent(email string, amount int64, description string) (*Intent, error)
	// GetIntent fetches the current state of a payment intent.
	GetIntent(id string) (*Intent, error)
	// EnsureCustomer returns existingID when set, otherwise creates a
	// processor-side customer for the email and returns its ID.
	EnsureCustomer(email string, existingID *string) (string, error)
	// CreateSubscription starts a subscription for the customer, anchored
	// at the given billing-cycle start.
	CreateSubscription(customerID, priceID string, anchor time.Time) (*Subscription, error)
}
