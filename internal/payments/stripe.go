package payments

import (
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/subscription"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct{}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider sets the global Stripe key and returns a provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{}
}

// customerName derives a display name from the local part of the email.
func customerName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func (p *StripeProvider) CreateIntent(email string, amount int64, description string) (*Intent, error) {
	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(customerName(email)),
	})
	if err != nil {
		return nil, err
	}

	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(description),
		Customer:    stripe.String(cust.ID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) GetIntent(id string) (*Intent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) EnsureCustomer(email string, existingID *string) (string, error) {
	if existingID != nil && *existingID != "" {
		return *existingID, nil
	}
	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(customerName(email)),
	})
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (p *StripeProvider) CreateSubscription(customerID, priceID string, anchor time.Time) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		BillingCycleAnchor: stripe.Int64(anchor.Unix()),
		ProrationBehavior:  stripe.String("none"),
		PaymentBehavior:    stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.New(params)
	if err != nil {
		return nil, err
	}

	if sub.LatestInvoice == nil || sub.LatestInvoice.PaymentIntent == nil {
		return nil, errors.New("subscription created without payment intent")
	}
	return &Subscription{
		ID:           sub.ID,
		ClientSecret: sub.LatestInvoice.PaymentIntent.ClientSecret,
	}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Description:  pi.Description,
	}
}
