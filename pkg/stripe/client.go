package stripe

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/paymentmethod"
)

type CardDetails struct {
	Number   string
	ExpMonth int64
	ExpYear  int64
	CVC      string
}

// Client is the payment processor surface the checkout flow depends on.
type Client interface {
	ChargeCard(amount int64, currency, description string, card CardDetails) (string, error)
}

type stripeClient struct{}

func NewStripeClient(apiKey string) Client {
	stripe.Key = apiKey

	return &stripeClient{}
}

// ChargeCard tokenizes the card, creates a payment intent for the amount
// (in the currency's smallest unit) and confirms it in one round trip.
// It returns the payment intent ID on success.
func (s *stripeClient) ChargeCard(amount int64, currency, description string, card CardDetails) (string, error) {

	method, err := paymentmethod.New(&stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create payment method: %w", err)
	}

	intent, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		Description:   stripe.String(description),
		PaymentMethod: stripe.String(method.ID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to confirm payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", errors.New("payment was not completed: " + string(intent.Status))
	}

	return intent.ID, nil
}
