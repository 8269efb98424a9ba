package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeAuthorizer implements Authorizer using Stripe PaymentIntents with
// manual capture, which holds the deposit without charging it.
type StripeAuthorizer struct {
	api      *client.API
	currency string
}

// NewStripeAuthorizer constructs a StripeAuthorizer for the given secret key
// and ISO currency code.
func NewStripeAuthorizer(secretKey, currency string) *StripeAuthorizer {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeAuthorizer{api: api, currency: currency}
}

// CreateAuthorization finds or creates the Stripe customer for the email,
// then opens a manual-capture PaymentIntent for the deposit amount. Note the
// context is accepted for interface symmetry; the Stripe SDK manages its own
// request lifecycle.
func (s *StripeAuthorizer) CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	customerID, err := s.findOrCreateCustomer(req.Email)
	if err != nil {
		return nil, fmt.Errorf("stripe customer: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(s.currency),
		Customer: stripe.String(customerID),
		// Manual capture is what makes this a hold rather than a charge.
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Description:   stripe.String(fmt.Sprintf("Deposit for event: %s", req.EventTitle)),
	}
	params.Context = ctx
	params.AddMetadata("event_id", req.EventID)
	params.AddMetadata("event_title", req.EventTitle)
	params.AddMetadata("user_email", req.Email)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Authorization{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       statusFromIntent(pi.Status),
	}, nil
}

// GetAuthorization fetches the intent's current state.
func (s *StripeAuthorizer) GetAuthorization(ctx context.Context, id string) (*Authorization, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return &Authorization{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       statusFromIntent(pi.Status),
	}, nil
}

func (s *StripeAuthorizer) findOrCreateCustomer(email string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Limit = stripe.Int64(1)
	iter := s.api.Customers.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}

	cust, err := s.api.Customers.New(&stripe.CustomerParams{Email: stripe.String(email)})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cust.ID, nil
}

func statusFromIntent(s stripe.PaymentIntentStatus) Status {
	switch s {
	case stripe.PaymentIntentStatusRequiresCapture:
		return StatusRequiresCapture
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		// requires_payment_method, requires_confirmation, requires_action,
		// processing: the guest has not finished confirming yet.
		return StatusPending
	}
}
