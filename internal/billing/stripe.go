package billing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/audeasy/audeasy/config"
	"github.com/audeasy/audeasy/internal/database"
	"github.com/audeasy/audeasy/internal/logger"
	stripe "github.com/stripe/stripe-go/v76"
	portal "github.com/stripe/stripe-go/v76/billingportal/session"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Service handles Stripe subscription lifecycle for accounts
type Service struct {
	cfg config.BillingConfig
	db  *database.DB
}

func NewService(cfg config.BillingConfig, db *database.DB) *Service {
	stripe.Key = cfg.StripeSecretKey
	return &Service{cfg: cfg, db: db}
}

// CreateCheckoutSession starts a Stripe Checkout session for a plan
func (s *Service) CreateCheckoutSession(ctx context.Context, accountID, planCode string) (string, error) {
	var price string
	switch planCode {
	case "lite":
		price = s.cfg.PriceLiteMonthly
	case "pro":
		price = s.cfg.PriceProMonthly
	default:
		return "", errors.New("invalid plan_code")
	}
	if price == "" {
		return "", errors.New("price not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:         stripe.String(s.cfg.CheckoutCancelURL),
		ClientReferenceID: stripe.String(accountID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"account_id": accountID,
				"plan_code":  planCode,
			},
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Billing Portal session
func (s *Service) CreatePortalSession(ctx context.Context, stripeCustomerID string) (string, error) {
	if stripeCustomerID == "" {
		return "", errors.New("missing stripe_customer_id")
	}
	ps, err := portal.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(stripeCustomerID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return "", err
	}
	return ps.URL, nil
}

// HandleWebhook verifies and applies a Stripe event to the subscriptions
// table. Unknown event types are acknowledged and dropped.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.StripeWebhookSecret)
	if err != nil {
		return errors.New("invalid signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil
		}
		if sess.Subscription != nil && sess.Customer != nil {
			return s.db.Exec(ctx, `
				INSERT INTO subscriptions(account_id, plan_code, stripe_customer_id, stripe_subscription_id, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 'active', now(), now())
				ON CONFLICT (account_id) DO UPDATE SET
					stripe_customer_id = EXCLUDED.stripe_customer_id,
					stripe_subscription_id = EXCLUDED.stripe_subscription_id,
					status = 'active',
					updated_at = now()
			`, sess.ClientReferenceID, sess.Metadata["plan_code"], sess.Customer.ID, sess.Subscription.ID)
		}
		return s.db.Exec(ctx, `
			INSERT INTO subscriptions(account_id, plan_code, status, created_at, updated_at)
			VALUES ($1, $2, 'trialing', now(), now())
			ON CONFLICT (account_id) DO NOTHING
		`, sess.ClientReferenceID, sess.Metadata["plan_code"])

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil
		}
		return s.db.Exec(ctx, `
			UPDATE subscriptions SET plan_code=$1, status=$2,
				current_period_start=to_timestamp($3), current_period_end=to_timestamp($4),
				updated_at=now()
			WHERE stripe_subscription_id=$5 OR account_id=$6
		`, sub.Metadata["plan_code"], string(sub.Status),
			sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.ID, sub.Metadata["account_id"])

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil
		}
		return s.db.Exec(ctx,
			`UPDATE subscriptions SET status='canceled', updated_at=now() WHERE stripe_subscription_id=$1`,
			sub.ID)
	}

	logger.Debug("Ignoring stripe event", "type", event.Type)
	return nil
}
