package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeService keeps subscription status in sync with Stripe. Checkout
// creates the subscription; the webhook flips subscription_status.
type StripeService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewStripeService(cfg *config.Config, userRepo repository.UserRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, userRepo: userRepo, logger: lg}
}

func (s *StripeService) configured() bool {
	return s.cfg.StripeSecretKey != "" && s.cfg.StripePriceMonthly != ""
}

// getOrCreateCustomer ensures a Stripe customer exists for the user.
func (s *StripeService) getOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Metadata: map[string]string{"user_id": user.ID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a subscription checkout session and returns
// its URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if !s.configured() {
		return "", ErrBillingNotConfigured
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	customerID, err := s.getOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	sessParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.StripePriceMonthly), Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.StripeReturnURL + "?status=success"),
		CancelURL:  stripe.String(s.cfg.StripeReturnURL + "?status=cancel"),
		Metadata:   map[string]string{"user_id": userID},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies and processes Stripe webhook events.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		if err := s.setStatusFromEvent(ctx, cs.Metadata, customerIDOf(cs.Customer), "active"); err != nil {
			s.logger.Error().Err(err).Msg("Failed to activate subscription")
			http.Error(w, "failed to update subscription", http.StatusInternalServerError)
			return
		}
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		if err := s.setStatusFromEvent(ctx, sub.Metadata, customerIDOf(sub.Customer), "inactive"); err != nil {
			s.logger.Error().Err(err).Msg("Failed to deactivate subscription")
			http.Error(w, "failed to update subscription", http.StatusInternalServerError)
			return
		}
	default:
		// Other event types are acknowledged without action.
	}
	w.WriteHeader(http.StatusOK)
}

func customerIDOf(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func (s *StripeService) setStatusFromEvent(ctx context.Context, metadata map[string]string, customerID, status string) error {
	userID := metadata["user_id"]
	if userID == "" {
		if customerID == "" {
			return fmt.Errorf("cannot determine user: missing metadata and customer id")
		}
		u, err := s.userRepo.GetUserByStripeCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("no user found for customer ID: %s", customerID)
		}
		userID = u.ID
	}
	return s.userRepo.UpdateSubscriptionStatus(ctx, userID, status)
}
