package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/billing"
	"lifelog-backend/domain/entry"
	apperrors "lifelog-backend/pkg/errors"
)

// BillingService owns checkout-session creation and webhook-driven
// subscription updates.
type BillingService struct {
	checkout ports.CheckoutGateway
	subs     ports.SubscriptionRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewBillingService creates a billing service.
func NewBillingService(checkout ports.CheckoutGateway, subs ports.SubscriptionRepository, logger *zap.Logger) *BillingService {
	return &BillingService{
		checkout: checkout,
		subs:     subs,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateCheckout starts a checkout session for the authenticated user. The
// user id and plan ride along in session metadata so the webhook can
// attribute the completed checkout.
func (s *BillingService) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	session, err := s.checkout.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checkout session created",
		zap.String("userId", req.UserID),
		zap.String("planType", req.PlanType),
		zap.String("sessionId", session.ID),
	)
	return session, nil
}

// GetSubscription returns the user's subscription, defaulting to the free
// tier when no record exists.
func (s *BillingService) GetSubscription(ctx context.Context, userID string) (billing.Subscription, error) {
	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		return billing.Subscription{}, err
	}
	if sub == nil {
		return billing.FreeTier(userID), nil
	}
	return *sub, nil
}

// ApplyCheckoutCompleted upserts the subscription record for a completed
// checkout. Processing is idempotent by event id: a repeat delivery of the
// same Stripe event is acknowledged without reapplying. The marker is only
// written after a successful upsert, so a delivery that fails mid-way leaves
// no marker and the retry applies the subscription; the upsert is
// deterministic per event, so the rare concurrent double-apply is harmless.
func (s *BillingService) ApplyCheckoutCompleted(ctx context.Context, eventID, userID, planType, sessionID, customerID string) error {
	if userID == "" {
		return apperrors.NewValidationError("checkout session missing userId metadata")
	}
	processed, err := s.subs.EventProcessed(ctx, eventID)
	if err != nil {
		return err
	}
	if processed {
		s.logger.Info("duplicate webhook event ignored", zap.String("eventId", eventID))
		return nil
	}
	sub := billing.Subscription{
		UserID:           userID,
		SubscriptionType: planType,
		Status:           "active",
		StripeSessionID:  sessionID,
		StripeCustomerID: customerID,
		LastEventID:      eventID,
		UpdatedAt:        entry.Timestamp(s.now()),
	}
	if err := s.subs.Put(ctx, sub); err != nil {
		return err
	}
	if err := s.subs.MarkEventProcessed(ctx, eventID); err != nil {
		if apperrors.IsConflict(err) {
			s.logger.Info("concurrent duplicate webhook event", zap.String("eventId", eventID))
			return nil
		}
		return err
	}
	s.logger.Info("subscription updated",
		zap.String("userId", userID),
		zap.String("planType", planType),
		zap.String("eventId", eventID),
	)
	return nil
}
