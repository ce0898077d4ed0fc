// Package billing implements the checkout gateway and webhook verification
// against Stripe.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v78"
	stripeclient "github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	apperrors "lifelog-backend/pkg/errors"
)

// StripeGateway creates checkout sessions through the Stripe API.
type StripeGateway struct {
	api    *stripeclient.API
	logger *zap.Logger
}

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, logger: logger}
}

// CreateCheckoutSession starts a subscription-mode checkout. The user id and
// plan type ride in both session and subscription metadata so the webhook
// can attribute the completed checkout without another lookup.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"userId":   req.UserID,
				"planType": req.PlanType,
			},
		},
	}
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("planType", req.PlanType)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("stripe checkout session creation failed",
			zap.Error(err),
			zap.String("userId", req.UserID),
			zap.String("priceId", req.PriceID),
		)
		return nil, apperrors.NewExternalError("stripe", err)
	}
	return &ports.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

var _ ports.CheckoutGateway = (*StripeGateway)(nil)

// WebhookVerifier checks Stripe webhook signatures against the shared
// signing secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the given signing secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify validates the Stripe-Signature header over the raw payload and
// returns the parsed event. Failure means the event must not be processed.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
