package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/application/services"
	"lifelog-backend/pkg/auth"
	"lifelog-backend/pkg/common"
	apperrors "lifelog-backend/pkg/errors"
	"lifelog-backend/pkg/utils"
)

// maxWebhookBytes caps the raw webhook payload read for signature checking.
const maxWebhookBytes = 64 * 1024

// WebhookVerifier validates a Stripe webhook signature over the raw payload.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (stripe.Event, error)
}

// BillingHandler serves checkout-session creation, subscription lookup and
// the Stripe webhook.
type BillingHandler struct {
	service  *services.BillingService
	verifier WebhookVerifier
	logger   *zap.Logger
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(service *services.BillingService, verifier WebhookVerifier, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{service: service, verifier: verifier, logger: logger}
}

// CreateCheckoutRequest is the body of POST /api/stripe/create-checkout.
type CreateCheckoutRequest struct {
	PriceID    string `json:"priceId" validate:"required"`
	PlanType   string `json:"planType" validate:"required,oneof=monthly yearly"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
}

// CreateCheckout handles POST /api/stripe/create-checkout.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateCheckoutRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), ports.CheckoutRequest{
		UserID:     user.UserID,
		PriceID:    req.PriceID,
		PlanType:   req.PlanType,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// GetSubscription handles GET /api/user/subscription, defaulting to the free
// tier when the user has no subscription record.
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sub, err := h.service.GetSubscription(r.Context(), user.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"subscriptionType": sub.SubscriptionType,
		"status":           sub.Status,
		"updatedAt":        sub.UpdatedAt,
	})
}

// Webhook handles POST /api/stripe/webhook. The signature must validate
// before anything is processed; repeated delivery of the same event id is
// acknowledged without being reapplied.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "Failed to read payload")
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		common.RespondError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.logger.Error("failed to parse checkout session from event",
				zap.Error(err),
				zap.String("eventId", event.ID),
			)
			common.RespondError(w, http.StatusBadRequest, "Malformed event payload")
			return
		}
		customerID := ""
		if session.Customer != nil {
			customerID = session.Customer.ID
		}
		err := h.service.ApplyCheckoutCompleted(
			r.Context(),
			event.ID,
			session.Metadata["userId"],
			session.Metadata["planType"],
			session.ID,
			customerID,
		)
		if err != nil {
			h.respondError(w, err)
			return
		}
	default:
		h.logger.Debug("ignoring webhook event",
			zap.String("eventId", event.ID),
			zap.String("type", string(event.Type)),
		)
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{"received": true})
}

func (h *BillingHandler) respondError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		h.logger.Error("unclassified billing error", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	switch appErr.Type {
	case apperrors.ErrorTypeDatabase, apperrors.ErrorTypeInternal, apperrors.ErrorTypeNotConfigured:
		h.logger.Error("internal billing error", zap.Error(appErr))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
	case apperrors.ErrorTypeExternal:
		h.logger.Error("stripe error", zap.Error(appErr))
		common.RespondError(w, http.StatusBadGateway, "Payment provider error")
	default:
		common.RespondError(w, appErr.HTTPStatus, appErr.Message)
	}
}
