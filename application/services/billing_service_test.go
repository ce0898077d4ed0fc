package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/infrastructure/persistence/memory"
	apperrors "lifelog-backend/pkg/errors"
)

type fakeCheckoutGateway struct {
	lastReq ports.CheckoutRequest
	err     error
}

func (g *fakeCheckoutGateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &ports.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

func newTestBillingService(t *testing.T) (*BillingService, *fakeCheckoutGateway, *memory.SubscriptionRepository) {
	t.Helper()
	gw := &fakeCheckoutGateway{}
	subs := memory.NewSubscriptionRepository()
	return NewBillingService(gw, subs, zap.NewNop()), gw, subs
}

func TestCreateCheckoutPassesRequestThrough(t *testing.T) {
	svc, gw, _ := newTestBillingService(t)

	session, err := svc.CreateCheckout(context.Background(), ports.CheckoutRequest{
		UserID:     "user-1",
		PriceID:    "price_123",
		PlanType:   "monthly",
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "user-1", gw.lastReq.UserID)
	assert.Equal(t, "monthly", gw.lastReq.PlanType)
}

func TestGetSubscriptionDefaultsToFreeTier(t *testing.T) {
	svc, _, _ := newTestBillingService(t)

	sub, err := svc.GetSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "free", sub.SubscriptionType)
	assert.Equal(t, "none", sub.Status)
}

func TestApplyCheckoutCompleted(t *testing.T) {
	svc, _, _ := newTestBillingService(t)
	ctx := context.Background()

	err := svc.ApplyCheckoutCompleted(ctx, "evt_1", "user-1", "yearly", "cs_1", "cus_1")
	require.NoError(t, err)

	sub, err := svc.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "yearly", sub.SubscriptionType)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "evt_1", sub.LastEventID)
}

func TestApplyCheckoutCompletedIdempotentByEventID(t *testing.T) {
	svc, _, subs := newTestBillingService(t)
	ctx := context.Background()

	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, "evt_1", "user-1", "monthly", "cs_1", "cus_1"))

	// simulate a state change between deliveries so a reapply would be visible
	existing, err := subs.Get(ctx, "user-1")
	require.NoError(t, err)
	existing.SubscriptionType = "yearly"
	require.NoError(t, subs.Put(ctx, *existing))

	// repeat delivery of the same event is acknowledged without reapplying
	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, "evt_1", "user-1", "monthly", "cs_1", "cus_1"))

	sub, err := svc.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "yearly", sub.SubscriptionType)
}

func TestApplyCheckoutCompletedRetriesAfterStoreFailure(t *testing.T) {
	svc, _, subs := newTestBillingService(t)
	ctx := context.Background()

	subs.FailWith(errors.New("throttled"))
	err := svc.ApplyCheckoutCompleted(ctx, "evt_1", "user-1", "monthly", "cs_1", "cus_1")
	require.Error(t, err, "failed delivery must surface so Stripe retries")

	// the retry after the store recovers must still apply the subscription
	subs.FailWith(nil)
	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, "evt_1", "user-1", "monthly", "cs_1", "cus_1"))

	sub, err := svc.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "monthly", sub.SubscriptionType)
	assert.Equal(t, "active", sub.Status)
}

func TestApplyCheckoutCompletedRequiresUserID(t *testing.T) {
	svc, _, subs := newTestBillingService(t)

	err := svc.ApplyCheckoutCompleted(context.Background(), "evt_1", "", "monthly", "cs_1", "cus_1")
	assert.True(t, apperrors.IsValidation(err))

	// the event must not be marked processed when rejected
	assert.NoError(t, subs.MarkEventProcessed(context.Background(), "evt_1"))
}
