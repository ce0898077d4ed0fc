package billing

// SubscriptionSortKey is the reserved sort-key sentinel that distinguishes a
// user's subscription record from ordinary entries in the same partition.
// Ordinary entry ids always contain '#', so the sentinel can never collide.
const SubscriptionSortKey = "SUBSCRIPTION"

// Subscription is the per-user billing record written by the Stripe webhook.
type Subscription struct {
	UserID           string `json:"userId"`
	SubscriptionType string `json:"subscriptionType"`
	Status           string `json:"status"`
	StripeCustomerID string `json:"stripeCustomerId,omitempty"`
	StripeSessionID  string `json:"stripeSessionId,omitempty"`
	LastEventID      string `json:"lastEventId,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
}

// FreeTier is the default returned when a user has no subscription record.
func FreeTier(userID string) Subscription {
	return Subscription{
		UserID:           userID,
		SubscriptionType: "free",
		Status:           "none",
	}
}

// PlanTypes accepted by checkout-session creation.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)
