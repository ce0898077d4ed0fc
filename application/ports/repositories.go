// Package ports defines the interfaces between the application services and
// the infrastructure that backs them.
package ports

import (
	"context"

	"lifelog-backend/domain/billing"
	"lifelog-backend/domain/entry"
)

// EntryRepository persists entries in the single-table keyspace.
// Implementations map conditional-write failures to the typed not-found /
// conflict errors in pkg/errors so the service layer stays store-agnostic.
type EntryRepository interface {
	// List returns up to limit entries for the user whose ids begin with the
	// entity type's prefix, most recent first.
	List(ctx context.Context, userID string, entityType entry.EntityType, limit int) ([]entry.Entry, error)

	// Get performs a point lookup. Returns a not-found error when absent.
	Get(ctx context.Context, userID, entryID string) (*entry.Entry, error)

	// Create writes the entry, conditioned on its id not existing.
	Create(ctx context.Context, e entry.Entry) error

	// Update applies the given fields plus updatedAt to an existing entry
	// and returns the updated item. Conditioned on existence; fields must be
	// non-empty and free of server-owned keys.
	Update(ctx context.Context, userID, entryID string, fields map[string]any, updatedAt string) (*entry.Entry, error)

	// Delete removes the entry, conditioned on existence.
	Delete(ctx context.Context, userID, entryID string) error
}

// SubscriptionRepository persists per-user billing records and webhook
// event markers in the same table.
type SubscriptionRepository interface {
	// Get returns the user's subscription record, or nil when absent.
	Get(ctx context.Context, userID string) (*billing.Subscription, error)

	// Put writes or replaces the subscription record.
	Put(ctx context.Context, sub billing.Subscription) error

	// EventProcessed reports whether a webhook event id has already been
	// applied.
	EventProcessed(ctx context.Context, eventID string) (bool, error)

	// MarkEventProcessed records a webhook event id, conditioned on it not
	// having been seen. Returns a conflict error on repeat delivery.
	MarkEventProcessed(ctx context.Context, eventID string) error
}

// CheckoutGateway creates payment sessions with the billing provider.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutRequest carries everything needed to start a checkout.
type CheckoutRequest struct {
	UserID     string
	PriceID    string
	PlanType   string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider-issued session the UI redirects to.
type CheckoutSession struct {
	ID  string
	URL string
}
