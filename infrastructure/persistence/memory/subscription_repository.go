package memory

import (
	"context"
	"sync"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/billing"
	apperrors "lifelog-backend/pkg/errors"
)

// SubscriptionRepository is a map-backed ports.SubscriptionRepository.
type SubscriptionRepository struct {
	mu      sync.Mutex
	subs    map[string]billing.Subscription
	events  map[string]bool
	failure error
}

// NewSubscriptionRepository creates an empty in-memory repository.
func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{
		subs:   make(map[string]billing.Subscription),
		events: make(map[string]bool),
	}
}

// FailWith makes every subsequent write return err. Pass nil to heal.
func (r *SubscriptionRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure = err
}

func (r *SubscriptionRepository) Get(ctx context.Context, userID string) (*billing.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Put(ctx context.Context, sub billing.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	r.subs[sub.UserID] = sub
	return nil
}

func (r *SubscriptionRepository) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[eventID], nil
}

func (r *SubscriptionRepository) MarkEventProcessed(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return r.failure
	}
	if r.events[eventID] {
		return apperrors.NewConflictError("event already processed")
	}
	r.events[eventID] = true
	return nil
}

var _ ports.SubscriptionRepository = (*SubscriptionRepository)(nil)
