package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/models"
)

// Ledger is the authoritative view of a restaurant's subscription status and
// expiry. Time passage is handled lazily: there is no background job, so a
// stored "active" with a past expiry is demoted to "expired" on read.
type Ledger struct {
	store Store
	now   func() time.Time
}

// NewLedger creates a subscription ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// GetStatus returns the current status and expiry for a restaurant. When the
// stored status is active but the expiry is strictly in the past, the status
// is demoted to expired and persisted before returning; a subsequent read
// sees expired already and does not write again.
func (l *Ledger) GetStatus(ctx context.Context, restaurantID uuid.UUID) (models.SubscriptionStatus, *time.Time, error) {
	r, err := l.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return "", nil, err
	}
	if r.SubscriptionStatus == models.SubscriptionActive &&
		r.SubscriptionExpiry != nil && r.SubscriptionExpiry.Before(l.now()) {
		if err := l.store.UpdateStatus(ctx, restaurantID, models.SubscriptionExpired); err != nil {
			return "", nil, err
		}
		return models.SubscriptionExpired, r.SubscriptionExpiry, nil
	}
	return r.SubscriptionStatus, r.SubscriptionExpiry, nil
}

// SetActive marks the subscription active with a new expiry.
func (l *Ledger) SetActive(ctx context.Context, restaurantID uuid.UUID, expiry time.Time) error {
	return l.store.UpdateSubscription(ctx, restaurantID, models.SubscriptionActive, &expiry)
}

// SetStatus sets the status only, leaving expiry untouched. Used for
// gateway-driven transitions like past_due and canceled.
func (l *Ledger) SetStatus(ctx context.Context, restaurantID uuid.UUID, status models.SubscriptionStatus) error {
	return l.store.UpdateStatus(ctx, restaurantID, status)
}
