package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/models"
)

// fakeStore is an in-memory Store. lockMu stands in for the per-restaurant
// row lock: WithRestaurantLock holds it for the whole callback, so concurrent
// renewals serialize exactly as they would against PostgreSQL.
type fakeStore struct {
	mu     sync.Mutex
	lockMu sync.Mutex

	restaurants map[uuid.UUID]*models.Restaurant
	payments    map[uuid.UUID]*models.SubscriptionPayment
	events      []models.SubscriptionEvent

	statusWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		restaurants: map[uuid.UUID]*models.Restaurant{},
		payments:    map[uuid.UUID]*models.SubscriptionPayment{},
	}
}

func (f *fakeStore) addRestaurant(status models.SubscriptionStatus, expiry *time.Time, customerID string) *models.Restaurant {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &models.Restaurant{
		ID:                 uuid.New(),
		Name:               "Test Kitchen",
		Slug:               "test-kitchen-abc12",
		OwnerEmail:         "owner@example.com",
		SubscriptionStatus: status,
		SubscriptionExpiry: expiry,
		StripeCustomerID:   customerID,
	}
	f.restaurants[r.ID] = r
	return r
}

func (f *fakeStore) GetRestaurant(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetRestaurantByCustomerID(_ context.Context, customerID string) (*models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.restaurants {
		if r.StripeCustomerID != "" && r.StripeCustomerID == customerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrRestaurantNotFound
}

func (f *fakeStore) UpdateSubscription(_ context.Context, id uuid.UUID, status models.SubscriptionStatus, expiry *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return ErrRestaurantNotFound
	}
	r.SubscriptionStatus = status
	r.SubscriptionExpiry = expiry
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return ErrRestaurantNotFound
	}
	r.SubscriptionStatus = status
	r.UpdatedAt = time.Now()
	f.statusWrites++
	return nil
}

func (f *fakeStore) SetStripeSubscriptionID(_ context.Context, id uuid.UUID, subscriptionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return ErrRestaurantNotFound
	}
	r.StripeSubscriptionID = subscriptionID
	return nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p *models.SubscriptionPayment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	p.PaymentDate = time.Now()
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPendingPayment(_ context.Context, restaurantID, paymentID uuid.UUID) (*models.SubscriptionPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok || p.RestaurantID != restaurantID || p.PaymentStatus != models.PaymentStatusPending {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SettlePayment(_ context.Context, paymentID uuid.UUID, status, transactionID string, expiry *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok || p.PaymentStatus != models.PaymentStatusPending {
		return ErrPaymentNotFound
	}
	p.PaymentStatus = status
	p.TransactionID = transactionID
	if expiry != nil {
		p.SubscriptionExpiry = expiry
	}
	return nil
}

func (f *fakeStore) ListPayments(_ context.Context, restaurantID uuid.UUID, limit int) ([]models.SubscriptionPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.SubscriptionPayment
	for _, p := range f.payments {
		if p.RestaurantID == restaurantID {
			list = append(list, *p)
		}
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeStore) InsertEvent(_ context.Context, e *models.SubscriptionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeStore) WithRestaurantLock(_ context.Context, restaurantID uuid.UUID, fn func(Store) error) error {
	f.lockMu.Lock()
	defer f.lockMu.Unlock()
	f.mu.Lock()
	_, ok := f.restaurants[restaurantID]
	f.mu.Unlock()
	if !ok {
		return ErrRestaurantNotFound
	}
	return fn(f)
}

func (f *fakeStore) countPayments(status string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.payments {
		if p.PaymentStatus == status {
			n++
		}
	}
	return n
}
