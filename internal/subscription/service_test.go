package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/models"
)

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return now }
	svc.ledger.now = svc.now
	return svc
}

func TestInitiateCreatesPendingPayment(t *testing.T) {
	store := newFakeStore()
	r := store.addRestaurant(models.SubscriptionActive, nil, "")
	now := time.Now()
	svc := newTestService(store, now)

	p, err := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if p.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("status = %s, want pending", p.PaymentStatus)
	}
	if p.SubscriptionExpiry == nil || !p.SubscriptionExpiry.Equal(now.Add(RenewalPeriod)) {
		t.Fatalf("provisional expiry = %v, want now+30d", p.SubscriptionExpiry)
	}
	// Initiation must not touch the ledger.
	got := store.restaurants[r.ID]
	if got.SubscriptionExpiry != nil {
		t.Fatalf("ledger expiry mutated on initiate")
	}
}

func TestInitiateValidation(t *testing.T) {
	store := newFakeStore()
	r := store.addRestaurant(models.SubscriptionActive, nil, "")
	svc := newTestService(store, time.Now())

	if _, err := svc.Initiate(context.Background(), r.ID, "card", 50000); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("err = %v, want ErrInvalidMethod", err)
	}
	if _, err := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Initiate(context.Background(), uuid.New(), models.PaymentMethodUPI, 50000); !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
	}
}

func TestConfirmStacksOntoUnexpiredSubscription(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	current := now.Add(10 * 24 * time.Hour)
	r := store.addRestaurant(models.SubscriptionActive, &current, "")
	svc := newTestService(store, now)

	p, err := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	res, err := svc.Confirm(context.Background(), r.ID, p.ID, models.PaymentStatusSuccess, "TXN1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	want := current.Add(RenewalPeriod)
	if !res.Expiry.Equal(want) {
		t.Fatalf("expiry = %v, want current+30d (%v)", res.Expiry, want)
	}
	if res.Status != models.SubscriptionActive {
		t.Fatalf("status = %s, want active", res.Status)
	}
	if res.DaysRemaining != 40 {
		t.Fatalf("days remaining = %d, want 40", res.DaysRemaining)
	}
	if got := store.payments[p.ID]; got.PaymentStatus != models.PaymentStatusSuccess || !got.SubscriptionExpiry.Equal(want) {
		t.Fatalf("payment not settled with confirmed expiry: %+v", got)
	}
}

func TestConfirmRestartsFromNowWhenExpired(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	past := now.Add(-5 * 24 * time.Hour)
	r := store.addRestaurant(models.SubscriptionExpired, &past, "")
	svc := newTestService(store, now)

	p, _ := svc.Initiate(context.Background(), r.ID, models.PaymentMethodNetBanking, 50000)
	res, err := svc.Confirm(context.Background(), r.ID, p.ID, models.PaymentStatusSuccess, "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	want := now.Add(RenewalPeriod)
	if !res.Expiry.Equal(want) {
		t.Fatalf("expiry = %v, want now+30d (%v)", res.Expiry, want)
	}
	if res.DaysRemaining != 30 {
		t.Fatalf("days remaining = %d, want 30", res.DaysRemaining)
	}
}

func TestConfirmFailedLeavesLedgerUntouched(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	current := now.Add(10 * 24 * time.Hour)
	r := store.addRestaurant(models.SubscriptionActive, &current, "")
	svc := newTestService(store, now)

	p, _ := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)
	_, err := svc.Confirm(context.Background(), r.ID, p.ID, models.PaymentStatusFailed, "")
	if !errors.Is(err, ErrPaymentDenied) {
		t.Fatalf("err = %v, want ErrPaymentDenied", err)
	}

	got := store.restaurants[r.ID]
	if got.SubscriptionStatus != models.SubscriptionActive || !got.SubscriptionExpiry.Equal(current) {
		t.Fatalf("ledger mutated by failed confirm: %+v", got)
	}
	if n := store.countPayments(models.PaymentStatusFailed); n != 1 {
		t.Fatalf("failed payments = %d, want exactly 1", n)
	}
}

func TestConfirmUnknownPayment(t *testing.T) {
	store := newFakeStore()
	r := store.addRestaurant(models.SubscriptionActive, nil, "")
	svc := newTestService(store, time.Now())

	if _, err := svc.Confirm(context.Background(), r.ID, uuid.New(), models.PaymentStatusSuccess, ""); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestConfirmConsumesPendingRecord(t *testing.T) {
	store := newFakeStore()
	r := store.addRestaurant(models.SubscriptionActive, nil, "")
	svc := newTestService(store, time.Now())

	p, _ := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)
	if _, err := svc.Confirm(context.Background(), r.ID, p.ID, models.PaymentStatusSuccess, ""); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	// The record is terminal; a second confirmation must not find it.
	if _, err := svc.Confirm(context.Background(), r.ID, p.ID, models.PaymentStatusSuccess, ""); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound on re-confirm", err)
	}
}

func TestConcurrentConfirmsStackBothExtensions(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	base := now.Add(10 * 24 * time.Hour)
	r := store.addRestaurant(models.SubscriptionActive, &base, "")
	svc := newTestService(store, now)

	p1, _ := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)
	p2, _ := svc.Initiate(context.Background(), r.ID, models.PaymentMethodUPI, 50000)

	var wg sync.WaitGroup
	for _, p := range []*models.SubscriptionPayment{p1, p2} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := svc.Confirm(context.Background(), r.ID, id, models.PaymentStatusSuccess, ""); err != nil {
				t.Errorf("Confirm: %v", err)
			}
		}(p.ID)
	}
	wg.Wait()

	want := base.Add(2 * RenewalPeriod)
	got := store.restaurants[r.ID].SubscriptionExpiry
	if got == nil || !got.Equal(want) {
		t.Fatalf("expiry = %v, want base+60d (%v); one extension was lost", got, want)
	}
}
