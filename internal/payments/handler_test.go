package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/middleware"
	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/internal/subscription"
)

// stubStore holds one restaurant and one payment. The embedded interface
// panics on anything these handlers should never call.
type stubStore struct {
	subscription.Store
	restaurant *models.Restaurant
	payment    *models.SubscriptionPayment
	lastLimit  int
}

func (s *stubStore) GetRestaurant(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if s.restaurant == nil || s.restaurant.ID != id {
		return nil, subscription.ErrRestaurantNotFound
	}
	cp := *s.restaurant
	return &cp, nil
}

func (s *stubStore) GetPendingPayment(_ context.Context, restaurantID, paymentID uuid.UUID) (*models.SubscriptionPayment, error) {
	p := s.payment
	if p == nil || p.ID != paymentID || p.RestaurantID != restaurantID || p.PaymentStatus != models.PaymentStatusPending {
		return nil, subscription.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) SettlePayment(_ context.Context, paymentID uuid.UUID, status, transactionID string, expiry *time.Time) error {
	if s.payment == nil || s.payment.ID != paymentID || s.payment.PaymentStatus != models.PaymentStatusPending {
		return subscription.ErrPaymentNotFound
	}
	s.payment.PaymentStatus = status
	s.payment.TransactionID = transactionID
	if expiry != nil {
		s.payment.SubscriptionExpiry = expiry
	}
	return nil
}

func (s *stubStore) UpdateSubscription(_ context.Context, id uuid.UUID, status models.SubscriptionStatus, expiry *time.Time) error {
	if s.restaurant == nil || s.restaurant.ID != id {
		return subscription.ErrRestaurantNotFound
	}
	s.restaurant.SubscriptionStatus = status
	s.restaurant.SubscriptionExpiry = expiry
	return nil
}

func (s *stubStore) ListPayments(_ context.Context, _ uuid.UUID, limit int) ([]models.SubscriptionPayment, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *stubStore) WithRestaurantLock(_ context.Context, restaurantID uuid.UUID, fn func(subscription.Store) error) error {
	if s.restaurant == nil || s.restaurant.ID != restaurantID {
		return subscription.ErrRestaurantNotFound
	}
	return fn(s)
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// The confirm route carries no tenant JWT: the gateway callback names the
// restaurant in the body and is scoped by the payment-id + pending guard.
func TestConfirmWithoutAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &stubStore{
		restaurant: &models.Restaurant{ID: uuid.New(), SubscriptionStatus: models.SubscriptionExpired},
		payment: &models.SubscriptionPayment{
			ID:            uuid.New(),
			PaymentStatus: models.PaymentStatusPending,
		},
	}
	store.payment.RestaurantID = store.restaurant.ID
	h := NewHandler(subscription.NewService(store, nil), UPIHandles{}, nil)

	router := gin.New()
	router.POST("/payments/confirm", h.Confirm)

	w := postJSON(router, "/payments/confirm", gin.H{
		"payment_id":     store.payment.ID,
		"restaurant_id":  store.restaurant.ID,
		"payment_status": models.PaymentStatusSuccess,
		"transaction_id": "TXN1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if store.restaurant.SubscriptionStatus != models.SubscriptionActive {
		t.Fatalf("subscription status = %s, want active", store.restaurant.SubscriptionStatus)
	}
	if store.payment.PaymentStatus != models.PaymentStatusSuccess || store.payment.TransactionID != "TXN1" {
		t.Fatalf("payment not settled: %+v", store.payment)
	}
}

func TestConfirmUnknownPaymentIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &stubStore{
		restaurant: &models.Restaurant{ID: uuid.New(), SubscriptionStatus: models.SubscriptionActive},
	}
	h := NewHandler(subscription.NewService(store, nil), UPIHandles{}, nil)

	router := gin.New()
	router.POST("/payments/confirm", h.Confirm)

	w := postJSON(router, "/payments/confirm", gin.H{
		"payment_id":     uuid.New(),
		"restaurant_id":  store.restaurant.ID,
		"payment_status": models.PaymentStatusSuccess,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHistoryDefaultsToTenRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restaurantID := uuid.New()
	store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionActive}}
	h := NewHandler(subscription.NewService(store, nil), UPIHandles{}, nil)

	router := gin.New()
	router.GET("/payments/history", func(c *gin.Context) {
		c.Set(middleware.ContextRestaurantID, restaurantID)
		h.History(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/payments/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if store.lastLimit != 10 {
		t.Fatalf("limit = %d, want 10 by default", store.lastLimit)
	}
}
