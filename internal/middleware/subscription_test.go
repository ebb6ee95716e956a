package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/auth"
	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/pkg/response"
)

// stubStore backs the ledger with a single restaurant. The embedded interface
// panics on anything the gate should never call.
type stubStore struct {
	subscription.Store
	restaurant *models.Restaurant
}

func (s *stubStore) GetRestaurant(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if s.restaurant == nil || s.restaurant.ID != id {
		return nil, subscription.ErrRestaurantNotFound
	}
	cp := *s.restaurant
	return &cp, nil
}

func (s *stubStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	if s.restaurant == nil || s.restaurant.ID != id {
		return subscription.ErrRestaurantNotFound
	}
	s.restaurant.SubscriptionStatus = status
	return nil
}

func newGateRouter(store *stubStore, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("")
	protected.Use(JWT(jwtService))
	gated := protected.Group("")
	gated.Use(RequireActiveSubscription(subscription.NewLedger(store)))
	{
		gated.PUT("/restaurants/me", func(c *gin.Context) { response.OK(c, gin.H{"updated": true}) })
		gated.DELETE("/menu/items/x", RequireRole("admin"), func(c *gin.Context) { response.NoContent(c) })
	}
	return router
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGateDistinguishesAuthPaymentAndRole(t *testing.T) {
	restaurantID := uuid.New()
	userID := uuid.New()
	jwtService := auth.NewJWTService("test-secret", 1)

	adminToken, err := jwtService.Generate(userID, restaurantID, "owner@example.com", string(models.RoleAdmin))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	staffToken, err := jwtService.Generate(uuid.New(), restaurantID, "staff@example.com", string(models.RoleStaff))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	future := time.Now().Add(10 * 24 * time.Hour)

	t.Run("missing token is 401", func(t *testing.T) {
		store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &future}}
		w := doRequest(newGateRouter(store, jwtService), http.MethodPut, "/restaurants/me", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("past_due tenant is 402 with status payload", func(t *testing.T) {
		store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionPastDue}}
		w := doRequest(newGateRouter(store, jwtService), http.MethodPut, "/restaurants/me", adminToken)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402", w.Code)
		}
		var body response.Body
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		data, ok := body.Data.(map[string]interface{})
		if !ok || data["subscription_status"] != string(models.SubscriptionPastDue) {
			t.Fatalf("payload = %v, want subscription_status past_due", body.Data)
		}
	})

	t.Run("lapsed active tenant is demoted and 402", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &past}}
		w := doRequest(newGateRouter(store, jwtService), http.MethodPut, "/restaurants/me", adminToken)
		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("status = %d, want 402", w.Code)
		}
		if store.restaurant.SubscriptionStatus != models.SubscriptionExpired {
			t.Fatalf("status = %s, want expired persisted by the read", store.restaurant.SubscriptionStatus)
		}
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &future}}
		w := doRequest(newGateRouter(store, jwtService), http.MethodDelete, "/menu/items/x", staffToken)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("active admin passes", func(t *testing.T) {
		store := &stubStore{restaurant: &models.Restaurant{ID: restaurantID, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &future}}
		router := newGateRouter(store, jwtService)
		if w := doRequest(router, http.MethodPut, "/restaurants/me", adminToken); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if w := doRequest(router, http.MethodDelete, "/menu/items/x", adminToken); w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
	})
}
