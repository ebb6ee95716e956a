package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/pkg/response"
)

// RequireActiveSubscription gates paid features. It reads the ledger after
// authentication, so an active status past its expiry is demoted before the
// check. Non-active tenants get 402 with their current status, which is
// distinct from 401 (no credentials) and 403 (wrong role).
func RequireActiveSubscription(ledger *subscription.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := RestaurantID(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		status, expiry, err := ledger.GetStatus(c.Request.Context(), restaurantID)
		if err != nil {
			if errors.Is(err, subscription.ErrRestaurantNotFound) {
				response.Unauthorized(c, "unknown restaurant")
			} else {
				response.Internal(c, "failed to check subscription")
			}
			c.Abort()
			return
		}
		if status != models.SubscriptionActive {
			response.PaymentRequired(c, "subscription required", gin.H{
				"subscription_status": status,
				"subscription_expiry": expiry,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
