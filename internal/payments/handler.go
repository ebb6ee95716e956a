package payments

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/middleware"
	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/pkg/response"
)

const defaultHistoryLimit = 10

// Handler handles manual renewal payment HTTP endpoints. These sit behind JWT
// but not the subscription gate: a lapsed tenant must still be able to pay.
type Handler struct {
	svc     *subscription.Service
	handles UPIHandles
	logger  *zap.Logger
}

// NewHandler creates a payments handler.
func NewHandler(svc *subscription.Service, handles UPIHandles, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, handles: handles, logger: logger}
}

// InitiateRequest is the body for POST /payments/initiate.
type InitiateRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	AmountCents   int    `json:"amount_cents" binding:"required,min=1"`
}

// Initiate handles POST /payments/initiate: records a pending payment and
// returns instructions for completing it out of band.
func (h *Handler) Initiate(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	payment, err := h.svc.Initiate(c.Request.Context(), restaurantID, req.PaymentMethod, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrInvalidMethod), errors.Is(err, subscription.ErrInvalidAmount):
			response.BadRequest(c, err.Error())
		case errors.Is(err, subscription.ErrRestaurantNotFound):
			response.NotFound(c, "restaurant not found")
		default:
			h.logger.Error("payment initiate failed", zap.Error(err))
			response.Internal(c, "failed to initiate payment")
		}
		return
	}

	response.Created(c, gin.H{
		"payment":      payment,
		"instructions": BuildInstructions(req.PaymentMethod, req.AmountCents, h.handles),
	})
}

// ConfirmRequest is the body for POST /payments/confirm. The route is
// gateway-facing (no tenant JWT), so the restaurant is named in the body;
// PaymentID pins the confirmation to the exact record created at initiation
// and the pending-status guard scopes what the callback can touch.
type ConfirmRequest struct {
	PaymentID     uuid.UUID `json:"payment_id" binding:"required"`
	RestaurantID  uuid.UUID `json:"restaurant_id" binding:"required"`
	PaymentStatus string    `json:"payment_status" binding:"required"`
	TransactionID string    `json:"transaction_id"`
}

// Confirm handles POST /payments/confirm.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.svc.Confirm(c.Request.Context(), req.RestaurantID, req.PaymentID, req.PaymentStatus, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrPaymentDenied):
			response.PaymentRequired(c, "payment was not successful", nil)
		case errors.Is(err, subscription.ErrPaymentNotFound):
			response.NotFound(c, "no matching pending payment")
		case errors.Is(err, subscription.ErrRestaurantNotFound):
			response.NotFound(c, "restaurant not found")
		default:
			h.logger.Error("payment confirm failed", zap.Error(err))
			response.Internal(c, "failed to confirm payment")
		}
		return
	}

	response.OK(c, gin.H{
		"subscription_status": result.Status,
		"subscription_expiry": result.Expiry,
		"days_remaining":      result.DaysRemaining,
	})
}

// Status handles GET /payments/subscription-status. Reachable by lapsed
// tenants so the dashboard can route them to renewal.
func (h *Handler) Status(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	status, expiry, err := h.svc.Ledger().GetStatus(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, subscription.ErrRestaurantNotFound) {
			response.NotFound(c, "restaurant not found")
			return
		}
		response.Internal(c, "failed to load subscription status")
		return
	}

	days := 0
	if expiry != nil && status == models.SubscriptionActive {
		days = subscription.DaysRemaining(*expiry, time.Now())
	}
	response.OK(c, gin.H{
		"subscription_status": status,
		"subscription_expiry": expiry,
		"days_remaining":      days,
	})
}

// History handles GET /payments/history?limit=N, newest first.
func (h *Handler) History(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.svc.PaymentHistory(c.Request.Context(), restaurantID, limit)
	if err != nil {
		h.logger.Error("payment history failed", zap.Error(err))
		response.Internal(c, "failed to load payment history")
		return
	}
	response.OK(c, list)
}
