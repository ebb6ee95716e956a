package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/pkg/response"
)

const maxPayloadBytes = 1 << 20

// Handler receives billing-gateway webhooks. Delivery is at-least-once, so
// every handled event is acknowledged with 200 even when it is a no-op;
// only signature failures and internal errors are non-2xx (the gateway
// retries those).
type Handler struct {
	svc       *subscription.Service
	secret    string
	tolerance time.Duration
	logger    *zap.Logger
}

// NewHandler creates a webhooks handler.
func NewHandler(svc *subscription.Service, webhookSecret string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, secret: webhookSecret, tolerance: DefaultTolerance, logger: logger}
}

// event mirrors the slice of the gateway event envelope this service reads.
type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			Customer     string `json:"customer"`
			Subscription string `json:"subscription"`
			Status       string `json:"status"`
			Mode         string `json:"mode"`
		} `json:"object"`
	} `json:"data"`
}

// Receive handles POST /webhooks/billing. The raw body is read before any
// parsing because the signature covers the exact bytes sent.
func (h *Handler) Receive(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		response.BadRequest(c, "unreadable payload")
		return
	}

	if h.secret != "" {
		sig := c.GetHeader("Stripe-Signature")
		if err := VerifySignature(payload, sig, h.secret, h.tolerance, time.Now()); err != nil {
			h.logger.Warn("webhook signature rejected", zap.Error(err))
			response.BadRequest(c, "invalid signature")
			return
		}
	}

	var evt event
	if err := json.Unmarshal(payload, &evt); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	gw := subscription.GatewayEvent{
		ID:             evt.ID,
		Type:           evt.Type,
		CustomerID:     evt.Data.Object.Customer,
		SubscriptionID: evt.Data.Object.Subscription,
		Status:         evt.Data.Object.Status,
		CheckoutMode:   evt.Data.Object.Mode,
		Raw:            payload,
	}
	if err := h.svc.ApplyGatewayEvent(c.Request.Context(), gw); err != nil {
		h.logger.Error("webhook apply failed", zap.Error(err), zap.String("event_id", evt.ID), zap.String("type", evt.Type))
		response.Internal(c, "failed to process event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
