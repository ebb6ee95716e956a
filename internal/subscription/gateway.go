package subscription

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/models"
)

// Gateway event types handled by the engine. Anything else is acknowledged
// upstream and ignored here.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// GatewayEvent is a billing-gateway webhook event reduced to the fields the
// engine acts on. Events correlate to a tenant via CustomerID, never via a
// local restaurant id.
type GatewayEvent struct {
	ID             string
	Type           string
	CustomerID     string
	SubscriptionID string
	Status         string // gateway subscription status, for subscription.updated
	CheckoutMode   string // for checkout.session.completed
	Raw            []byte
}

// ApplyGatewayEvent applies one gateway event to the ledger and appends an
// audit row. Transitions are plain status assignments, so redelivering the
// same event reapplies the same state (idempotent in effect); the audit trail
// may record the delivery twice. An event for an unknown customer is a no-op.
func (s *Service) ApplyGatewayEvent(ctx context.Context, evt GatewayEvent) error {
	switch evt.Type {
	case EventCheckoutCompleted:
		if evt.CheckoutMode != "subscription" {
			return nil
		}
		return s.applyTransition(ctx, evt, models.SubscriptionActive, evt.SubscriptionID)
	case EventInvoicePaid:
		return s.applyTransition(ctx, evt, models.SubscriptionActive, "")
	case EventInvoiceFailed:
		return s.applyTransition(ctx, evt, models.SubscriptionPastDue, "")
	case EventSubscriptionUpdated:
		return s.applyTransition(ctx, evt, models.ParseGatewayStatus(evt.Status), "")
	case EventSubscriptionDeleted:
		return s.applyTransition(ctx, evt, models.SubscriptionCanceled, "")
	default:
		s.logger.Debug("unhandled gateway event type", zap.String("type", evt.Type))
		return nil
	}
}

func (s *Service) applyTransition(ctx context.Context, evt GatewayEvent, status models.SubscriptionStatus, subscriptionID string) error {
	r, err := s.store.GetRestaurantByCustomerID(ctx, evt.CustomerID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			s.logger.Warn("gateway event for unknown customer",
				zap.String("type", evt.Type),
				zap.String("customer_id", evt.CustomerID),
			)
			return nil
		}
		return err
	}

	if subscriptionID != "" {
		if err := s.store.SetStripeSubscriptionID(ctx, r.ID, subscriptionID); err != nil {
			return err
		}
	}
	if err := s.ledger.SetStatus(ctx, r.ID, status); err != nil {
		return err
	}
	if err := s.store.InsertEvent(ctx, &models.SubscriptionEvent{
		RestaurantID:  r.ID,
		EventType:     evt.Type,
		StripeEventID: evt.ID,
		Data:          evt.Raw,
	}); err != nil {
		return err
	}

	s.logger.Info("gateway event applied",
		zap.String("type", evt.Type),
		zap.String("restaurant_id", r.ID.String()),
		zap.String("status", string(status)),
	)
	return nil
}
