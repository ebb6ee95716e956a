package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/menumesa/backend/internal/models"
)

var (
	// ErrRestaurantNotFound means no restaurant matches the given key.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrPaymentNotFound means no pending payment matches the given key.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Store is the persistence contract for the subscription ledger, payment
// records and gateway audit events.
type Store interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetRestaurantByCustomerID(ctx context.Context, customerID string) (*models.Restaurant, error)

	// UpdateSubscription sets status and expiry together and bumps updated_at.
	UpdateSubscription(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus, expiry *time.Time) error
	// UpdateStatus sets the status only, leaving expiry untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error
	SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, subscriptionID string) error

	CreatePayment(ctx context.Context, p *models.SubscriptionPayment) error
	// GetPendingPayment returns the payment only if it belongs to the
	// restaurant and is still pending.
	GetPendingPayment(ctx context.Context, restaurantID, paymentID uuid.UUID) (*models.SubscriptionPayment, error)
	// SettlePayment moves a pending payment to a terminal status.
	SettlePayment(ctx context.Context, paymentID uuid.UUID, status, transactionID string, expiry *time.Time) error
	ListPayments(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.SubscriptionPayment, error)

	InsertEvent(ctx context.Context, e *models.SubscriptionEvent) error

	// WithRestaurantLock runs fn within a transaction holding a row lock on
	// the restaurant, serializing concurrent renewals for the same tenant.
	// The Store passed to fn operates inside that transaction.
	WithRestaurantLock(ctx context.Context, restaurantID uuid.UUID, fn func(Store) error) error
}
