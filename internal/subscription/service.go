package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/models"
)

var (
	// ErrInvalidMethod means the payment method is not upi or netbanking.
	ErrInvalidMethod = errors.New("invalid payment method")
	// ErrInvalidAmount means the amount is below one minor currency unit.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPaymentDenied means the gateway reported the payment as failed. The
	// payment record is settled as failed and the ledger is untouched.
	ErrPaymentDenied = errors.New("payment denied")
)

// Service is the payment reconciliation engine: it owns the manual
// initiate/confirm flow and the gateway webhook transitions, converging on
// the same extension policy.
type Service struct {
	store  Store
	ledger *Ledger
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the reconciliation engine.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, ledger: NewLedger(store), logger: logger, now: time.Now}
}

// Ledger exposes the subscription ledger backed by the same store.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Initiate records a pending renewal payment for the restaurant. The stored
// expiry is provisional; the authoritative expiry is computed at confirmation.
// The ledger is not touched here.
func (s *Service) Initiate(ctx context.Context, restaurantID uuid.UUID, method string, amountCents int) (*models.SubscriptionPayment, error) {
	if method != models.PaymentMethodUPI && method != models.PaymentMethodNetBanking {
		return nil, ErrInvalidMethod
	}
	if amountCents < 1 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	provisional := s.now().Add(RenewalPeriod)
	p := &models.SubscriptionPayment{
		RestaurantID:       restaurantID,
		AmountCents:        amountCents,
		PaymentMethod:      method,
		PaymentStatus:      models.PaymentStatusPending,
		SubscriptionExpiry: &provisional,
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment initiated",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("payment_id", p.ID.String()),
		zap.String("method", method),
		zap.Int("amount_cents", amountCents),
	)
	return p, nil
}

// ConfirmResult is the outcome of a successful confirmation.
type ConfirmResult struct {
	Status        models.SubscriptionStatus
	Expiry        time.Time
	DaysRemaining int
}

// Confirm settles the pending payment identified by paymentID. On success the
// extension policy runs inside a per-restaurant row lock: reading the current
// expiry, computing the new one and writing payment + ledger are one
// transaction, so two concurrent confirms stack rather than overwrite.
// Any paymentStatus other than "success" settles the payment as failed and
// returns ErrPaymentDenied with the ledger untouched.
func (s *Service) Confirm(ctx context.Context, restaurantID, paymentID uuid.UUID, paymentStatus, transactionID string) (*ConfirmResult, error) {
	if paymentStatus != models.PaymentStatusSuccess {
		p, err := s.store.GetPendingPayment(ctx, restaurantID, paymentID)
		if err != nil {
			return nil, err
		}
		if err := s.store.SettlePayment(ctx, p.ID, models.PaymentStatusFailed, transactionID, nil); err != nil {
			return nil, err
		}
		s.logger.Warn("payment confirmation failed",
			zap.String("restaurant_id", restaurantID.String()),
			zap.String("payment_id", paymentID.String()),
			zap.String("reported_status", paymentStatus),
		)
		return nil, ErrPaymentDenied
	}

	var result *ConfirmResult
	err := s.store.WithRestaurantLock(ctx, restaurantID, func(tx Store) error {
		p, err := tx.GetPendingPayment(ctx, restaurantID, paymentID)
		if err != nil {
			return err
		}
		r, err := tx.GetRestaurant(ctx, restaurantID)
		if err != nil {
			return err
		}

		now := s.now()
		newExpiry := ExtendExpiry(r.SubscriptionExpiry, now)

		if err := tx.SettlePayment(ctx, p.ID, models.PaymentStatusSuccess, transactionID, &newExpiry); err != nil {
			return err
		}
		if err := tx.UpdateSubscription(ctx, restaurantID, models.SubscriptionActive, &newExpiry); err != nil {
			return err
		}
		result = &ConfirmResult{
			Status:        models.SubscriptionActive,
			Expiry:        newExpiry,
			DaysRemaining: DaysRemaining(newExpiry, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment confirmed",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.Time("new_expiry", result.Expiry),
	)
	return result, nil
}

// PaymentHistory returns up to limit most recent payments, newest first.
func (s *Service) PaymentHistory(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.SubscriptionPayment, error) {
	return s.store.ListPayments(ctx, restaurantID, limit)
}
