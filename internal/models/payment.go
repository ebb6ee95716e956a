package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod for subscription renewals.
const (
	PaymentMethodUPI        = "upi"
	PaymentMethodNetBanking = "netbanking"
	PaymentMethodStripe     = "stripe"
)

// PaymentStatus for subscription payments.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// SubscriptionPayment is one renewal attempt for a restaurant's subscription.
// Rows are never deleted; a pending row transitions to success or failed
// exactly once and is immutable afterwards.
type SubscriptionPayment struct {
	ID            uuid.UUID  `json:"id"`
	RestaurantID  uuid.UUID  `json:"restaurant_id"`
	PaymentDate   time.Time  `json:"payment_date"`
	AmountCents   int        `json:"amount_cents"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	// SubscriptionExpiry is the expiry granted by this payment. Provisional
	// at initiation; authoritative once the payment is confirmed.
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
}
