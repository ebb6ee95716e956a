package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionEvent is an audit record of a gateway-driven subscription
// transition. Append-only; StripeEventID allows consumers to dedup redelivered
// events.
type SubscriptionEvent struct {
	ID            uuid.UUID `json:"id"`
	RestaurantID  uuid.UUID `json:"restaurant_id"`
	EventType     string    `json:"event_type"`
	StripeEventID string    `json:"stripe_event_id,omitempty"`
	Data          []byte    `json:"data,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
