package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the closed set of subscription states for a tenant.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// ParseGatewayStatus maps a billing-gateway subscription status onto the local
// enum. Anything unrecognized becomes inactive.
func ParseGatewayStatus(s string) SubscriptionStatus {
	switch s {
	case "active":
		return SubscriptionActive
	case "past_due":
		return SubscriptionPastDue
	case "canceled":
		return SubscriptionCanceled
	default:
		return SubscriptionInactive
	}
}

// Restaurant represents a tenant: one restaurant with its menu and subscription.
type Restaurant struct {
	ID                   uuid.UUID          `json:"id"`
	Name                 string             `json:"name"`
	Slug                 string             `json:"slug"`
	OwnerEmail           string             `json:"owner_email"`
	Phone                string             `json:"phone,omitempty"`
	Address              string             `json:"address,omitempty"`
	LogoURL              string             `json:"logo_url,omitempty"`
	MenuPhotoURL         string             `json:"menu_photo_url,omitempty"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status"`
	SubscriptionExpiry   *time.Time         `json:"subscription_expiry,omitempty"`
	StripeCustomerID     string             `json:"-"`
	StripeSubscriptionID string             `json:"-"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
