package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin user's role within a restaurant.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// AdminUser is a restaurant owner/staff account for the admin dashboard.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminUserPublic is AdminUser without sensitive fields for API responses.
type AdminUserPublic struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
}

// ToPublic converts AdminUser to AdminUserPublic.
func (u *AdminUser) ToPublic() AdminUserPublic {
	return AdminUserPublic{
		ID:           u.ID,
		RestaurantID: u.RestaurantID,
		Email:        u.Email,
		Role:         u.Role,
	}
}
