package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menumesa/backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSlugTaken    = errors.New("slug already taken")
)

// Repository handles admin-user and registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, restaurant_id, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*models.AdminUser, error) {
	var u models.AdminUser
	err := row.Scan(&u.ID, &u.RestaurantID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns an admin user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE email = $1`, email))
}

// GetUserByID returns an admin user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id))
}

// RegisterParams holds the inputs for creating a restaurant with its first
// admin account.
type RegisterParams struct {
	RestaurantName string
	Slug           string
	OwnerEmail     string
	PasswordHash   string
	Phone          string
	Address        string
}

// CreateRestaurantWithAdmin creates the restaurant and its owning admin user
// in one transaction, so a half-registered tenant can never exist. A slug
// collision surfaces as ErrSlugTaken; the caller retries with a fresh suffix.
func (r *Repository) CreateRestaurantWithAdmin(ctx context.Context, p RegisterParams) (*models.Restaurant, *models.AdminUser, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	const insertRestaurant = `INSERT INTO restaurants (name, slug, owner_email, phone, address, subscription_status)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6)
		RETURNING id, name, slug, owner_email, COALESCE(phone,''), COALESCE(address,''),
			COALESCE(logo_url,''), COALESCE(menu_photo_url,''), subscription_status, subscription_expiry,
			COALESCE(stripe_customer_id,''), COALESCE(stripe_subscription_id,''), created_at, updated_at`
	var rest models.Restaurant
	err = tx.QueryRow(ctx, insertRestaurant, p.RestaurantName, p.Slug, p.OwnerEmail, p.Phone, p.Address, string(models.SubscriptionActive)).
		Scan(&rest.ID, &rest.Name, &rest.Slug, &rest.OwnerEmail, &rest.Phone, &rest.Address,
			&rest.LogoURL, &rest.MenuPhotoURL, &rest.SubscriptionStatus, &rest.SubscriptionExpiry,
			&rest.StripeCustomerID, &rest.StripeSubscriptionID, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil, ErrSlugTaken
		}
		return nil, nil, err
	}

	const insertUser = `INSERT INTO admin_users (restaurant_id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRow(ctx, insertUser, rest.ID, p.OwnerEmail, p.PasswordHash, string(models.RoleAdmin)))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &rest, user, nil
}
