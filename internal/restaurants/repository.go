package restaurants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menumesa/backend/internal/models"
)

var ErrNotFound = errors.New("restaurant not found")

// Repository handles restaurant profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a restaurants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, name, slug, owner_email, COALESCE(phone,''), COALESCE(address,''),
	COALESCE(logo_url,''), COALESCE(menu_photo_url,''), subscription_status, subscription_expiry,
	COALESCE(stripe_customer_id,''), COALESCE(stripe_subscription_id,''), created_at, updated_at`

func scan(row pgx.Row) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.OwnerEmail, &r.Phone, &r.Address,
		&r.LogoURL, &r.MenuPhotoURL, &r.SubscriptionStatus, &r.SubscriptionExpiry,
		&r.StripeCustomerID, &r.StripeSubscriptionID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetByID returns a restaurant by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM restaurants WHERE id = $1`, id))
}

// GetBySlug returns a restaurant by its public slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM restaurants WHERE slug = $1`, slug))
}

// UpdateProfileParams holds the editable profile fields.
type UpdateProfileParams struct {
	Name    string
	Phone   string
	Address string
	LogoURL string
}

// UpdateProfile updates the restaurant profile. The slug is fixed at
// registration so printed QR codes stay valid.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, p UpdateProfileParams) (*models.Restaurant, error) {
	const q = `UPDATE restaurants
		SET name = $1, phone = NULLIF($2,''), address = NULLIF($3,''), logo_url = NULLIF($4,''), updated_at = NOW()
		WHERE id = $5
		RETURNING ` + columns
	return scan(r.pool.QueryRow(ctx, q, p.Name, p.Phone, p.Address, p.LogoURL, id))
}

// SetMenuPhotoURL stores the menu-card photo URL and returns the previous one.
func (r *Repository) SetMenuPhotoURL(ctx context.Context, id uuid.UUID, photoURL string) (string, error) {
	const q = `UPDATE restaurants r SET menu_photo_url = $1, updated_at = NOW()
		FROM (SELECT id, COALESCE(menu_photo_url,'') AS old_url FROM restaurants WHERE id = $2) prev
		WHERE r.id = prev.id
		RETURNING prev.old_url`
	var old string
	if err := r.pool.QueryRow(ctx, q, photoURL, id).Scan(&old); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return old, nil
}

// SetStripeCustomerID stores the billing-gateway customer id.
func (r *Repository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE restaurants SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`, customerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
