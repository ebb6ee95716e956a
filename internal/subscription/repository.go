package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menumesa/backend/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same queries
// run inside and outside the renewal transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the PostgreSQL implementation of Store.
type Repository struct {
	db   querier
	pool *pgxpool.Pool // nil when the repository operates inside a transaction
}

// NewRepository creates a subscription repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

const restaurantColumns = `id, name, slug, owner_email, COALESCE(phone,''), COALESCE(address,''),
	COALESCE(logo_url,''), COALESCE(menu_photo_url,''), subscription_status, subscription_expiry,
	COALESCE(stripe_customer_id,''), COALESCE(stripe_subscription_id,''), created_at, updated_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.OwnerEmail, &r.Phone, &r.Address,
		&r.LogoURL, &r.MenuPhotoURL, &r.SubscriptionStatus, &r.SubscriptionExpiry,
		&r.StripeCustomerID, &r.StripeSubscriptionID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetRestaurant returns a restaurant by ID.
func (r *Repository) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return scanRestaurant(r.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
}

// GetRestaurantByCustomerID returns a restaurant by its billing-gateway customer id.
func (r *Repository) GetRestaurantByCustomerID(ctx context.Context, customerID string) (*models.Restaurant, error) {
	return scanRestaurant(r.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE stripe_customer_id = $1`, customerID))
}

// UpdateSubscription sets status and expiry together.
func (r *Repository) UpdateSubscription(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus, expiry *time.Time) error {
	const q = `UPDATE restaurants SET subscription_status = $1, subscription_expiry = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.db.Exec(ctx, q, string(status), expiry, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// UpdateStatus sets the subscription status only.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus) error {
	const q = `UPDATE restaurants SET subscription_status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// SetStripeSubscriptionID stores the gateway subscription id for a restaurant.
func (r *Repository) SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, subscriptionID string) error {
	const q = `UPDATE restaurants SET stripe_subscription_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, q, subscriptionID, id)
	return err
}

// CreatePayment inserts a new payment record.
func (r *Repository) CreatePayment(ctx context.Context, p *models.SubscriptionPayment) error {
	const q = `INSERT INTO subscription_payments (id, restaurant_id, amount_cents, payment_method, payment_status, subscription_expiry)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, payment_date`
	return r.db.QueryRow(ctx, q, p.RestaurantID, p.AmountCents, p.PaymentMethod, p.PaymentStatus, p.SubscriptionExpiry).
		Scan(&p.ID, &p.PaymentDate)
}

// GetPendingPayment returns the payment only if it belongs to the restaurant
// and is still pending.
func (r *Repository) GetPendingPayment(ctx context.Context, restaurantID, paymentID uuid.UUID) (*models.SubscriptionPayment, error) {
	const q = `SELECT id, restaurant_id, payment_date, amount_cents, payment_method, payment_status, COALESCE(transaction_id,''), subscription_expiry
		FROM subscription_payments
		WHERE id = $1 AND restaurant_id = $2 AND payment_status = $3`
	var p models.SubscriptionPayment
	err := r.db.QueryRow(ctx, q, paymentID, restaurantID, models.PaymentStatusPending).
		Scan(&p.ID, &p.RestaurantID, &p.PaymentDate, &p.AmountCents, &p.PaymentMethod, &p.PaymentStatus, &p.TransactionID, &p.SubscriptionExpiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SettlePayment moves a pending payment to a terminal status. The status
// guard keeps settled rows immutable.
func (r *Repository) SettlePayment(ctx context.Context, paymentID uuid.UUID, status, transactionID string, expiry *time.Time) error {
	const q = `UPDATE subscription_payments
		SET payment_status = $1, transaction_id = NULLIF($2,''), subscription_expiry = COALESCE($3, subscription_expiry)
		WHERE id = $4 AND payment_status = $5`
	tag, err := r.db.Exec(ctx, q, status, transactionID, expiry, paymentID, models.PaymentStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ListPayments returns up to limit most recent payments, newest first.
func (r *Repository) ListPayments(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.SubscriptionPayment, error) {
	const q = `SELECT id, restaurant_id, payment_date, amount_cents, payment_method, payment_status, COALESCE(transaction_id,''), subscription_expiry
		FROM subscription_payments
		WHERE restaurant_id = $1
		ORDER BY payment_date DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, q, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SubscriptionPayment
	for rows.Next() {
		var p models.SubscriptionPayment
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.PaymentDate, &p.AmountCents, &p.PaymentMethod, &p.PaymentStatus, &p.TransactionID, &p.SubscriptionExpiry); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// InsertEvent appends a gateway audit event.
func (r *Repository) InsertEvent(ctx context.Context, e *models.SubscriptionEvent) error {
	const q = `INSERT INTO subscription_events (id, restaurant_id, event_type, stripe_event_id, data)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), $4)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, q, e.RestaurantID, e.EventType, e.StripeEventID, e.Data).
		Scan(&e.ID, &e.CreatedAt)
}

// WithRestaurantLock runs fn inside a transaction holding a FOR UPDATE lock on
// the restaurant row. Nested calls reuse the current transaction.
func (r *Repository) WithRestaurantLock(ctx context.Context, restaurantID uuid.UUID, fn func(Store) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`, restaurantID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRestaurantNotFound
		}
		return err
	}

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
