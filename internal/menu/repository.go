package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menumesa/backend/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("menu item not found")
)

// Repository handles menu persistence. Every query is scoped by restaurant_id,
// so one tenant can never read or mutate another tenant's menu.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a menu repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, restaurant_id, name, COALESCE(description,''), sort_order, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*models.MenuCategory, error) {
	var cat models.MenuCategory
	err := row.Scan(&cat.ID, &cat.RestaurantID, &cat.Name, &cat.Description, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns all categories for the restaurant, ordered for display.
func (r *Repository) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM menu_categories
		WHERE restaurant_id = $1 ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MenuCategory
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cat)
	}
	return list, rows.Err()
}

// CreateCategoryParams holds category create/update fields.
type CreateCategoryParams struct {
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}

// CreateCategory inserts a category for the restaurant.
func (r *Repository) CreateCategory(ctx context.Context, restaurantID uuid.UUID, p CreateCategoryParams) (*models.MenuCategory, error) {
	const q = `INSERT INTO menu_categories (restaurant_id, name, description, sort_order, is_active)
		VALUES ($1, $2, NULLIF($3,''), $4, $5)
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, q, restaurantID, p.Name, p.Description, p.SortOrder, p.IsActive))
}

// UpdateCategory updates a category owned by the restaurant.
func (r *Repository) UpdateCategory(ctx context.Context, restaurantID, categoryID uuid.UUID, p CreateCategoryParams) (*models.MenuCategory, error) {
	const q = `UPDATE menu_categories
		SET name = $1, description = NULLIF($2,''), sort_order = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5 AND restaurant_id = $6
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, q, p.Name, p.Description, p.SortOrder, p.IsActive, categoryID, restaurantID))
}

// DeleteCategory removes a category; its items keep existing with a NULL category.
func (r *Repository) DeleteCategory(ctx context.Context, restaurantID, categoryID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_categories WHERE id = $1 AND restaurant_id = $2`, categoryID, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

const itemColumns = `id, restaurant_id, category_id, name, COALESCE(description,''), price_cents, currency,
	COALESCE(photo_url,''), is_available, is_vegetarian, is_vegan, is_gluten_free, allergens, sort_order, created_at, updated_at`

func scanItem(row pgx.Row) (*models.MenuItem, error) {
	var it models.MenuItem
	err := row.Scan(&it.ID, &it.RestaurantID, &it.CategoryID, &it.Name, &it.Description, &it.PriceCents, &it.Currency,
		&it.PhotoURL, &it.IsAvailable, &it.IsVegetarian, &it.IsVegan, &it.IsGlutenFree, &it.Allergens, &it.SortOrder, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// ListItems returns all items for the restaurant, ordered for display.
func (r *Repository) ListItems(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items
		WHERE restaurant_id = $1 ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *it)
	}
	return list, rows.Err()
}

// GetItem returns one item owned by the restaurant.
func (r *Repository) GetItem(ctx context.Context, restaurantID, itemID uuid.UUID) (*models.MenuItem, error) {
	return scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items
		WHERE id = $1 AND restaurant_id = $2`, itemID, restaurantID))
}

// CreateItemParams holds item create/update fields.
type CreateItemParams struct {
	CategoryID   *uuid.UUID
	Name         string
	Description  string
	PriceCents   int
	Currency     string
	IsAvailable  bool
	IsVegetarian bool
	IsVegan      bool
	IsGlutenFree bool
	Allergens    []string
	SortOrder    int
}

// CreateItem inserts a menu item. A category id belonging to another tenant is
// rejected by scoping the subselect.
func (r *Repository) CreateItem(ctx context.Context, restaurantID uuid.UUID, p CreateItemParams) (*models.MenuItem, error) {
	if p.Allergens == nil {
		p.Allergens = []string{}
	}
	const q = `INSERT INTO menu_items
		(restaurant_id, category_id, name, description, price_cents, currency, is_available, is_vegetarian, is_vegan, is_gluten_free, allergens, sort_order)
		VALUES ($1,
			(SELECT id FROM menu_categories WHERE id = $2 AND restaurant_id = $1),
			$3, NULLIF($4,''), $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + itemColumns
	return scanItem(r.pool.QueryRow(ctx, q, restaurantID, p.CategoryID, p.Name, p.Description, p.PriceCents, p.Currency,
		p.IsAvailable, p.IsVegetarian, p.IsVegan, p.IsGlutenFree, p.Allergens, p.SortOrder))
}

// UpdateItem updates an item owned by the restaurant.
func (r *Repository) UpdateItem(ctx context.Context, restaurantID, itemID uuid.UUID, p CreateItemParams) (*models.MenuItem, error) {
	if p.Allergens == nil {
		p.Allergens = []string{}
	}
	const q = `UPDATE menu_items
		SET category_id = (SELECT id FROM menu_categories WHERE id = $1 AND restaurant_id = $2),
			name = $3, description = NULLIF($4,''), price_cents = $5, currency = $6,
			is_available = $7, is_vegetarian = $8, is_vegan = $9, is_gluten_free = $10,
			allergens = $11, sort_order = $12, updated_at = NOW()
		WHERE id = $13 AND restaurant_id = $2
		RETURNING ` + itemColumns
	return scanItem(r.pool.QueryRow(ctx, q, p.CategoryID, restaurantID, p.Name, p.Description, p.PriceCents, p.Currency,
		p.IsAvailable, p.IsVegetarian, p.IsVegan, p.IsGlutenFree, p.Allergens, p.SortOrder, itemID))
}

// SetItemPhotoURL stores the item's photo URL and returns the previous one so
// the caller can queue cleanup.
func (r *Repository) SetItemPhotoURL(ctx context.Context, restaurantID, itemID uuid.UUID, photoURL string) (string, error) {
	const q = `UPDATE menu_items m SET photo_url = $1, updated_at = NOW()
		FROM (SELECT id, COALESCE(photo_url,'') AS old_url FROM menu_items WHERE id = $2 AND restaurant_id = $3) prev
		WHERE m.id = prev.id
		RETURNING prev.old_url`
	var old string
	if err := r.pool.QueryRow(ctx, q, photoURL, itemID, restaurantID).Scan(&old); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrItemNotFound
		}
		return "", err
	}
	return old, nil
}

// DeleteItem removes an item and returns its photo URL for cleanup.
func (r *Repository) DeleteItem(ctx context.Context, restaurantID, itemID uuid.UUID) (string, error) {
	var photoURL string
	err := r.pool.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2
		RETURNING COALESCE(photo_url,'')`, itemID, restaurantID).Scan(&photoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrItemNotFound
		}
		return "", err
	}
	return photoURL, nil
}

// PublicMenu returns active categories with their available items, plus
// available items without a category.
func (r *Repository) PublicMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.PublicCategory, []models.MenuItem, error) {
	cats, err := r.activeCategories(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items
		WHERE restaurant_id = $1 AND is_available ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byCategory := make(map[uuid.UUID][]models.MenuItem)
	var uncategorized []models.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, nil, err
		}
		if it.CategoryID == nil {
			uncategorized = append(uncategorized, *it)
			continue
		}
		byCategory[*it.CategoryID] = append(byCategory[*it.CategoryID], *it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	public := make([]models.PublicCategory, 0, len(cats))
	for _, cat := range cats {
		public = append(public, models.PublicCategory{MenuCategory: cat, Items: byCategory[cat.ID]})
	}
	return public, uncategorized, nil
}

func (r *Repository) activeCategories(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM menu_categories
		WHERE restaurant_id = $1 AND is_active ORDER BY sort_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MenuCategory
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cat)
	}
	return list, rows.Err()
}

// RestaurantSlug returns the slug for a restaurant id, used to invalidate the
// public menu cache after mutations.
func (r *Repository) RestaurantSlug(ctx context.Context, restaurantID uuid.UUID) (string, error) {
	var slug string
	err := r.pool.QueryRow(ctx, `SELECT slug FROM restaurants WHERE id = $1`, restaurantID).Scan(&slug)
	if err != nil {
		return "", err
	}
	return slug, nil
}
