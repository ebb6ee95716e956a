package menu

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/middleware"
	"github.com/menumesa/backend/pkg/queue"
	"github.com/menumesa/backend/pkg/response"
	"github.com/menumesa/backend/pkg/storage"
)

// Handler handles menu management HTTP endpoints for the admin dashboard.
// Every route sits behind JWT and the subscription gate.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	jobs   *queue.Queue
	cache  *Cache
	logger *zap.Logger
}

// NewHandler creates a menu handler.
func NewHandler(repo *Repository, s3 *storage.S3, jobs *queue.Queue, cache *Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, jobs: jobs, cache: cache, logger: logger}
}

// CategoryRequest is the body for category create/update.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

func (req CategoryRequest) params() CreateCategoryParams {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return CreateCategoryParams{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    active,
	}
}

// ItemRequest is the body for item create/update.
type ItemRequest struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	Name         string     `json:"name" binding:"required"`
	Description  string     `json:"description"`
	PriceCents   int        `json:"price_cents" binding:"required,min=1"`
	Currency     string     `json:"currency"`
	IsAvailable  *bool      `json:"is_available"`
	IsVegetarian bool       `json:"is_vegetarian"`
	IsVegan      bool       `json:"is_vegan"`
	IsGlutenFree bool       `json:"is_gluten_free"`
	Allergens    []string   `json:"allergens"`
	SortOrder    int        `json:"sort_order"`
}

func (req ItemRequest) params() CreateItemParams {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	return CreateItemParams{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		Currency:     currency,
		IsAvailable:  available,
		IsVegetarian: req.IsVegetarian,
		IsVegan:      req.IsVegan,
		IsGlutenFree: req.IsGlutenFree,
		Allergens:    req.Allergens,
		SortOrder:    req.SortOrder,
	}
}

func (h *Handler) invalidatePublicMenu(c *gin.Context, restaurantID uuid.UUID) {
	slug, err := h.repo.RestaurantSlug(c.Request.Context(), restaurantID)
	if err != nil {
		h.logger.Warn("slug lookup for cache invalidation failed", zap.Error(err), zap.String("restaurant_id", restaurantID.String()))
		return
	}
	h.cache.Invalidate(c.Request.Context(), slug)
}

func (h *Handler) enqueuePhotoCleanup(c *gin.Context, restaurantID uuid.UUID, photoURL string) {
	if photoURL == "" || h.jobs == nil {
		return
	}
	if err := h.jobs.EnqueuePhotoCleanup(c.Request.Context(), queue.PhotoCleanupPayload{
		RestaurantID: restaurantID,
		PhotoURL:     photoURL,
	}); err != nil {
		h.logger.Warn("photo cleanup enqueue failed", zap.Error(err), zap.String("photo_url", photoURL))
	}
}

// ListCategories handles GET /menu/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	list, err := h.repo.ListCategories(c.Request.Context(), restaurantID)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// CreateCategory handles POST /menu/categories.
func (h *Handler) CreateCategory(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat, err := h.repo.CreateCategory(c.Request.Context(), restaurantID, req.params())
	if err != nil {
		h.logger.Error("create category failed", zap.Error(err))
		response.Internal(c, "failed to create category")
		return
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.Created(c, cat)
}

// UpdateCategory handles PUT /menu/categories/:id.
func (h *Handler) UpdateCategory(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat, err := h.repo.UpdateCategory(c.Request.Context(), restaurantID, categoryID, req.params())
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("update category failed", zap.Error(err))
		response.Internal(c, "failed to update category")
		return
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.OK(c, cat)
}

// DeleteCategory handles DELETE /menu/categories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	if err := h.repo.DeleteCategory(c.Request.Context(), restaurantID, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("delete category failed", zap.Error(err))
		response.Internal(c, "failed to delete category")
		return
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.NoContent(c)
}

// ListItems handles GET /menu/items.
func (h *Handler) ListItems(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	list, err := h.repo.ListItems(c.Request.Context(), restaurantID)
	if err != nil {
		h.logger.Error("list items failed", zap.Error(err))
		response.Internal(c, "failed to list items")
		return
	}
	response.OK(c, list)
}

// CreateItem handles POST /menu/items.
func (h *Handler) CreateItem(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.repo.CreateItem(c.Request.Context(), restaurantID, req.params())
	if err != nil {
		h.logger.Error("create item failed", zap.Error(err))
		response.Internal(c, "failed to create item")
		return
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.Created(c, item)
}

// UpdateItem handles PUT /menu/items/:id.
func (h *Handler) UpdateItem(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	item, err := h.repo.UpdateItem(c.Request.Context(), restaurantID, itemID, req.params())
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(c, "item not found")
			return
		}
		h.logger.Error("update item failed", zap.Error(err))
		response.Internal(c, "failed to update item")
		return
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.OK(c, item)
}

// DeleteItem handles DELETE /menu/items/:id. The photo object is removed
// asynchronously by the worker.
func (h *Handler) DeleteItem(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	photoURL, err := h.repo.DeleteItem(c.Request.Context(), restaurantID, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(c, "item not found")
			return
		}
		h.logger.Error("delete item failed", zap.Error(err))
		response.Internal(c, "failed to delete item")
		return
	}
	h.enqueuePhotoCleanup(c, restaurantID, photoURL)
	h.invalidatePublicMenu(c, restaurantID)
	response.NoContent(c)
}

// UploadItemPhoto handles POST /menu/items/:id/photo (multipart field "photo").
// A replaced photo is cleaned up asynchronously.
func (h *Handler) UploadItemPhoto(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}
	if h.s3 == nil {
		response.Internal(c, "photo storage not configured")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "missing photo file")
		return
	}
	if file.Size > storage.MaxPhotoSize {
		response.BadRequest(c, "photo exceeds maximum size")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidatePhotoType(contentType) {
		response.BadRequest(c, "unsupported photo type")
		return
	}

	if _, err := h.repo.GetItem(c.Request.Context(), restaurantID, itemID); err != nil {
		response.NotFound(c, "item not found")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read photo")
		return
	}
	defer src.Close()

	key := storage.PhotoKey(storage.FolderMenuItems, file.Filename)
	photoURL, err := h.s3.UploadPhoto(c.Request.Context(), key, contentType, src)
	if err != nil {
		h.logger.Error("item photo upload failed", zap.Error(err), zap.String("item_id", itemID.String()))
		response.Internal(c, "failed to upload photo")
		return
	}

	oldURL, err := h.repo.SetItemPhotoURL(c.Request.Context(), restaurantID, itemID, photoURL)
	if err != nil {
		response.Internal(c, "failed to store photo URL")
		return
	}
	if oldURL != photoURL {
		h.enqueuePhotoCleanup(c, restaurantID, oldURL)
	}
	h.invalidatePublicMenu(c, restaurantID)
	response.OK(c, gin.H{"photo_url": photoURL})
}
