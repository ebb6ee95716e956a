package restaurants

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/billing"
	"github.com/menumesa/backend/internal/menu"
	"github.com/menumesa/backend/internal/middleware"
	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/pkg/queue"
	"github.com/menumesa/backend/pkg/response"
	"github.com/menumesa/backend/pkg/storage"
)

// Handler handles restaurant profile, public menu and billing HTTP endpoints.
type Handler struct {
	repo     *Repository
	menuRepo *menu.Repository
	cache    *menu.Cache
	ledger   *subscription.Ledger
	s3       *storage.S3
	jobs     *queue.Queue
	billing  *billing.Client
	frontend string
	priceID  string
	logger   *zap.Logger
}

// NewHandler creates a restaurants handler.
func NewHandler(repo *Repository, menuRepo *menu.Repository, cache *menu.Cache, ledger *subscription.Ledger,
	s3 *storage.S3, jobs *queue.Queue, billingClient *billing.Client, frontendBaseURL, priceID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:     repo,
		menuRepo: menuRepo,
		cache:    cache,
		ledger:   ledger,
		s3:       s3,
		jobs:     jobs,
		billing:  billingClient,
		frontend: strings.TrimRight(frontendBaseURL, "/"),
		priceID:  priceID,
		logger:   logger,
	}
}

// PublicRestaurant is the tenant profile as shown on the public menu page.
type PublicRestaurant struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	MenuPhotoURL string `json:"menu_photo_url,omitempty"`
}

// PublicMenuResponse is the full public menu payload, also the cached shape.
type PublicMenuResponse struct {
	Restaurant    PublicRestaurant        `json:"restaurant"`
	Categories    []models.PublicCategory `json:"categories"`
	Uncategorized []models.MenuItem       `json:"uncategorized_items,omitempty"`
}

// PublicMenu handles GET /public/:slug/menu (no auth). The subscription
// check runs before the cache so a lapsed tenant's menu disappears immediately
// rather than after cache expiry.
func (h *Handler) PublicMenu(c *gin.Context) {
	slug := c.Param("slug")
	rest, err := h.repo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "restaurant not found")
			return
		}
		h.logger.Error("public menu lookup failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to load menu")
		return
	}

	status, _, err := h.ledger.GetStatus(c.Request.Context(), rest.ID)
	if err != nil {
		response.Internal(c, "failed to load menu")
		return
	}
	if status != models.SubscriptionActive {
		response.PaymentRequired(c, "menu unavailable", nil)
		return
	}

	var cached PublicMenuResponse
	if h.cache.Get(c.Request.Context(), slug, &cached) {
		response.OK(c, cached)
		return
	}

	categories, uncategorized, err := h.menuRepo.PublicMenu(c.Request.Context(), rest.ID)
	if err != nil {
		h.logger.Error("public menu query failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to load menu")
		return
	}
	resp := PublicMenuResponse{
		Restaurant: PublicRestaurant{
			Name:         rest.Name,
			Slug:         rest.Slug,
			Phone:        rest.Phone,
			Address:      rest.Address,
			LogoURL:      rest.LogoURL,
			MenuPhotoURL: rest.MenuPhotoURL,
		},
		Categories:    categories,
		Uncategorized: uncategorized,
	}
	h.cache.Set(c.Request.Context(), slug, resp)
	response.OK(c, resp)
}

// SubscriptionInfo is the subscription block returned on GET /restaurants/me.
type SubscriptionInfo struct {
	Status        models.SubscriptionStatus `json:"status"`
	Expiry        *string                   `json:"expiry,omitempty"`
	DaysRemaining int                       `json:"days_remaining"`
}

// Me handles GET /restaurants/me. Reading through the ledger demotes an
// overdue active subscription before the profile is returned.
func (h *Handler) Me(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)

	status, expiry, err := h.ledger.GetStatus(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, subscription.ErrRestaurantNotFound) {
			response.NotFound(c, "restaurant not found")
			return
		}
		response.Internal(c, "failed to load restaurant")
		return
	}
	rest, err := h.repo.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		response.Internal(c, "failed to load restaurant")
		return
	}

	info := SubscriptionInfo{Status: status}
	if expiry != nil {
		s := expiry.UTC().Format(time.RFC3339)
		info.Expiry = &s
		info.DaysRemaining = subscription.DaysRemaining(*expiry, time.Now())
	}
	response.OK(c, gin.H{"restaurant": rest, "subscription": info})
}

// UpdateMeRequest is the body for PUT /restaurants/me.
type UpdateMeRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	LogoURL string `json:"logo_url"`
}

// UpdateMe handles PUT /restaurants/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rest, err := h.repo.UpdateProfile(c.Request.Context(), restaurantID, UpdateProfileParams{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		LogoURL: req.LogoURL,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "restaurant not found")
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		response.Internal(c, "failed to update restaurant")
		return
	}
	h.cache.Invalidate(c.Request.Context(), rest.Slug)
	response.OK(c, rest)
}

// QRCode handles GET /restaurants/me/qr. Returns the public menu URL as a QR
// image; ?format=svg yields vector output for print.
func (h *Handler) QRCode(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	rest, err := h.repo.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		response.NotFound(c, "restaurant not found")
		return
	}
	menuURL := h.frontend + "/menu/" + rest.Slug

	if c.Query("format") == "svg" {
		svg, err := menuQRSVG(menuURL)
		if err != nil {
			response.Internal(c, "failed to render QR code")
			return
		}
		c.Data(200, "image/svg+xml", []byte(svg))
		return
	}
	png, err := menuQRPNG(menuURL)
	if err != nil {
		response.Internal(c, "failed to render QR code")
		return
	}
	c.Data(200, "image/png", png)
}

// UploadMenuPhoto handles POST /restaurants/me/menu-photo (multipart field
// "photo"): a photographed menu card shown alongside the structured menu.
func (h *Handler) UploadMenuPhoto(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
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

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read photo")
		return
	}
	defer src.Close()

	key := storage.PhotoKey(storage.FolderMenuCards, file.Filename)
	photoURL, err := h.s3.UploadPhoto(c.Request.Context(), key, contentType, src)
	if err != nil {
		h.logger.Error("menu photo upload failed", zap.Error(err), zap.String("restaurant_id", restaurantID.String()))
		response.Internal(c, "failed to upload photo")
		return
	}

	oldURL, err := h.repo.SetMenuPhotoURL(c.Request.Context(), restaurantID, photoURL)
	if err != nil {
		response.Internal(c, "failed to store photo URL")
		return
	}
	if oldURL != "" && oldURL != photoURL && h.jobs != nil {
		if err := h.jobs.EnqueuePhotoCleanup(c.Request.Context(), queue.PhotoCleanupPayload{
			RestaurantID: restaurantID,
			PhotoURL:     oldURL,
		}); err != nil {
			h.logger.Warn("photo cleanup enqueue failed", zap.Error(err), zap.String("photo_url", oldURL))
		}
	}

	rest, err := h.repo.GetByID(c.Request.Context(), restaurantID)
	if err == nil {
		h.cache.Invalidate(c.Request.Context(), rest.Slug)
	}
	response.OK(c, gin.H{"menu_photo_url": photoURL})
}

// ensureCustomer returns the restaurant's gateway customer id, creating one on
// first use.
func (h *Handler) ensureCustomer(c *gin.Context, rest *models.Restaurant) (string, error) {
	if rest.StripeCustomerID != "" {
		return rest.StripeCustomerID, nil
	}
	customerID, err := h.billing.CreateCustomer(c.Request.Context(), rest.OwnerEmail, rest.Name)
	if err != nil {
		return "", err
	}
	if err := h.repo.SetStripeCustomerID(c.Request.Context(), rest.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// CheckoutSession handles POST /restaurants/me/checkout-session: starts a
// card-based subscription through the billing gateway. Renewal then arrives
// via webhooks instead of the manual confirm flow.
func (h *Handler) CheckoutSession(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	if !h.billing.Configured() || h.priceID == "" {
		response.BadRequest(c, "card billing is not available")
		return
	}
	rest, err := h.repo.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		response.NotFound(c, "restaurant not found")
		return
	}
	customerID, err := h.ensureCustomer(c, rest)
	if err != nil {
		h.logger.Error("customer creation failed", zap.Error(err), zap.String("restaurant_id", restaurantID.String()))
		response.Internal(c, "failed to start checkout")
		return
	}
	url, err := h.billing.CreateCheckoutSession(c.Request.Context(), customerID, h.priceID,
		h.frontend+"/admin/billing?checkout=success",
		h.frontend+"/admin/billing?checkout=canceled")
	if err != nil {
		h.logger.Error("checkout session failed", zap.Error(err), zap.String("restaurant_id", restaurantID.String()))
		response.Internal(c, "failed to start checkout")
		return
	}
	response.OK(c, gin.H{"url": url})
}

// BillingPortal handles POST /restaurants/me/billing-portal: opens the
// gateway-hosted portal for invoices and card management.
func (h *Handler) BillingPortal(c *gin.Context) {
	restaurantID := c.MustGet(middleware.ContextRestaurantID).(uuid.UUID)
	if !h.billing.Configured() {
		response.BadRequest(c, "card billing is not available")
		return
	}
	rest, err := h.repo.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		response.NotFound(c, "restaurant not found")
		return
	}
	if rest.StripeCustomerID == "" {
		response.BadRequest(c, "no billing account for this restaurant")
		return
	}
	url, err := h.billing.CreatePortalSession(c.Request.Context(), rest.StripeCustomerID, h.frontend+"/admin/billing")
	if err != nil {
		h.logger.Error("billing portal failed", zap.Error(err), zap.String("restaurant_id", restaurantID.String()))
		response.Internal(c, "failed to open billing portal")
		return
	}
	response.OK(c, gin.H{"url": url})
}
