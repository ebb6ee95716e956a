package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/menumesa/backend/internal/models"
	"github.com/menumesa/backend/pkg/response"
	"github.com/menumesa/backend/pkg/utils"
)

const slugRetries = 3

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	RestaurantName string `json:"restaurant_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token      string                 `json:"token"`
	User       models.AdminUserPublic `json:"user"`
	Restaurant *models.Restaurant     `json:"restaurant,omitempty"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register. It creates the restaurant and its
// owning admin account together; the new tenant starts active with no expiry
// until the first payment lands.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	var (
		rest *models.Restaurant
		user *models.AdminUser
	)
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug, err := NewSlug(req.RestaurantName)
		if err != nil {
			response.Internal(c, "failed to generate slug")
			return
		}
		rest, user, err = h.repo.CreateRestaurantWithAdmin(c.Request.Context(), RegisterParams{
			RestaurantName: req.RestaurantName,
			Slug:           slug,
			OwnerEmail:     req.Email,
			PasswordHash:   hash,
			Phone:          req.Phone,
			Address:        req.Address,
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		response.Internal(c, "failed to create restaurant")
		return
	}
	if rest == nil {
		response.Internal(c, "failed to create restaurant")
		return
	}

	token, err := h.jwt.Generate(user.ID, rest.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	h.logger.Info("restaurant registered",
		zap.String("restaurant_id", rest.ID.String()),
		zap.String("slug", rest.Slug),
	)
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic(), Restaurant: rest})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.RestaurantID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
