package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/middleware"
	"github.com/sorokindm/parley/internal/service"
	"github.com/sorokindm/parley/pkg/log"
	"github.com/sorokindm/parley/pkg/response"
)

// UserHandler handles HTTP requests for accounts and authentication.
type UserHandler struct {
	users          service.UserService
	authMiddleware *middleware.AuthMiddleware
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, authMiddleware *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{users: users, authMiddleware: authMiddleware}
}

// RegisterRoutes registers auth and user routes.
func (h *UserHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", h.authMiddleware.RequireAuth(), h.Logout)
	}

	users := api.Group("/users")
	users.Use(h.authMiddleware.RequireAuth())
	{
		users.GET("", h.ListUsers)
		users.GET("/me", h.GetMe)
		users.GET("/:id", h.GetUser)
	}
}

// Register handles user registration.
func (h *UserHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUser) {
			response.Conflict(c, "email or username already taken")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *UserHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// RefreshToken handles token refresh.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid refresh token request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.RefreshToken(ctx, &req)
	if err != nil {
		l.Warn().Err(err).Msg("refresh token failed")
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	response.Success(c, result)
}

// Logout handles user logout.
func (h *UserHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.users.Logout(ctx, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("logout failed")
		response.InternalError(c, "failed to logout")
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetMe returns current user info.
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("get user failed")
		response.InternalError(c, "failed to get user")
		return
	}

	response.Success(c, user)
}

// GetUser returns a user by ID.
func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, id).Msg("get user failed")
		response.InternalError(c, "failed to get user")
		return
	}

	response.Success(c, user)
}

// ListUsers returns all users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list users failed")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, users)
}
