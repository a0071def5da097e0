package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/middleware"
	"github.com/sorokindm/parley/internal/service"
	"github.com/sorokindm/parley/pkg/log"
	"github.com/sorokindm/parley/pkg/response"
)

// SubscriptionHandler handles HTTP requests for channel notification
// preferences.
type SubscriptionHandler struct {
	subs           service.SubscriptionService
	authMiddleware *middleware.AuthMiddleware
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(subs service.SubscriptionService, authMiddleware *middleware.AuthMiddleware) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, authMiddleware: authMiddleware}
}

// RegisterRoutes registers channel subscription routes.
func (h *SubscriptionHandler) RegisterRoutes(api *gin.RouterGroup) {
	subs := api.Group("/subscriptions")
	subs.Use(h.authMiddleware.RequireAuth())
	{
		subs.POST("", h.Subscribe)
		subs.GET("", h.ListSubscriptions)
		subs.DELETE("/:channelID", h.Unsubscribe)
	}
}

// Subscribe records a notification preference for a channel.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var req domain.SubscribeChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid subscribe request")
		response.BadRequest(c, err.Error())
		return
	}

	sub, err := h.subs.Subscribe(ctx, userID, req.ChannelID)
	if err != nil {
		if errors.Is(err, service.ErrNotChannel) {
			response.BadRequest(c, "chat is not a channel")
			return
		}
		if writeServiceError(c, err) {
			return
		}
		l.Error().Err(err).Msg("subscribe failed")
		response.InternalError(c, "failed to subscribe")
		return
	}

	response.Created(c, sub)
}

// ListSubscriptions returns the caller's channel subscriptions.
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	subs, err := h.subs.ListSubscriptions(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("list subscriptions failed")
		response.InternalError(c, "failed to list subscriptions")
		return
	}

	response.Success(c, subs)
}

// Unsubscribe removes a channel subscription.
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	channelID := c.Param("channelID")

	if err := h.subs.Unsubscribe(ctx, userID, channelID); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unsubscribe failed")
		response.InternalError(c, "failed to unsubscribe")
		return
	}

	c.Status(http.StatusNoContent)
}
