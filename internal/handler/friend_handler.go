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

// FriendHandler handles HTTP requests for friend requests.
type FriendHandler struct {
	friends        service.FriendService
	authMiddleware *middleware.AuthMiddleware
}

// NewFriendHandler creates a new friend handler.
func NewFriendHandler(friends service.FriendService, authMiddleware *middleware.AuthMiddleware) *FriendHandler {
	return &FriendHandler{friends: friends, authMiddleware: authMiddleware}
}

// RegisterRoutes registers friend request routes.
func (h *FriendHandler) RegisterRoutes(api *gin.RouterGroup) {
	friends := api.Group("/friend-requests")
	friends.Use(h.authMiddleware.RequireAuth())
	{
		friends.POST("", h.SendRequest)
		friends.GET("", h.ListIncoming)
		friends.POST("/:id/respond", h.Respond)
	}
}

// SendRequest creates a pending friend request.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var req domain.SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid friend request")
		response.BadRequest(c, err.Error())
		return
	}

	fr, err := h.friends.SendRequest(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrSelfFriendRequest) {
			response.BadRequest(c, "cannot send a friend request to yourself")
			return
		}
		if errors.Is(err, service.ErrDuplicateFriendRequest) {
			response.Conflict(c, "a pending friend request already exists")
			return
		}
		if writeServiceError(c, err) {
			return
		}
		l.Error().Err(err).Msg("send friend request failed")
		response.InternalError(c, "failed to send friend request")
		return
	}

	response.Created(c, fr)
}

// ListIncoming returns friend requests addressed to the caller.
func (h *FriendHandler) ListIncoming(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	reqs, err := h.friends.ListIncoming(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("list friend requests failed")
		response.InternalError(c, "failed to list friend requests")
		return
	}

	response.Success(c, reqs)
}

// Respond accepts or rejects a pending friend request.
func (h *FriendHandler) Respond(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	requestID := c.Param("id")

	var req domain.RespondFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid respond request")
		response.BadRequest(c, err.Error())
		return
	}

	fr, err := h.friends.Respond(ctx, userID, requestID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotRecipient) {
			response.Forbidden(c, "only the recipient can respond")
			return
		}
		if errors.Is(err, service.ErrAlreadyResponded) {
			response.Conflict(c, "friend request has already been responded to")
			return
		}
		if writeServiceError(c, err) {
			return
		}
		l.Error().Err(err).Msg("respond to friend request failed")
		response.InternalError(c, "failed to respond to friend request")
		return
	}

	response.Success(c, fr)
}
