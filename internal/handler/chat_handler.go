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

// ChatHandler handles HTTP requests for conversations.
type ChatHandler struct {
	chats          service.ChatService
	authMiddleware *middleware.AuthMiddleware
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats service.ChatService, authMiddleware *middleware.AuthMiddleware) *ChatHandler {
	return &ChatHandler{chats: chats, authMiddleware: authMiddleware}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(api *gin.RouterGroup) {
	chats := api.Group("/chats")
	chats.Use(h.authMiddleware.RequireAuth())
	{
		chats.POST("", h.CreateChat)
		chats.GET("", h.ListChats)
		chats.GET("/:id", h.GetChat)
		chats.POST("/:id/join", h.JoinChat)
		chats.POST("/:id/leave", h.LeaveChat)
		chats.DELETE("/:id/members/:memberID", h.RemoveMember)
		chats.DELETE("/:id", h.DeleteChat)
	}
}

// CreateChat creates a new conversation.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var req domain.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create chat request")
		response.BadRequest(c, err.Error())
		return
	}

	chat, err := h.chats.CreateChat(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidChatType) {
			response.BadRequest(c, "invalid chat type")
			return
		}
		if errors.Is(err, service.ErrUnknownMembers) {
			response.BadRequest(c, "one or more members do not exist")
			return
		}
		if writeServiceError(c, err) {
			return
		}
		l.Error().Err(err).Msg("create chat failed")
		response.InternalError(c, "failed to create chat")
		return
	}

	response.Created(c, chat)
}

// ListChats returns the caller's conversations.
func (h *ChatHandler) ListChats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	chats, err := h.chats.ListChats(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("list chats failed")
		response.InternalError(c, "failed to list chats")
		return
	}

	response.Success(c, chats)
}

// GetChat returns a single conversation.
func (h *ChatHandler) GetChat(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")

	chat, err := h.chats.GetChat(ctx, userID, chatID)
	if err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("get chat failed")
		response.InternalError(c, "failed to get chat")
		return
	}

	response.Success(c, chat)
}

// JoinChat adds the caller to a chat.
func (h *ChatHandler) JoinChat(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")

	chat, err := h.chats.JoinChat(ctx, userID, chatID)
	if err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("join chat failed")
		response.InternalError(c, "failed to join chat")
		return
	}

	response.Success(c, chat)
}

// LeaveChat removes the caller from a chat.
func (h *ChatHandler) LeaveChat(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")

	if err := h.chats.LeaveChat(ctx, userID, chatID); err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("leave chat failed")
		response.InternalError(c, "failed to leave chat")
		return
	}

	response.Success(c, gin.H{"message": "left chat"})
}

// RemoveMember removes another member from a chat.
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")
	memberID := c.Param("memberID")

	if err := h.chats.RemoveMember(ctx, userID, chatID, memberID); err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("remove member failed")
		response.InternalError(c, "failed to remove member")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteChat soft deletes a chat.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")

	if err := h.chats.DeleteChat(ctx, userID, chatID); err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("delete chat failed")
		response.InternalError(c, "failed to delete chat")
		return
	}

	c.Status(http.StatusNoContent)
}
