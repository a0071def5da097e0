package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/middleware"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/internal/service"
	"github.com/sorokindm/parley/pkg/log"
	"github.com/sorokindm/parley/pkg/response"
)

// MessageHandler handles HTTP requests for messages.
type MessageHandler struct {
	messages       service.MessageService
	authMiddleware *middleware.AuthMiddleware
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages service.MessageService, authMiddleware *middleware.AuthMiddleware) *MessageHandler {
	return &MessageHandler{messages: messages, authMiddleware: authMiddleware}
}

// RegisterRoutes registers message routes.
func (h *MessageHandler) RegisterRoutes(api *gin.RouterGroup) {
	messages := api.Group("/messages")
	messages.Use(h.authMiddleware.RequireAuth())
	{
		messages.POST("", h.SendMessage)
		messages.POST("/:id/read", h.MarkRead)
	}

	chats := api.Group("/chats")
	chats.Use(h.authMiddleware.RequireAuth())
	{
		chats.GET("/:id/messages", h.ListMessages)
	}
}

// SendMessage persists a message and fans it out to live subscribers.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messages.SendMessage(ctx, userID, &req)
	if err != nil {
		if writeServiceError(c, err) {
			return
		}
		l.Error().Err(err).Str(log.FieldChatID, req.ChatID).Msg("send message failed")
		response.InternalError(c, "failed to send message")
		return
	}

	response.Created(c, msg)
}

// ListMessages returns a chat's history.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("id")

	msgs, err := h.messages.ListMessages(ctx, userID, chatID)
	if err != nil {
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("list messages failed")
		response.InternalError(c, "failed to list messages")
		return
	}

	response.Success(c, msgs)
}

// MarkRead records that the caller read a message.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	messageID := c.Param("id")

	if err := h.messages.MarkRead(ctx, userID, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		if writeServiceError(c, err) {
			return
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldMessageID, messageID).Msg("mark read failed")
		response.InternalError(c, "failed to mark message read")
		return
	}

	response.Success(c, gin.H{"message": "marked read"})
}
