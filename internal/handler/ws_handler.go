package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sorokindm/parley/internal/broker"
	"github.com/sorokindm/parley/internal/cache"
	"github.com/sorokindm/parley/internal/config"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/membership"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/pkg/jwt"
	"github.com/sorokindm/parley/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler owns the live delivery transport. Each connection
// authenticates, subscribes to chats it is a member of, and receives
// message_sent frames until it unsubscribes or drops.
type WSHandler struct {
	broker   *broker.Broker
	chats    repository.ChatRepository
	users    repository.UserRepository
	tokens   *jwt.Manager
	presence cache.PresenceStore
	wsCfg    config.WebSocketConfig
	presTTL  config.PresenceConfig
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(b *broker.Broker, chats repository.ChatRepository, users repository.UserRepository, tokens *jwt.Manager, presence cache.PresenceStore, wsCfg config.WebSocketConfig, presCfg config.PresenceConfig) *WSHandler {
	return &WSHandler{
		broker:   b,
		chats:    chats,
		users:    users,
		tokens:   tokens,
		presence: presence,
		wsCfg:    wsCfg,
		presTTL:  presCfg,
	}
}

// RegisterRoutes registers the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and starts the pumps. A token
// query parameter authenticates immediately; otherwise the client must
// send an auth frame before subscribing.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newWSClient(uuid.New().String(), conn, h.wsCfg)

	go client.writePump()

	if token := c.Query("token"); token != "" {
		h.authenticate(c.Request.Context(), client, token)
	}

	go client.readPump(h.handleMessage, h.onDisconnect)
}

func (h *WSHandler) handleMessage(client *wsClient, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeAuth:
		var msg domain.AuthMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendJSON(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid auth message"))
			return
		}
		h.authenticate(ctx, client, msg.Token)

	case domain.MsgTypeSubscribe:
		var msg domain.SubscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendJSON(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid subscribe message"))
			return
		}
		h.subscribe(ctx, client, msg.ChatID)

	case domain.MsgTypeUnsubscribe:
		var msg domain.UnsubscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendJSON(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid unsubscribe message"))
			return
		}
		h.unsubscribe(client, msg.ChatID)

	case domain.MsgTypePing:
		if userID, _ := client.identity(); userID != "" {
			if err := h.presence.RefreshTTL(ctx, userID, h.presTTL.TTL); err != nil {
				log.L().Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to refresh presence ttl")
			}
		}
		client.sendJSON(map[string]string{"type": domain.MsgTypePong})

	default:
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeBadRequest, "unknown message type"))
	}
}

func (h *WSHandler) authenticate(ctx context.Context, client *wsClient, token string) {
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		client.sendJSON(&domain.AuthResultMessage{
			Type:    domain.MsgTypeAuthResult,
			Success: false,
			Message: "invalid or expired token",
		})
		return
	}

	client.setIdentity(claims.UserID, claims.Username)

	if err := h.presence.SetOnline(ctx, claims.UserID, h.presTTL.TTL); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to mark user online in presence store")
	}
	if err := h.users.SetOnline(ctx, claims.UserID, true); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to persist online flag")
	}

	client.sendJSON(&domain.AuthResultMessage{
		Type:     domain.MsgTypeAuthResult,
		Success:  true,
		UserID:   claims.UserID,
		Username: claims.Username,
	})
}

// subscribe registers the connection for a chat's live events. Requires
// prior auth and chat membership.
func (h *WSHandler) subscribe(ctx context.Context, client *wsClient, chatID string) {
	if !client.authenticated() {
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "authenticate first"))
		return
	}
	userID, _ := client.identity()

	chat, err := h.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			client.sendJSON(domain.NewErrorMessage(domain.ErrCodeNotFound, "chat not found"))
			return
		}
		log.L().Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to load chat for subscribe")
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeInternalError, "failed to subscribe"))
		return
	}

	if !membership.CanRead(userID, chat) {
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeForbidden, "not a member of this chat"))
		return
	}

	sub := h.broker.Subscribe(chatID, broker.FilterContext{ChatID: chatID, UserID: userID})
	client.addSubscription(chatID, sub)

	client.sendJSON(&domain.SubscribedMessage{Type: domain.MsgTypeSubscribed, ChatID: chatID})
}

func (h *WSHandler) unsubscribe(client *wsClient, chatID string) {
	if !client.authenticated() {
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "authenticate first"))
		return
	}

	if !client.removeSubscription(chatID) {
		client.sendJSON(domain.NewErrorMessage(domain.ErrCodeNotFound, "no subscription for this chat"))
		return
	}

	client.sendJSON(&domain.UnsubscribedMessage{Type: domain.MsgTypeUnsubscribed, ChatID: chatID})
}

// onDisconnect tears down the connection's subscriptions before the read
// pump returns, so no events are enqueued after the socket is gone.
func (h *WSHandler) onDisconnect(client *wsClient) {
	client.closeSubscriptions()
	close(client.send)

	userID, _ := client.identity()
	if userID == "" {
		return
	}

	ctx := context.Background()
	if err := h.presence.SetOffline(ctx, userID); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to mark user offline in presence store")
	}
	if err := h.users.SetOnline(ctx, userID, false); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to clear online flag")
	}
}
