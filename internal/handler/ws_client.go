package handler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sorokindm/parley/internal/broker"
	"github.com/sorokindm/parley/internal/config"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// wsClient is one WebSocket connection. A connection authenticates once,
// then holds at most one broker subscription per chat. All subscriptions
// are torn down synchronously when the connection drops.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig

	mu            sync.Mutex
	userID        string
	username      string
	subscriptions map[string]*broker.Subscription
	pumps         sync.WaitGroup
}

func newWSClient(id string, conn *websocket.Conn, cfg config.WebSocketConfig) *wsClient {
	return &wsClient{
		id:            id,
		conn:          conn,
		send:          make(chan []byte, 256),
		cfg:           cfg,
		subscriptions: make(map[string]*broker.Subscription),
	}
}

func (c *wsClient) authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID != ""
}

func (c *wsClient) setIdentity(userID, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.username = username
}

func (c *wsClient) identity() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.username
}

// addSubscription stores the broker subscription for a chat. A second
// subscribe to the same chat replaces the first.
func (c *wsClient) addSubscription(chatID string, sub *broker.Subscription) {
	c.mu.Lock()
	prev := c.subscriptions[chatID]
	c.subscriptions[chatID] = sub
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	c.pumps.Add(1)
	go c.pumpEvents(sub)
}

// removeSubscription closes the broker subscription for a chat.
// Returns false when none exists.
func (c *wsClient) removeSubscription(chatID string) bool {
	c.mu.Lock()
	sub, ok := c.subscriptions[chatID]
	delete(c.subscriptions, chatID)
	c.mu.Unlock()

	if !ok {
		return false
	}
	sub.Close()
	return true
}

// closeSubscriptions tears down every broker subscription and waits for
// the event pumps to drain. After it returns nothing writes to c.send.
func (c *wsClient) closeSubscriptions() {
	c.mu.Lock()
	subs := make([]*broker.Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.subscriptions = make(map[string]*broker.Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	c.pumps.Wait()
}

// pumpEvents forwards broker events to the connection until the
// subscription closes.
func (c *wsClient) pumpEvents(sub *broker.Subscription) {
	defer c.pumps.Done()
	for e := range sub.Events() {
		c.sendJSON(&domain.MessageSentEvent{
			Type:        domain.MsgTypeMessageSent,
			ChatID:      e.ChatID,
			MessageID:   e.MessageID,
			SenderID:    e.SenderID,
			Text:        e.Text,
			Attachments: e.Attachments,
			CreatedAt:   e.CreatedAt.Unix(),
		})
	}
}

// sendJSON enqueues a frame for the write pump. Frames to a stalled
// connection are dropped rather than blocking the caller.
func (c *wsClient) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.L().Error().Err(err).Str(log.FieldClientID, c.id).Msg("failed to marshal ws frame")
		return
	}

	select {
	case c.send <- data:
	default:
		log.L().Debug().Str(log.FieldClientID, c.id).Msg("ws send buffer full, frame dropped")
	}
}

// readPump reads frames until the connection drops, then runs onClose.
func (c *wsClient) readPump(handle func(*wsClient, []byte), onClose func(*wsClient)) {
	defer func() {
		onClose(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.L().Debug().Err(err).Str(log.FieldClientID, c.id).Msg("websocket read error")
			}
			break
		}

		handle(c, message)
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
