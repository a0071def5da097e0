package domain

// WebSocket message types from client.
const (
	MsgTypeAuth        = "auth"
	MsgTypeSubscribe   = "subscribe"
	MsgTypeUnsubscribe = "unsubscribe"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeAuthResult   = "auth_result"
	MsgTypeSubscribed   = "subscribed"
	MsgTypeUnsubscribed = "unsubscribed"
	MsgTypeMessageSent  = "message_sent"
	MsgTypeError        = "error"
	MsgTypePong         = "pong"
)

// Error codes carried in WS error frames.
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type SubscribeMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

type UnsubscribeMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

// Server -> Client messages

type AuthResultMessage struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type SubscribedMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

type UnsubscribedMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

// MessageSentEvent is the delivery frame pushed to live subscribers.
// The shape is stable: any transport serializer consumes exactly this.
type MessageSentEvent struct {
	Type        string   `json:"type"`
	ChatID      string   `json:"chat_id"`
	MessageID   string   `json:"message_id"`
	SenderID    string   `json:"sender_id,omitempty"`
	Text        string   `json:"text"`
	Attachments []string `json:"attachments,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
