package broker

import (
	"time"
)

// Event is the payload fanned out to live subscribers when a message is
// persisted. The shape is stable; transport serializers consume it as-is.
type Event struct {
	ChatID      string    `json:"chat_id"`
	MessageID   string    `json:"message_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Text        string    `json:"text"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
