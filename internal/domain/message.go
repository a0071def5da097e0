package domain

import (
	"time"
)

// Message is immutable after creation except for ReadBy growth.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Text        string    `json:"text"`
	ReadBy      []string  `json:"read_by"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SendMessageRequest represents a send message request.
type SendMessageRequest struct {
	ChatID      string   `json:"chat_id" binding:"required"`
	Text        string   `json:"text" binding:"required"`
	Attachments []string `json:"attachments"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Text        string    `json:"text"`
	ReadBy      []string  `json:"read_by"`
	Attachments []string  `json:"attachments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts Message to MessageResponse.
func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Text:        m.Text,
		ReadBy:      m.ReadBy,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
	}
}
