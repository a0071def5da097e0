package domain

import (
	"time"
)

// ChatType distinguishes the three conversation kinds.
type ChatType string

const (
	ChatTypeGroup   ChatType = "group"
	ChatTypePrivate ChatType = "private"
	ChatTypeChannel ChatType = "channel"
)

// Valid reports whether t is a known chat type.
func (t ChatType) Valid() bool {
	switch t {
	case ChatTypeGroup, ChatTypePrivate, ChatTypeChannel:
		return true
	}
	return false
}

// Chat represents a conversation. Members is the authorization boundary:
// read, write and subscribe all require membership.
type Chat struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	IsPrivate     bool      `json:"is_private"`
	Type          ChatType  `json:"type"`
	CreatorID     string    `json:"creator_id"`
	Members       []string  `json:"members"`
	LastMessageID string    `json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasMember reports whether userID belongs to the chat's member set.
func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CreateChatRequest represents a create chat request.
type CreateChatRequest struct {
	Title     string   `json:"title" binding:"max=200"`
	IsPrivate bool     `json:"is_private"`
	Type      string   `json:"type" binding:"required"`
	Members   []string `json:"members" binding:"required"`
}

// ChatResponse represents a chat in API responses.
type ChatResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	IsPrivate     bool      `json:"is_private"`
	Type          ChatType  `json:"type"`
	CreatorID     string    `json:"creator_id"`
	Members       []string  `json:"members"`
	LastMessageID string    `json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts Chat to ChatResponse.
func (c *Chat) ToResponse() ChatResponse {
	return ChatResponse{
		ID:            c.ID,
		Title:         c.Title,
		IsPrivate:     c.IsPrivate,
		Type:          c.Type,
		CreatorID:     c.CreatorID,
		Members:       c.Members,
		LastMessageID: c.LastMessageID,
		CreatedAt:     c.CreatedAt,
	}
}
