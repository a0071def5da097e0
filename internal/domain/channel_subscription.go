package domain

import (
	"time"
)

// ChannelSubscription is the durable notification preference for a channel.
// It is unrelated to delivery fan-out: live delivery subscriptions are
// ephemeral broker registrations, never persisted.
type ChannelSubscription struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	ChannelID            string    `json:"channel_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
}

// SubscribeChannelRequest represents a subscribe-to-channel body.
type SubscribeChannelRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
}
