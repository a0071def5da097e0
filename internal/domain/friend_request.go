package domain

import (
	"time"
)

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest transitions pending->accepted or pending->rejected exactly once.
// An accepted request is what authorizes a private chat between the pair.
type FriendRequest struct {
	ID          string              `json:"id"`
	RequesterID string              `json:"requester_id"`
	RecipientID string              `json:"recipient_id"`
	Status      FriendRequestStatus `json:"status"`
	Message     string              `json:"message,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// SendFriendRequestRequest represents a send friend request body.
type SendFriendRequestRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Message     string `json:"message" binding:"max=500"`
}

// RespondFriendRequestRequest represents an accept/reject body.
type RespondFriendRequestRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// FriendRequestResponse represents a friend request in API responses.
type FriendRequestResponse struct {
	ID          string              `json:"id"`
	RequesterID string              `json:"requester_id"`
	RecipientID string              `json:"recipient_id"`
	Status      FriendRequestStatus `json:"status"`
	Message     string              `json:"message,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToResponse converts FriendRequest to FriendRequestResponse.
func (f *FriendRequest) ToResponse() FriendRequestResponse {
	return FriendRequestResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		RecipientID: f.RecipientID,
		Status:      f.Status,
		Message:     f.Message,
		CreatedAt:   f.CreatedAt,
	}
}
