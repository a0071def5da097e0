package repository

import (
	"context"
	"errors"

	"github.com/sorokindm/parley/internal/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrChatNotFound          = errors.New("chat not found")
	ErrMessageNotFound       = errors.New("message not found")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrDuplicateUser         = errors.New("email or username already taken")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	CountByIDs(ctx context.Context, ids []string) (int64, error)
	SetOnline(ctx context.Context, id string, online bool) error
}

// ChatRepository persists conversations and their membership rows.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Chat, error)
	FindPrivateBetween(ctx context.Context, a, b string) (*domain.Chat, error)
	AddMember(ctx context.Context, chatID, userID string) error
	RemoveMember(ctx context.Context, chatID, userID string) error
	SetLastMessage(ctx context.Context, chatID, messageID string) error
	SoftDelete(ctx context.Context, chatID string) error
}

// MessageRepository persists messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID, userID string) error
}

// FriendRequestRepository persists friend requests.
type FriendRequestRepository interface {
	Create(ctx context.Context, req *domain.FriendRequest) error
	GetByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	ListForRecipient(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	HasPendingBetween(ctx context.Context, requesterID, recipientID string) (bool, error)
	HasAcceptedBetween(ctx context.Context, a, b string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.FriendRequestStatus) error
}

// ChannelSubscriptionRepository persists durable channel notification
// preferences. Not involved in delivery fan-out.
type ChannelSubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.ChannelSubscription) error
	GetByUserAndChannel(ctx context.Context, userID, channelID string) (*domain.ChannelSubscription, error)
	Delete(ctx context.Context, userID, channelID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ChannelSubscription, error)
}
