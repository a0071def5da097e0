package service

import (
	"context"
	"errors"

	"github.com/sorokindm/parley/internal/domain"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
	ErrChatNotFound           = errors.New("chat not found")
	ErrFriendRequestNotFound  = errors.New("friend request not found")
	ErrDuplicateUser          = errors.New("email or username already taken")
	ErrInvalidChatType        = errors.New("invalid chat type")
	ErrUnknownMembers         = errors.New("one or more members do not exist")
	ErrSelfFriendRequest      = errors.New("cannot send a friend request to yourself")
	ErrDuplicateFriendRequest = errors.New("a pending friend request already exists")
	ErrNotRecipient           = errors.New("only the recipient can respond to a friend request")
	ErrAlreadyResponded       = errors.New("friend request has already been responded to")
	ErrNotChannel             = errors.New("chat is not a channel")
)

// UserService handles account lifecycle and authentication.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	GetUser(ctx context.Context, userID string) (*domain.UserResponse, error)
	ListUsers(ctx context.Context) ([]domain.UserResponse, error)
}

// ChatService handles conversation lifecycle and membership changes.
type ChatService interface {
	CreateChat(ctx context.Context, creatorID string, req *domain.CreateChatRequest) (*domain.ChatResponse, error)
	GetChat(ctx context.Context, userID, chatID string) (*domain.ChatResponse, error)
	ListChats(ctx context.Context, userID string) ([]domain.ChatResponse, error)
	JoinChat(ctx context.Context, userID, chatID string) (*domain.ChatResponse, error)
	LeaveChat(ctx context.Context, userID, chatID string) error
	RemoveMember(ctx context.Context, actorID, chatID, memberID string) error
	DeleteChat(ctx context.Context, actorID, chatID string) error
}

// MessageService handles the message dispatch pipeline: authorize,
// persist, then publish to live subscribers.
type MessageService interface {
	SendMessage(ctx context.Context, senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	ListMessages(ctx context.Context, userID, chatID string) ([]domain.MessageResponse, error)
	MarkRead(ctx context.Context, userID, messageID string) error
}

// FriendService handles friend requests. Accepting one establishes the
// friendship that authorizes a private chat between the pair.
type FriendService interface {
	SendRequest(ctx context.Context, requesterID string, req *domain.SendFriendRequestRequest) (*domain.FriendRequestResponse, error)
	Respond(ctx context.Context, userID, requestID string, req *domain.RespondFriendRequestRequest) (*domain.FriendRequestResponse, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequestResponse, error)
}

// SubscriptionService handles durable channel notification preferences.
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, channelID string) (*domain.ChannelSubscription, error)
	Unsubscribe(ctx context.Context, userID, channelID string) error
	ListSubscriptions(ctx context.Context, userID string) ([]domain.ChannelSubscription, error)
}
