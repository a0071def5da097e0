package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/sorokindm/parley/pkg/database"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string         `gorm:"type:varchar(36);primaryKey"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	IsOnline     bool           `gorm:"default:false"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		IsOnline:     m.IsOnline,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsOnline:     u.IsOnline,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ChatModel is the GORM model for the chats table. Membership lives in
// chat_members so it can be queried server-side.
type ChatModel struct {
	ID            string         `gorm:"type:varchar(36);primaryKey"`
	Title         string         `gorm:"type:varchar(200)"`
	IsPrivate     bool           `gorm:"not null"`
	Type          string         `gorm:"type:varchar(20);index;not null"`
	CreatorID     string         `gorm:"type:varchar(36);index;not null"`
	LastMessageID string         `gorm:"type:varchar(36)"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatModel) TableName() string { return "chats" }

// ToDomain converts ChatModel to domain Chat. Members must be attached by
// the repository from chat_members rows.
func (m *ChatModel) ToDomain(members []string) *Chat {
	return &Chat{
		ID:            m.ID,
		Title:         m.Title,
		IsPrivate:     m.IsPrivate,
		Type:          ChatType(m.Type),
		CreatorID:     m.CreatorID,
		Members:       members,
		LastMessageID: m.LastMessageID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ChatToModel converts domain Chat to ChatModel.
func ChatToModel(c *Chat) *ChatModel {
	return &ChatModel{
		ID:            c.ID,
		Title:         c.Title,
		IsPrivate:     c.IsPrivate,
		Type:          string(c.Type),
		CreatorID:     c.CreatorID,
		LastMessageID: c.LastMessageID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ChatMemberModel is one membership row in the chat_members table.
type ChatMemberModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ChatID    string    `gorm:"type:varchar(36);uniqueIndex:idx_chat_member;not null"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex:idx_chat_member;index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMemberModel) TableName() string { return "chat_members" }

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID          string               `gorm:"type:varchar(36);primaryKey"`
	ChatID      string               `gorm:"type:varchar(36);index;not null"`
	SenderID    string               `gorm:"type:varchar(36);index"`
	Text        string               `gorm:"type:text;not null"`
	ReadBy      database.StringArray `gorm:"type:text"`
	Attachments database.StringArray `gorm:"type:text"`
	CreatedAt   time.Time            `gorm:"autoCreateTime;index"`
}

func (MessageModel) TableName() string { return "messages" }

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Text:        m.Text,
		ReadBy:      []string(m.ReadBy),
		Attachments: []string(m.Attachments),
		CreatedAt:   m.CreatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		ChatID:      msg.ChatID,
		SenderID:    msg.SenderID,
		Text:        msg.Text,
		ReadBy:      database.StringArray(msg.ReadBy),
		Attachments: database.StringArray(msg.Attachments),
		CreatedAt:   msg.CreatedAt,
	}
}

// FriendRequestModel is the GORM model for the friend_requests table.
type FriendRequestModel struct {
	ID          string         `gorm:"type:varchar(36);primaryKey"`
	RequesterID string         `gorm:"type:varchar(36);index;not null"`
	RecipientID string         `gorm:"type:varchar(36);index;not null"`
	Status      string         `gorm:"type:varchar(20);index;not null;default:'pending'"`
	Message     string         `gorm:"type:varchar(500)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (FriendRequestModel) TableName() string { return "friend_requests" }

// ToDomain converts FriendRequestModel to domain FriendRequest.
func (m *FriendRequestModel) ToDomain() *FriendRequest {
	return &FriendRequest{
		ID:          m.ID,
		RequesterID: m.RequesterID,
		RecipientID: m.RecipientID,
		Status:      FriendRequestStatus(m.Status),
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FriendRequestToModel converts domain FriendRequest to FriendRequestModel.
func FriendRequestToModel(f *FriendRequest) *FriendRequestModel {
	return &FriendRequestModel{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		RecipientID: f.RecipientID,
		Status:      string(f.Status),
		Message:     f.Message,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ChannelSubscriptionModel is the GORM model for the channel_subscriptions table.
type ChannelSubscriptionModel struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey"`
	UserID               string    `gorm:"type:varchar(36);uniqueIndex:idx_user_channel;not null"`
	ChannelID            string    `gorm:"type:varchar(36);uniqueIndex:idx_user_channel;not null"`
	NotificationsEnabled bool      `gorm:"default:true"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

func (ChannelSubscriptionModel) TableName() string { return "channel_subscriptions" }

// ToDomain converts ChannelSubscriptionModel to domain ChannelSubscription.
func (m *ChannelSubscriptionModel) ToDomain() *ChannelSubscription {
	return &ChannelSubscription{
		ID:                   m.ID,
		UserID:               m.UserID,
		ChannelID:            m.ChannelID,
		NotificationsEnabled: m.NotificationsEnabled,
		CreatedAt:            m.CreatedAt,
	}
}
