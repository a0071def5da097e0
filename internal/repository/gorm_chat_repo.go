package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// GormChatRepository implements ChatRepository using GORM. Membership is a
// chat_members row per (chat, user) so listing a user's chats stays a join,
// not a scan.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a GORM-backed chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Create inserts the chat and its initial membership rows in one transaction.
func (r *GormChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	l := log.Ctx(ctx)

	chat.ID = uuid.New().String()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := domain.ChatToModel(chat)
		if err := tx.Create(model).Error; err != nil {
			l.Error().Err(err).Msg("failed to create chat in db")
			return err
		}
		chat.CreatedAt = model.CreatedAt
		chat.UpdatedAt = model.UpdatedAt

		for _, userID := range chat.Members {
			row := domain.ChatMemberModel{ChatID: chat.ID, UserID: userID}
			if err := tx.Create(&row).Error; err != nil {
				l.Error().Err(err).Str(log.FieldChatID, chat.ID).Msg("failed to create membership row")
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a chat with its member set, excluding soft-deleted chats.
func (r *GormChatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var model domain.ChatModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldChatID, id).Msg("failed to get chat by id")
		return nil, result.Error
	}

	members, err := r.membersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members), nil
}

// ListForUser returns the chats the user belongs to, most recently updated first.
func (r *GormChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	l := log.Ctx(ctx)

	var models []domain.ChatModel
	err := r.db.WithContext(ctx).Model(&domain.ChatModel{}).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list chats for user")
		return nil, err
	}

	chats := make([]domain.Chat, len(models))
	for i, m := range models {
		members, err := r.membersOf(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		chats[i] = *m.ToDomain(members)
	}
	return chats, nil
}

// FindPrivateBetween returns the private chat containing both users, or
// nil when none exists.
func (r *GormChatRepository) FindPrivateBetween(ctx context.Context, a, b string) (*domain.Chat, error) {
	var model domain.ChatModel
	err := r.db.WithContext(ctx).Model(&domain.ChatModel{}).
		Where("chats.type = ?", string(domain.ChatTypePrivate)).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", a).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", b).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to find private chat between users")
		return nil, err
	}

	members, err := r.membersOf(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members), nil
}

// AddMember inserts a membership row. Adding an existing member is a no-op.
func (r *GormChatRepository) AddMember(ctx context.Context, chatID, userID string) error {
	row := domain.ChatMemberModel{ChatID: chatID, UserID: userID}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Str(log.FieldUserID, userID).Msg("failed to add chat member")
		return err
	}
	return nil
}

// RemoveMember deletes a membership row. Removing a non-member is a no-op.
func (r *GormChatRepository) RemoveMember(ctx context.Context, chatID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.ChatMemberModel{})
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldChatID, chatID).Str(log.FieldUserID, userID).Msg("failed to remove chat member")
		return result.Error
	}
	return nil
}

// SetLastMessage moves the chat's last-message pointer.
func (r *GormChatRepository) SetLastMessage(ctx context.Context, chatID, messageID string) error {
	result := r.db.WithContext(ctx).Model(&domain.ChatModel{}).
		Where("id = ?", chatID).
		Update("last_message_id", messageID)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to set last message")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// SoftDelete marks the chat deleted. Membership rows stay for history.
func (r *GormChatRepository) SoftDelete(ctx context.Context, chatID string) error {
	result := r.db.WithContext(ctx).Delete(&domain.ChatModel{}, "id = ?", chatID)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to delete chat")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *GormChatRepository) membersOf(ctx context.Context, chatID string) ([]string, error) {
	var rows []domain.ChatMemberModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to load chat members")
		return nil, err
	}

	members := make([]string, len(rows))
	for i, row := range rows {
		members[i] = row.UserID
	}
	return members, nil
}

var _ ChatRepository = (*GormChatRepository)(nil)
