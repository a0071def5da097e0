package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a GORM-backed message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a new message.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	msg.ID = uuid.New().String()

	model := domain.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldChatID, msg.ChatID).Msg("failed to create message in db")
		return err
	}

	msg.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldMessageID, msg.ID).Str(log.FieldChatID, msg.ChatID).Msg("message created in db")
	return nil
}

// GetByID returns a single message.
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model domain.MessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldMessageID, id).Msg("failed to get message")
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByChat returns all messages of a chat ordered by creation time ascending.
func (r *GormMessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to list messages")
		return nil, err
	}

	msgs := make([]domain.Message, len(models))
	for i, m := range models {
		msgs[i] = *m.ToDomain()
	}
	return msgs, nil
}

// MarkRead adds userID to the message's read set. ReadBy only ever grows.
func (r *GormMessageRepository) MarkRead(ctx context.Context, messageID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.MessageModel
		if err := tx.First(&model, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}

		for _, id := range model.ReadBy {
			if id == userID {
				return nil
			}
		}
		model.ReadBy = append(model.ReadBy, userID)

		return tx.Model(&domain.MessageModel{}).
			Where("id = ?", messageID).
			Update("read_by", model.ReadBy).Error
	})
}

var _ MessageRepository = (*GormMessageRepository)(nil)
