package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// GormChannelSubscriptionRepository implements ChannelSubscriptionRepository
// using GORM.
type GormChannelSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormChannelSubscriptionRepository creates a GORM-backed channel
// subscription repository.
func NewGormChannelSubscriptionRepository(db *gorm.DB) *GormChannelSubscriptionRepository {
	return &GormChannelSubscriptionRepository{db: db}
}

// Create inserts a subscription row.
func (r *GormChannelSubscriptionRepository) Create(ctx context.Context, sub *domain.ChannelSubscription) error {
	sub.ID = uuid.New().String()

	model := domain.ChannelSubscriptionModel{
		ID:                   sub.ID,
		UserID:               sub.UserID,
		ChannelID:            sub.ChannelID,
		NotificationsEnabled: sub.NotificationsEnabled,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, sub.UserID).Msg("failed to create channel subscription")
		return err
	}

	sub.CreatedAt = model.CreatedAt
	return nil
}

// GetByUserAndChannel returns the existing subscription or nil.
func (r *GormChannelSubscriptionRepository) GetByUserAndChannel(ctx context.Context, userID, channelID string) (*domain.ChannelSubscription, error) {
	var model domain.ChannelSubscriptionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to get channel subscription")
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes the subscription and reports whether one existed.
func (r *GormChannelSubscriptionRepository) Delete(ctx context.Context, userID, channelID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Delete(&domain.ChannelSubscriptionModel{})
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to delete channel subscription")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListForUser returns the user's subscriptions, newest first.
func (r *GormChannelSubscriptionRepository) ListForUser(ctx context.Context, userID string) ([]domain.ChannelSubscription, error) {
	var models []domain.ChannelSubscriptionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list channel subscriptions")
		return nil, err
	}

	subs := make([]domain.ChannelSubscription, len(models))
	for i, m := range models {
		subs[i] = *m.ToDomain()
	}
	return subs, nil
}

var _ ChannelSubscriptionRepository = (*GormChannelSubscriptionRepository)(nil)
