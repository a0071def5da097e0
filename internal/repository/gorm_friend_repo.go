package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// GormFriendRequestRepository implements FriendRequestRepository using GORM.
type GormFriendRequestRepository struct {
	db *gorm.DB
}

// NewGormFriendRequestRepository creates a GORM-backed friend request repository.
func NewGormFriendRequestRepository(db *gorm.DB) *GormFriendRequestRepository {
	return &GormFriendRequestRepository{db: db}
}

// Create inserts a new friend request.
func (r *GormFriendRequestRepository) Create(ctx context.Context, req *domain.FriendRequest) error {
	l := log.Ctx(ctx)

	req.ID = uuid.New().String()

	model := domain.FriendRequestToModel(req)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create friend request in db")
		return err
	}

	req.CreatedAt = model.CreatedAt
	req.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a friend request by id.
func (r *GormFriendRequestRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	var model domain.FriendRequestModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to get friend request by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListForRecipient returns the requests addressed to the user, newest first.
func (r *GormFriendRequestRepository) ListForRecipient(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	var models []domain.FriendRequestModel
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list friend requests")
		return nil, err
	}

	reqs := make([]domain.FriendRequest, len(models))
	for i, m := range models {
		reqs[i] = *m.ToDomain()
	}
	return reqs, nil
}

// HasPendingBetween checks for a pending request from requester to recipient.
// Direction matters here: a pending request the other way does not block.
func (r *GormFriendRequestRepository) HasPendingBetween(ctx context.Context, requesterID, recipientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FriendRequestModel{}).
		Where("requester_id = ? AND recipient_id = ? AND status = ?",
			requesterID, recipientID, string(domain.FriendRequestPending)).
		Count(&count).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to check pending friend request")
		return false, err
	}
	return count > 0, nil
}

// HasAcceptedBetween checks for an accepted request between the pair,
// symmetric in direction.
func (r *GormFriendRequestRepository) HasAcceptedBetween(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FriendRequestModel{}).
		Where("status = ?", string(domain.FriendRequestAccepted)).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
			a, b, b, a).
		Count(&count).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to check accepted friendship")
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus transitions a request's status.
func (r *GormFriendRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.FriendRequestStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.FriendRequestModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to update friend request status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}

var _ FriendRequestRepository = (*GormFriendRequestRepository)(nil)
