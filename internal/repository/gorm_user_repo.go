package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/pkg/log"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	l := log.Ctx(ctx)

	user.ID = uuid.New().String()

	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		l.Error().Err(err).Msg("failed to create user in db")
		return err
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by id, skipping soft-deleted accounts.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldUserID, id).Msg("failed to get user by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to get user by email")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns all non-deleted users.
func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []domain.UserModel
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&models).Error; err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list users")
		return nil, err
	}

	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = *m.ToDomain()
	}
	return users, nil
}

// CountByIDs counts how many of the given ids exist and are not deleted.
func (r *GormUserRepository) CountByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to count users by ids")
		return 0, err
	}
	return count, nil
}

// SetOnline flips the presence flag persisted with the account.
func (r *GormUserRepository) SetOnline(ctx context.Context, id string, online bool) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).
		Update("is_online", online)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Str(log.FieldUserID, id).Msg("failed to update online flag")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

var _ UserRepository = (*GormUserRepository)(nil)
