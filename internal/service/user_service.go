package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sorokindm/parley/internal/audit"
	"github.com/sorokindm/parley/internal/cache"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/pkg/jwt"
	"github.com/sorokindm/parley/pkg/log"
)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo        repository.UserRepository
	tokens      *jwt.Manager
	presence    cache.PresenceStore
	presenceTTL time.Duration
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens *jwt.Manager, presence cache.PresenceStore, presenceTTL time.Duration) UserService {
	return &userServiceImpl{repo: repo, tokens: tokens, presence: presence, presenceTTL: presenceTTL}
}

// Register registers a new user.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	accessToken, refreshToken, expiresAt, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Login authenticates a user.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Email, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Email, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresAt, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	if err := s.presence.SetOnline(ctx, user.ID, s.presenceTTL); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to mark user online in presence store")
	}
	if err := s.repo.SetOnline(ctx, user.ID, true); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to set online flag")
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout revokes the user's outstanding tokens and clears presence.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	l := log.Ctx(ctx)

	s.tokens.RevokeUserTokens(userID)

	if err := s.presence.SetOffline(ctx, userID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to clear presence")
	}
	if err := s.repo.SetOnline(ctx, userID, false); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to clear online flag")
	}

	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (s *userServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	accessToken, refreshToken, expiresAt, err := s.tokens.RefreshTokens(req.RefreshToken)
	if err != nil {
		l.Warn().Err(err).Msg("failed to refresh token")
		return nil, ErrInvalidCredentials
	}

	claims, err := s.tokens.ValidateToken(accessToken)
	if err != nil {
		l.Warn().Err(err).Msg("refreshed token validation failed")
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to get user after token refresh")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "token refreshed")

	return &domain.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to get user")
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// ListUsers returns all registered users with their live presence overlaid
// on the persisted online flag.
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	l := log.Ctx(ctx)

	users, err := s.repo.List(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list users")
		return nil, err
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	online, err := s.presence.OnlineAmong(ctx, ids)
	if err != nil {
		l.Warn().Err(err).Msg("failed to query presence, falling back to persisted flags")
	}
	live := make(map[string]bool, len(online))
	for _, id := range online {
		live[id] = true
	}

	resp := make([]domain.UserResponse, len(users))
	for i := range users {
		resp[i] = users[i].ToResponse()
		if err == nil {
			resp[i].IsOnline = live[users[i].ID]
		}
	}
	return resp, nil
}

var _ UserService = (*userServiceImpl)(nil)
