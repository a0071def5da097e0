package service

import (
	"context"
	"errors"

	"github.com/sorokindm/parley/internal/audit"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/pkg/log"
)

// friendServiceImpl implements FriendService interface.
type friendServiceImpl struct {
	friends repository.FriendRequestRepository
	users   repository.UserRepository
	chats   repository.ChatRepository
}

// NewFriendService creates a new friend service.
func NewFriendService(friends repository.FriendRequestRepository, users repository.UserRepository, chats repository.ChatRepository) FriendService {
	return &friendServiceImpl{friends: friends, users: users, chats: chats}
}

// SendRequest creates a pending friend request toward recipient.
func (s *friendServiceImpl) SendRequest(ctx context.Context, requesterID string, req *domain.SendFriendRequestRequest) (*domain.FriendRequestResponse, error) {
	l := log.Ctx(ctx)

	if req.RecipientID == requesterID {
		return nil, ErrSelfFriendRequest
	}

	if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to look up friend request recipient")
		return nil, err
	}

	// A pending request in either direction blocks a new one.
	pending, err := s.friends.HasPendingBetween(ctx, requesterID, req.RecipientID)
	if err != nil {
		l.Error().Err(err).Msg("failed to check pending friend request")
		return nil, err
	}
	if !pending {
		pending, err = s.friends.HasPendingBetween(ctx, req.RecipientID, requesterID)
		if err != nil {
			l.Error().Err(err).Msg("failed to check pending friend request")
			return nil, err
		}
	}
	if pending {
		return nil, ErrDuplicateFriendRequest
	}

	fr := &domain.FriendRequest{
		RequesterID: requesterID,
		RecipientID: req.RecipientID,
		Status:      domain.FriendRequestPending,
		Message:     req.Message,
	}

	if err := s.friends.Create(ctx, fr); err != nil {
		l.Error().Err(err).Msg("failed to create friend request")
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionFriendRequest, requesterID, req.RecipientID, "friend request sent")

	resp := fr.ToResponse()
	return &resp, nil
}

// Respond resolves a pending friend request. Only the recipient may
// respond, and only once. Accepting establishes the friendship and
// creates the pair's private chat if one does not exist yet.
func (s *friendServiceImpl) Respond(ctx context.Context, userID, requestID string, req *domain.RespondFriendRequestRequest) (*domain.FriendRequestResponse, error) {
	l := log.Ctx(ctx)

	fr, err := s.friends.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrFriendRequestNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		l.Error().Err(err).Msg("failed to get friend request")
		return nil, err
	}

	if fr.RecipientID != userID {
		return nil, ErrNotRecipient
	}
	if fr.Status != domain.FriendRequestPending {
		return nil, ErrAlreadyResponded
	}

	status := domain.FriendRequestStatus(req.Status)
	if err := s.friends.UpdateStatus(ctx, requestID, status); err != nil {
		l.Error().Err(err).Msg("failed to update friend request status")
		return nil, err
	}
	fr.Status = status

	if status == domain.FriendRequestAccepted {
		if err := s.ensurePrivateChat(ctx, fr.RequesterID, fr.RecipientID); err != nil {
			// The friendship is established. The private chat can be
			// created later via the chat API.
			l.Warn().Err(err).Msg("failed to create private chat after friend accept")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionFriendRespond, userID, string(status), "friend request responded")

	resp := fr.ToResponse()
	return &resp, nil
}

// ListIncoming returns friend requests addressed to the user.
func (s *friendServiceImpl) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequestResponse, error) {
	reqs, err := s.friends.ListForRecipient(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list friend requests")
		return nil, err
	}

	resp := make([]domain.FriendRequestResponse, len(reqs))
	for i := range reqs {
		resp[i] = reqs[i].ToResponse()
	}
	return resp, nil
}

func (s *friendServiceImpl) ensurePrivateChat(ctx context.Context, a, b string) error {
	existing, err := s.chats.FindPrivateBetween(ctx, a, b)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	chat := &domain.Chat{
		IsPrivate: true,
		Type:      domain.ChatTypePrivate,
		CreatorID: a,
		Members:   []string{a, b},
	}
	return s.chats.Create(ctx, chat)
}

var _ FriendService = (*friendServiceImpl)(nil)
