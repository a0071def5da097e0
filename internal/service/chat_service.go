package service

import (
	"context"
	"errors"

	"github.com/sorokindm/parley/internal/audit"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/membership"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/pkg/log"
)

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	chats   repository.ChatRepository
	users   repository.UserRepository
	friends repository.FriendRequestRepository
}

// NewChatService creates a new chat service.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, friends repository.FriendRequestRepository) ChatService {
	return &chatServiceImpl{chats: chats, users: users, friends: friends}
}

// CreateChat creates a conversation. The creator is always a member.
// Private chats require exactly two members with an accepted friendship;
// an existing private chat between the pair is returned instead of a
// duplicate.
func (s *chatServiceImpl) CreateChat(ctx context.Context, creatorID string, req *domain.CreateChatRequest) (*domain.ChatResponse, error) {
	l := log.Ctx(ctx)

	chatType := domain.ChatType(req.Type)
	if !chatType.Valid() {
		return nil, ErrInvalidChatType
	}

	members := dedupeMembers(req.Members, creatorID)

	count, err := s.users.CountByIDs(ctx, members)
	if err != nil {
		l.Error().Err(err).Msg("failed to count chat members")
		return nil, err
	}
	if count != int64(len(members)) {
		return nil, ErrUnknownMembers
	}

	isPrivate := req.IsPrivate || chatType == domain.ChatTypePrivate
	if isPrivate {
		chatType = domain.ChatTypePrivate

		if len(members) == 2 {
			other := members[0]
			if other == creatorID {
				other = members[1]
			}

			existing, err := s.chats.FindPrivateBetween(ctx, creatorID, other)
			if err != nil {
				l.Error().Err(err).Msg("failed to look up existing private chat")
				return nil, err
			}
			if existing != nil {
				resp := existing.ToResponse()
				return &resp, nil
			}

			friends, err := s.friends.HasAcceptedBetween(ctx, creatorID, other)
			if err != nil {
				l.Error().Err(err).Msg("failed to check friendship")
				return nil, err
			}
			if err := membership.CanCreatePrivate(members, friends); err != nil {
				return nil, err
			}
		} else {
			if err := membership.CanCreatePrivate(members, false); err != nil {
				return nil, err
			}
		}
	}

	chat := &domain.Chat{
		Title:     req.Title,
		IsPrivate: isPrivate,
		Type:      chatType,
		CreatorID: creatorID,
		Members:   members,
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		l.Error().Err(err).Msg("failed to create chat")
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionCreateChat, creatorID, chat.ID, "chat created")

	resp := chat.ToResponse()
	return &resp, nil
}

// GetChat returns a chat the user is a member of.
func (s *chatServiceImpl) GetChat(ctx context.Context, userID, chatID string) (*domain.ChatResponse, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !membership.CanRead(userID, chat) {
		return nil, membership.ErrNotMember
	}

	resp := chat.ToResponse()
	return &resp, nil
}

// ListChats returns the user's conversations, most recently active first.
func (s *chatServiceImpl) ListChats(ctx context.Context, userID string) ([]domain.ChatResponse, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list chats")
		return nil, err
	}

	resp := make([]domain.ChatResponse, len(chats))
	for i := range chats {
		resp[i] = chats[i].ToResponse()
	}
	return resp, nil
}

// JoinChat adds the user to a non-private chat. Joining a chat the user
// already belongs to succeeds without change.
func (s *chatServiceImpl) JoinChat(ctx context.Context, userID, chatID string) (*domain.ChatResponse, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if chat.HasMember(userID) {
		resp := chat.ToResponse()
		return &resp, nil
	}

	if err := membership.CanJoin(userID, chat); err != nil {
		return nil, err
	}

	if err := s.chats.AddMember(ctx, chatID, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to add member")
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionJoinChat, userID, chatID, "joined chat")

	chat.Members = append(chat.Members, userID)
	resp := chat.ToResponse()
	return &resp, nil
}

// LeaveChat removes the user from the chat. The creator may leave; the
// creator-only restriction applies to removing others, not to leaving.
func (s *chatServiceImpl) LeaveChat(ctx context.Context, userID, chatID string) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}

	if !chat.HasMember(userID) {
		return membership.ErrNotMember
	}

	if err := s.chats.RemoveMember(ctx, chatID, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to leave chat")
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionLeaveChat, userID, chatID, "left chat")
	return nil
}

// RemoveMember removes another member from the chat. Only the creator
// may do this, and not against themselves.
func (s *chatServiceImpl) RemoveMember(ctx context.Context, actorID, chatID, memberID string) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}

	if err := membership.CanRemoveMember(actorID, memberID, chat); err != nil {
		return err
	}

	if !chat.HasMember(memberID) {
		return membership.ErrNotMember
	}

	if err := s.chats.RemoveMember(ctx, chatID, memberID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to remove member")
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionRemoveMember, actorID, chatID, "member removed")
	return nil
}

// DeleteChat soft deletes the chat. Creator only.
func (s *chatServiceImpl) DeleteChat(ctx context.Context, actorID, chatID string) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}

	if err := membership.CanDelete(actorID, chat); err != nil {
		return err
	}

	if err := s.chats.SoftDelete(ctx, chatID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to delete chat")
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionDeleteChat, actorID, chatID, "chat deleted")
	return nil
}

func (s *chatServiceImpl) getChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to get chat")
		return nil, err
	}
	return chat, nil
}

// dedupeMembers returns the unique member set with the creator included.
func dedupeMembers(members []string, creatorID string) []string {
	seen := map[string]struct{}{creatorID: {}}
	out := []string{creatorID}
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

var _ ChatService = (*chatServiceImpl)(nil)
