package service

import (
	"context"
	"errors"

	"github.com/sorokindm/parley/internal/audit"
	"github.com/sorokindm/parley/internal/broker"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/membership"
	"github.com/sorokindm/parley/internal/repository"
	"github.com/sorokindm/parley/pkg/log"
)

// messageServiceImpl implements MessageService interface.
type messageServiceImpl struct {
	messages repository.MessageRepository
	chats    repository.ChatRepository
	broker   *broker.Broker
}

// NewMessageService creates a new message service.
func NewMessageService(messages repository.MessageRepository, chats repository.ChatRepository, b *broker.Broker) MessageService {
	return &messageServiceImpl{messages: messages, chats: chats, broker: b}
}

// SendMessage runs the dispatch pipeline: authorize the sender against
// the chat, persist the message, record it as the chat's last message,
// then publish to live subscribers. Persistence failures surface to the
// caller; delivery failures never do.
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	l := log.Ctx(ctx)

	chat, err := s.chats.GetByID(ctx, req.ChatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		l.Error().Err(err).Str(log.FieldChatID, req.ChatID).Msg("failed to get chat for send")
		return nil, err
	}

	if err := membership.AuthorizeWrite(senderID, chat); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:      req.ChatID,
		SenderID:    senderID,
		Text:        req.Text,
		ReadBy:      []string{senderID},
		Attachments: req.Attachments,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		l.Error().Err(err).Str(log.FieldChatID, req.ChatID).Msg("failed to persist message")
		return nil, err
	}

	if err := s.chats.SetLastMessage(ctx, chat.ID, msg.ID); err != nil {
		// The message is already durable. Losing the lastMessage pointer
		// is not worth failing the send.
		l.Warn().Err(err).Str(log.FieldChatID, chat.ID).Msg("failed to update last message pointer")
	}

	s.broker.Publish(chat.ID, &broker.Event{
		ChatID:      msg.ChatID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Text:        msg.Text,
		Attachments: msg.Attachments,
		CreatedAt:   msg.CreatedAt,
	})

	audit.LogWithTarget(ctx, audit.ActionSendMessage, senderID, msg.ID, "message sent")

	resp := msg.ToResponse()
	return &resp, nil
}

// ListMessages returns the chat's history for a member, oldest first.
func (s *messageServiceImpl) ListMessages(ctx context.Context, userID, chatID string) ([]domain.MessageResponse, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to get chat for history")
		return nil, err
	}

	if !membership.CanRead(userID, chat) {
		return nil, membership.ErrNotMember
	}

	msgs, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to list messages")
		return nil, err
	}

	resp := make([]domain.MessageResponse, len(msgs))
	for i := range msgs {
		resp[i] = msgs[i].ToResponse()
	}
	return resp, nil
}

// MarkRead records that the user has read the message. Requires
// membership in the message's chat.
func (s *messageServiceImpl) MarkRead(ctx context.Context, userID, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return repository.ErrMessageNotFound
		}
		return err
	}

	chat, err := s.chats.GetByID(ctx, msg.ChatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return ErrChatNotFound
		}
		return err
	}

	if !membership.CanRead(userID, chat) {
		return membership.ErrNotMember
	}

	if err := s.messages.MarkRead(ctx, messageID, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to mark message read")
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionMarkRead, userID, messageID, "message marked read")
	return nil
}

var _ MessageService = (*messageServiceImpl)(nil)
