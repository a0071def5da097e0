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

// subscriptionServiceImpl implements SubscriptionService interface.
type subscriptionServiceImpl struct {
	subs  repository.ChannelSubscriptionRepository
	chats repository.ChatRepository
}

// NewSubscriptionService creates a new channel subscription service.
func NewSubscriptionService(subs repository.ChannelSubscriptionRepository, chats repository.ChatRepository) SubscriptionService {
	return &subscriptionServiceImpl{subs: subs, chats: chats}
}

// Subscribe records a notification preference for a channel. Subscribing
// twice returns the existing subscription.
func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, userID, channelID string) (*domain.ChannelSubscription, error) {
	l := log.Ctx(ctx)

	chat, err := s.chats.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		l.Error().Err(err).Str(log.FieldChatID, channelID).Msg("failed to get channel")
		return nil, err
	}
	if chat.Type != domain.ChatTypeChannel {
		return nil, ErrNotChannel
	}
	if !membership.CanRead(userID, chat) {
		return nil, membership.ErrNotMember
	}

	existing, err := s.subs.GetByUserAndChannel(ctx, userID, channelID)
	if err != nil {
		l.Error().Err(err).Msg("failed to check existing subscription")
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sub := &domain.ChannelSubscription{
		UserID:               userID,
		ChannelID:            channelID,
		NotificationsEnabled: true,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		l.Error().Err(err).Msg("failed to create subscription")
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionSubscribe, userID, channelID, "channel subscribed")
	return sub, nil
}

// Unsubscribe removes the notification preference. Unsubscribing when
// not subscribed is a no-op.
func (s *subscriptionServiceImpl) Unsubscribe(ctx context.Context, userID, channelID string) error {
	removed, err := s.subs.Delete(ctx, userID, channelID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete subscription")
		return err
	}
	if removed {
		audit.LogWithTarget(ctx, audit.ActionUnsubscribe, userID, channelID, "channel unsubscribed")
	}
	return nil
}

// ListSubscriptions returns the user's channel subscriptions.
func (s *subscriptionServiceImpl) ListSubscriptions(ctx context.Context, userID string) ([]domain.ChannelSubscription, error) {
	subs, err := s.subs.ListForUser(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list subscriptions")
		return nil, err
	}
	return subs, nil
}

var _ SubscriptionService = (*subscriptionServiceImpl)(nil)
