package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sorokindm/parley/internal/cache"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/repository"
)

// In-memory repository fakes for service tests.

type fakePresenceStore struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{online: make(map[string]bool)}
}

func (p *fakePresenceStore) SetOnline(_ context.Context, userID string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = true
	return nil
}

func (p *fakePresenceStore) SetOffline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

func (p *fakePresenceStore) RefreshTTL(_ context.Context, userID string, _ time.Duration) error {
	return nil
}

func (p *fakePresenceStore) IsOnline(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID], nil
}

func (p *fakePresenceStore) OnlineAmong(_ context.Context, userIDs []string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, id := range userIDs {
		if p.online[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (p *fakePresenceStore) Close() error { return nil }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(id, email, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = &domain.User{ID: id, Email: email, Username: username}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) CountByIDs(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.users[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) SetOnline(_ context.Context, id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsOnline = online
	return nil
}

type fakeChatRepo struct {
	mu      sync.Mutex
	chats   map[string]*domain.Chat
	nextID  int
	lastErr error // when set, Create fails with it
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*domain.Chat)}
}

func (r *fakeChatRepo) add(chat *domain.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chat.ID] = chat
}

func (r *fakeChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastErr != nil {
		return r.lastErr
	}
	r.nextID++
	chat.ID = fmt.Sprintf("chat-%d", r.nextID)
	chat.CreatedAt = time.Now()
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrChatNotFound
	}
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	return &cp, nil
}

func (r *fakeChatRepo) ListForUser(_ context.Context, userID string) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Chat
	for _, c := range r.chats {
		if c.HasMember(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) FindPrivateBetween(_ context.Context, a, b string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.Type == domain.ChatTypePrivate && c.HasMember(a) && c.HasMember(b) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) AddMember(_ context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrChatNotFound
	}
	if !c.HasMember(userID) {
		c.Members = append(c.Members, userID)
	}
	return nil
}

func (r *fakeChatRepo) RemoveMember(_ context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrChatNotFound
	}
	for i, m := range c.Members {
		if m == userID {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeChatRepo) SetLastMessage(_ context.Context, chatID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrChatNotFound
	}
	c.LastMessageID = messageID
	return nil
}

func (r *fakeChatRepo) SoftDelete(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chatID]; !ok {
		return repository.ErrChatNotFound
	}
	delete(r.chats, chatID)
	return nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  map[string]*domain.Message
	nextID    int
	createErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*domain.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	msg.ID = fmt.Sprintf("msg-%d", r.nextID)
	msg.CreatedAt = time.Now()
	r.messages[msg.ID] = msg
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListByChat(_ context.Context, chatID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, messageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return repository.ErrMessageNotFound
	}
	for _, id := range m.ReadBy {
		if id == userID {
			return nil
		}
	}
	m.ReadBy = append(m.ReadBy, userID)
	return nil
}

type fakeFriendRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.FriendRequest
	nextID   int
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{requests: make(map[string]*domain.FriendRequest)}
}

func (r *fakeFriendRepo) addAccepted(a, b string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("fr-%d", r.nextID)
	r.requests[id] = &domain.FriendRequest{
		ID: id, RequesterID: a, RecipientID: b,
		Status: domain.FriendRequestAccepted,
	}
}

func (r *fakeFriendRepo) Create(_ context.Context, req *domain.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = fmt.Sprintf("fr-%d", r.nextID)
	req.CreatedAt = time.Now()
	r.requests[req.ID] = req
	return nil
}

func (r *fakeFriendRepo) GetByID(_ context.Context, id string) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrFriendRequestNotFound
	}
	cp := *fr
	return &cp, nil
}

func (r *fakeFriendRepo) ListForRecipient(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FriendRequest
	for _, fr := range r.requests {
		if fr.RecipientID == userID {
			out = append(out, *fr)
		}
	}
	return out, nil
}

func (r *fakeFriendRepo) HasPendingBetween(_ context.Context, requesterID, recipientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fr := range r.requests {
		if fr.RequesterID == requesterID && fr.RecipientID == recipientID && fr.Status == domain.FriendRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendRepo) HasAcceptedBetween(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fr := range r.requests {
		if fr.Status != domain.FriendRequestAccepted {
			continue
		}
		if (fr.RequesterID == a && fr.RecipientID == b) || (fr.RequesterID == b && fr.RecipientID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendRepo) UpdateStatus(_ context.Context, id string, status domain.FriendRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr, ok := r.requests[id]
	if !ok {
		return repository.ErrFriendRequestNotFound
	}
	fr.Status = status
	fr.UpdatedAt = time.Now()
	return nil
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	subs   map[string]*domain.ChannelSubscription
	nextID int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*domain.ChannelSubscription)}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.ChannelSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	sub.ID = fmt.Sprintf("sub-%d", r.nextID)
	sub.CreatedAt = time.Now()
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubscriptionRepo) GetByUserAndChannel(_ context.Context, userID, channelID string) (*domain.ChannelSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.UserID == userID && s.ChannelID == channelID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) Delete(_ context.Context, userID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		if s.UserID == userID && s.ChannelID == channelID {
			delete(r.subs, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) ListForUser(_ context.Context, userID string) ([]domain.ChannelSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChannelSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

var (
	_ repository.UserRepository                = (*fakeUserRepo)(nil)
	_ repository.ChatRepository                = (*fakeChatRepo)(nil)
	_ repository.MessageRepository             = (*fakeMessageRepo)(nil)
	_ repository.FriendRequestRepository       = (*fakeFriendRepo)(nil)
	_ repository.ChannelSubscriptionRepository = (*fakeSubscriptionRepo)(nil)
	_ cache.PresenceStore                      = (*fakePresenceStore)(nil)
)
