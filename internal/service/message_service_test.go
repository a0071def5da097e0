package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sorokindm/parley/internal/broker"
	"github.com/sorokindm/parley/internal/domain"
	"github.com/sorokindm/parley/internal/membership"
)

func receiveEvent(t *testing.T, sub *broker.Subscription) *broker.Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func expectNoEvent(t *testing.T, sub *broker.Subscription) {
	t.Helper()
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event delivered: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func newMessageFixture() (*fakeChatRepo, *fakeMessageRepo, *broker.Broker, MessageService) {
	chats := newFakeChatRepo()
	messages := newFakeMessageRepo()
	b := broker.New(broker.Config{})
	svc := NewMessageService(messages, chats, b)
	return chats, messages, b, svc
}

func TestSendMessagePersistsThenPublishes(t *testing.T) {
	chats, messages, b, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice", "bob"}})

	sub := b.Subscribe("c1", broker.FilterContext{ChatID: "c1", UserID: "bob"})
	defer sub.Close()

	resp, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "c1", Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	stored, err := messages.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if len(stored.ReadBy) != 1 || stored.ReadBy[0] != "alice" {
		t.Errorf("ReadBy = %v, want [alice]", stored.ReadBy)
	}

	e := receiveEvent(t, sub)
	if e.MessageID != resp.ID {
		t.Errorf("event MessageID = %q, want %q", e.MessageID, resp.ID)
	}
	if e.SenderID != "alice" || e.Text != "hello" {
		t.Errorf("event = %+v", e)
	}

	chat, _ := chats.GetByID(context.Background(), "c1")
	if chat.LastMessageID != resp.ID {
		t.Errorf("LastMessageID = %q, want %q", chat.LastMessageID, resp.ID)
	}
}

func TestSendMessageNonMemberDenied(t *testing.T) {
	chats, _, b, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice"}})

	sub := b.Subscribe("c1", broker.FilterContext{ChatID: "c1", UserID: "alice"})
	defer sub.Close()

	_, err := svc.SendMessage(context.Background(), "mallory", &domain.SendMessageRequest{ChatID: "c1", Text: "hi"})
	if !errors.Is(err, membership.ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
	expectNoEvent(t, sub)
}

func TestSendMessageChannelCreatorOnly(t *testing.T) {
	chats, _, _, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "ch1", Type: domain.ChatTypeChannel, CreatorID: "alice", Members: []string{"alice", "bob"}})

	if _, err := svc.SendMessage(context.Background(), "bob", &domain.SendMessageRequest{ChatID: "ch1", Text: "hi"}); !errors.Is(err, membership.ErrChannelPostDenied) {
		t.Fatalf("member post to channel: err = %v, want ErrChannelPostDenied", err)
	}

	if _, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "ch1", Text: "announcement"}); err != nil {
		t.Fatalf("creator post to channel: %v", err)
	}
}

func TestSendMessagePersistFailureSkipsPublish(t *testing.T) {
	chats, messages, b, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice", "bob"}})
	messages.createErr = errors.New("disk full")

	sub := b.Subscribe("c1", broker.FilterContext{ChatID: "c1", UserID: "bob"})
	defer sub.Close()

	_, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "c1", Text: "hi"})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	expectNoEvent(t, sub)
}

func TestSendMessageChatNotFound(t *testing.T) {
	_, _, _, svc := newMessageFixture()
	_, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "nope", Text: "hi"})
	if !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("err = %v, want ErrChatNotFound", err)
	}
}

func TestListMessagesRequiresMembership(t *testing.T) {
	chats, _, _, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice"}})

	if _, err := svc.ListMessages(context.Background(), "mallory", "c1"); !errors.Is(err, membership.ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}

func TestMarkReadGrowsReadSet(t *testing.T) {
	chats, messages, _, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice", "bob"}})

	resp, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "c1", Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := svc.MarkRead(context.Background(), "bob", resp.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	// Marking twice must not duplicate.
	if err := svc.MarkRead(context.Background(), "bob", resp.ID); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}

	stored, _ := messages.GetByID(context.Background(), resp.ID)
	if len(stored.ReadBy) != 2 {
		t.Errorf("ReadBy = %v, want [alice bob]", stored.ReadBy)
	}
}

func TestMarkReadRequiresMembership(t *testing.T) {
	chats, _, _, svc := newMessageFixture()
	chats.add(&domain.Chat{ID: "c1", Type: domain.ChatTypeGroup, CreatorID: "alice", Members: []string{"alice"}})

	resp, err := svc.SendMessage(context.Background(), "alice", &domain.SendMessageRequest{ChatID: "c1", Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := svc.MarkRead(context.Background(), "mallory", resp.ID); !errors.Is(err, membership.ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}
