package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sorokindm/parley/internal/domain"
)

func newFriendFixture() (*fakeFriendRepo, *fakeUserRepo, *fakeChatRepo, FriendService) {
	friends := newFakeFriendRepo()
	users := newFakeUserRepo()
	chats := newFakeChatRepo()
	svc := NewFriendService(friends, users, chats)
	return friends, users, chats, svc
}

func TestSendFriendRequest(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")

	resp, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob", Message: "hi"})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if resp.Status != domain.FriendRequestPending {
		t.Errorf("Status = %q, want pending", resp.Status)
	}
}

func TestSendFriendRequestToSelf(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")

	_, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "alice"})
	if !errors.Is(err, ErrSelfFriendRequest) {
		t.Fatalf("err = %v, want ErrSelfFriendRequest", err)
	}
}

func TestSendFriendRequestUnknownRecipient(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")

	_, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "ghost"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestDuplicatePendingRequestBlocked(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")

	if _, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"}); !errors.Is(err, ErrDuplicateFriendRequest) {
		t.Fatalf("same direction: err = %v, want ErrDuplicateFriendRequest", err)
	}
	// Reverse direction is blocked by the same pending request.
	if _, err := svc.SendRequest(context.Background(), "bob", &domain.SendFriendRequestRequest{RecipientID: "alice"}); !errors.Is(err, ErrDuplicateFriendRequest) {
		t.Fatalf("reverse direction: err = %v, want ErrDuplicateFriendRequest", err)
	}
}

func TestRespondAcceptCreatesPrivateChat(t *testing.T) {
	_, users, chats, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")

	req, err := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	resp, err := svc.Respond(context.Background(), "bob", req.ID, &domain.RespondFriendRequestRequest{Status: "accepted"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Status != domain.FriendRequestAccepted {
		t.Errorf("Status = %q, want accepted", resp.Status)
	}

	chat, err := chats.FindPrivateBetween(context.Background(), "alice", "bob")
	if err != nil || chat == nil {
		t.Fatalf("private chat not created: chat=%v err=%v", chat, err)
	}
	if len(chat.Members) != 2 {
		t.Errorf("Members = %v, want the pair", chat.Members)
	}
}

func TestRespondAcceptKeepsExistingPrivateChat(t *testing.T) {
	_, users, chats, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")
	chats.add(&domain.Chat{ID: "p1", Type: domain.ChatTypePrivate, IsPrivate: true, CreatorID: "alice", Members: []string{"alice", "bob"}})

	req, _ := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"})
	if _, err := svc.Respond(context.Background(), "bob", req.ID, &domain.RespondFriendRequestRequest{Status: "accepted"}); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	got, _ := chats.ListForUser(context.Background(), "alice")
	if len(got) != 1 {
		t.Errorf("alice has %d private chats, want 1", len(got))
	}
}

func TestRespondRecipientOnly(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")

	req, _ := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"})

	if _, err := svc.Respond(context.Background(), "alice", req.ID, &domain.RespondFriendRequestRequest{Status: "accepted"}); !errors.Is(err, ErrNotRecipient) {
		t.Fatalf("requester responds: err = %v, want ErrNotRecipient", err)
	}
	if _, err := svc.Respond(context.Background(), "carol", req.ID, &domain.RespondFriendRequestRequest{Status: "accepted"}); !errors.Is(err, ErrNotRecipient) {
		t.Fatalf("third party responds: err = %v, want ErrNotRecipient", err)
	}
}

func TestRespondOnlyOnce(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")

	req, _ := svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"})
	if _, err := svc.Respond(context.Background(), "bob", req.ID, &domain.RespondFriendRequestRequest{Status: "rejected"}); err != nil {
		t.Fatalf("first response: %v", err)
	}
	if _, err := svc.Respond(context.Background(), "bob", req.ID, &domain.RespondFriendRequestRequest{Status: "accepted"}); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("second response: err = %v, want ErrAlreadyResponded", err)
	}
}

func TestListIncoming(t *testing.T) {
	_, users, _, svc := newFriendFixture()
	users.add("alice", "alice@example.com", "alice")
	users.add("bob", "bob@example.com", "bob")
	users.add("carol", "carol@example.com", "carol")

	svc.SendRequest(context.Background(), "alice", &domain.SendFriendRequestRequest{RecipientID: "bob"})
	svc.SendRequest(context.Background(), "carol", &domain.SendFriendRequestRequest{RecipientID: "bob"})

	got, err := svc.ListIncoming(context.Background(), "bob")
	if err != nil {
		t.Fatalf("ListIncoming: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d requests, want 2", len(got))
	}
}
