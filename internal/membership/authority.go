// Package membership holds the pure authorization rules gating chat access.
// Every function operates on snapshots supplied by the caller; there is no
// I/O and no hidden state, so the rules are unit-testable in isolation.
package membership

import (
	"errors"

	"github.com/sorokindm/parley/internal/domain"
)

var (
	ErrNotMember          = errors.New("user is not a member of this chat")
	ErrChannelPostDenied  = errors.New("only the channel creator can send messages")
	ErrPrivateJoinDenied  = errors.New("cannot join a private chat")
	ErrNotFriends         = errors.New("private chats require an accepted friend request")
	ErrPrivateMemberCount = errors.New("private chat must have exactly 2 members")
	ErrNotCreator         = errors.New("only the chat creator may do this")
	ErrCreatorSelfRemove  = errors.New("creator cannot remove themselves")
)

// CanRead reports whether the user may read or subscribe to the chat.
func CanRead(userID string, chat *domain.Chat) bool {
	return chat.HasMember(userID)
}

// CanWrite reports whether the user may post into the chat. Channels are
// write-restricted to their creator.
func CanWrite(userID string, chat *domain.Chat) bool {
	return AuthorizeWrite(userID, chat) == nil
}

// AuthorizeWrite is CanWrite with the reason for denial.
func AuthorizeWrite(userID string, chat *domain.Chat) error {
	if chat.Type == domain.ChatTypeChannel && chat.CreatorID != userID {
		return ErrChannelPostDenied
	}
	if !chat.HasMember(userID) {
		return ErrNotMember
	}
	return nil
}

// CanJoin reports whether the user may self-add to the chat. Joining a chat
// one already belongs to is allowed and treated as a no-op by the caller.
func CanJoin(userID string, chat *domain.Chat) error {
	if chat.IsPrivate {
		return ErrPrivateJoinDenied
	}
	return nil
}

// CanCreatePrivate validates a private chat between the two proposed members.
// friends is whether an accepted friend request exists between the pair, in
// either direction.
func CanCreatePrivate(members []string, friends bool) error {
	if len(members) != 2 {
		return ErrPrivateMemberCount
	}
	if !friends {
		return ErrNotFriends
	}
	return nil
}

// CanRemoveMember authorizes the creator removing another member. The
// creator cannot remove themselves by id; leaving the chat is the exit
// path, and leaving never consults the creator.
func CanRemoveMember(actorID, memberID string, chat *domain.Chat) error {
	if chat.CreatorID != actorID {
		return ErrNotCreator
	}
	if memberID == actorID {
		return ErrCreatorSelfRemove
	}
	return nil
}

// CanDelete authorizes deleting the chat.
func CanDelete(actorID string, chat *domain.Chat) error {
	if chat.CreatorID != actorID {
		return ErrNotCreator
	}
	return nil
}
