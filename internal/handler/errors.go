package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sorokindm/parley/internal/membership"
	"github.com/sorokindm/parley/internal/service"
	"github.com/sorokindm/parley/pkg/response"
)

// writeMembershipError maps authorization sentinels to HTTP responses.
// Returns false when err is not a membership error.
func writeMembershipError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, membership.ErrNotMember):
		response.Forbidden(c, "not a member of this chat")
	case errors.Is(err, membership.ErrChannelPostDenied):
		response.Forbidden(c, "only the channel creator can post")
	case errors.Is(err, membership.ErrPrivateJoinDenied):
		response.Forbidden(c, "cannot join a private chat")
	case errors.Is(err, membership.ErrNotFriends):
		response.Forbidden(c, "a private chat requires an accepted friendship")
	case errors.Is(err, membership.ErrPrivateMemberCount):
		response.BadRequest(c, "a private chat must have exactly two members")
	case errors.Is(err, membership.ErrNotCreator):
		response.Forbidden(c, "only the chat creator can do this")
	case errors.Is(err, membership.ErrCreatorSelfRemove):
		response.BadRequest(c, "the creator cannot remove themselves; leave instead")
	default:
		return false
	}
	return true
}

// writeServiceError maps common service sentinels to HTTP responses.
// Returns false when err needs handler-specific treatment.
func writeServiceError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrChatNotFound):
		response.NotFound(c, "chat not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, service.ErrFriendRequestNotFound):
		response.NotFound(c, "friend request not found")
	default:
		return writeMembershipError(c, err)
	}
	return true
}
