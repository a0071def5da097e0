package audit

import (
	"context"

	"github.com/sorokindm/parley/pkg/log"
)

// Audit actions.
const (
	ActionRegister      = "user.register"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionLogout        = "user.logout"
	ActionRefreshToken  = "user.refresh_token"
	ActionCreateChat    = "chat.create"
	ActionJoinChat      = "chat.join"
	ActionLeaveChat     = "chat.leave"
	ActionRemoveMember  = "chat.remove_member"
	ActionDeleteChat    = "chat.delete"
	ActionSendMessage   = "message.send"
	ActionMarkRead      = "message.mark_read"
	ActionFriendRequest = "friend.request"
	ActionFriendRespond = "friend.respond"
	ActionSubscribe     = "channel.subscribe"
	ActionUnsubscribe   = "channel.unsubscribe"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithTarget emits an audit log naming the entity the action touched.
func LogWithTarget(ctx context.Context, action string, userID string, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
