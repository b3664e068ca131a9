package messages

import (
	"context"

	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/auth"
)

const sessionExpiredMessage = "Your session has expired. Please /login again."

// ExpiryNotifier builds auth listeners that tell a chat its session was
// signed out by the server.
func ExpiryNotifier(sender messageSender) func(sessionID int64) auth.Listener {
	return func(sessionID int64) auth.Listener {
		return auth.ListenerFunc(func(_ context.Context, change auth.Change) {
			if change.Reason != auth.ReasonExpired {
				return
			}
			if err := sender.SendMessage(sessionExpiredMessage, sessionID); err != nil {
				logger.Error("cannot send expiry notice", zap.Int64("session", sessionID), zap.Error(err))
			}
		})
	}
}
