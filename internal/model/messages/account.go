package messages

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/forms"
	"max.ks1230/expense-tracker/internal/model/session"
)

const (
	forgotPasswordMessage = "If an account with that email exists, we've sent password reset instructions."
	passwordResetMessage  = "Your password has been reset. Please /login with the new password."
	passwordUpdated       = "Password updated."
	profileUpdated        = "Profile updated."
	loggedOutMessage      = "You have been logged out."
	alreadyLoggedIn       = "You are already logged in as %s. /logout first to switch accounts."
)

func (s *HandlerService) handleRegister(ctx context.Context, sess *session.Session, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 3 {
		return usage("/register <username> <email> <password>"), nil
	}
	if u, ok := sess.Auth.User(); ok {
		return fmt.Sprintf(alreadyLoggedIn, u.DisplayName()), nil
	}

	req, err := forms.Register{Username: args[0], Email: args[1], Password: args[2]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.Auth.Signup(ctx, req); err != nil {
		return sess.Auth.Error(), nil
	}
	return welcome(sess), nil
}

func (s *HandlerService) handleLogin(ctx context.Context, sess *session.Session, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return usage("/login <email> <password>"), nil
	}
	if u, ok := sess.Auth.User(); ok {
		return fmt.Sprintf(alreadyLoggedIn, u.DisplayName()), nil
	}

	req, err := forms.Login{Email: args[0], Password: args[1]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.Auth.Login(ctx, req); err != nil {
		return sess.Auth.Error(), nil
	}
	return welcome(sess), nil
}

func welcome(sess *session.Session) string {
	u, _ := sess.Auth.User()
	return "Welcome, " + u.DisplayName() + "! Send /help to see what I can do."
}

func (s *HandlerService) handleLogout(ctx context.Context, sess *session.Session, _ string) (string, error) {
	if !sess.Auth.Authenticated() {
		return loginFirstMessage, nil
	}
	sess.Auth.Logout(ctx)
	return loggedOutMessage, nil
}

func (s *HandlerService) handleMe(_ context.Context, sess *session.Session, _ string) (string, error) {
	u, ok := sess.Auth.User()
	if !ok {
		return loginFirstMessage, nil
	}
	return fmt.Sprintf("%s\nEmail: %s", u.DisplayName(), u.Email), nil
}

func (s *HandlerService) handleProfile(ctx context.Context, sess *session.Session, arg string) (string, error) {
	if !sess.Auth.Authenticated() {
		return loginFirstMessage, nil
	}
	args := strings.Fields(arg)
	if len(args) != 2 {
		return usage("/profile <username> <email>"), nil
	}

	req, err := forms.Profile{Username: args[0], Email: args[1]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.Auth.UpdateProfile(ctx, req); err != nil {
		return sess.Auth.Error(), nil
	}
	return profileUpdated, nil
}

func (s *HandlerService) handlePassword(ctx context.Context, sess *session.Session, arg string) (string, error) {
	if !sess.Auth.Authenticated() {
		return loginFirstMessage, nil
	}
	args := strings.Fields(arg)
	if len(args) != 3 {
		return usage("/password <current> <new> <new again>"), nil
	}

	req, err := forms.Password{Current: args[0], New: args[1], Confirm: args[2]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.Auth.UpdatePassword(ctx, req); err != nil {
		return sess.Auth.Error(), nil
	}
	return passwordUpdated, nil
}

// handleForgot answers the same way whether or not the account exists.
func (s *HandlerService) handleForgot(ctx context.Context, sess *session.Session, arg string) (string, error) {
	req, err := forms.ForgotPassword{Email: arg}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.AuthService.ForgotPassword(ctx, req); err != nil {
		logger.Info("forgot password request failed", zap.Int64("session", sess.ID), zap.Error(err))
	}
	return forgotPasswordMessage, nil
}

func (s *HandlerService) handleReset(ctx context.Context, sess *session.Session, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 3 {
		return usage("/reset <token> <password> <password again>"), nil
	}

	req, err := forms.ResetPassword{Password: args[1], Confirm: args[2]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	if err = sess.AuthService.ResetPassword(ctx, args[0], req); err != nil {
		return failure(err, "Password reset failed. The link may have expired."), nil
	}
	return passwordResetMessage, nil
}
