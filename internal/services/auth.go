package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/user"
)

const authPath = "/api/auth"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateDetailsRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type AuthService struct {
	client requester
}

func NewAuthService(client requester) *AuthService {
	return &AuthService{client: client}
}

// Register creates the account and returns its bearer token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	return s.token(ctx, http.MethodPost, authPath+"/register", req)
}

// Login returns a bearer token for the credentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	return s.token(ctx, http.MethodPost, authPath+"/login", req)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return send(ctx, s.client, http.MethodGet, authPath+"/logout", nil)
}

func (s *AuthService) CurrentUser(ctx context.Context) (user.User, error) {
	return call[user.User](ctx, s.client, http.MethodGet, authPath+"/me", nil)
}

func (s *AuthService) UpdateDetails(ctx context.Context, req UpdateDetailsRequest) (user.User, error) {
	return call[user.User](ctx, s.client, http.MethodPut, authPath+"/updatedetails", req)
}

func (s *AuthService) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	return send(ctx, s.client, http.MethodPut, authPath+"/updatepassword", req)
}

func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	return send(ctx, s.client, http.MethodPost, authPath+"/forgotpassword", req)
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken string, req ResetPasswordRequest) error {
	return send(ctx, s.client, http.MethodPut, resourcePath(authPath+"/resetpassword", resetToken), req)
}

// token endpoints answer with a top-level token instead of a data envelope.
func (s *AuthService) token(ctx context.Context, method, path string, body any) (string, error) {
	raw, err := s.client.Request(ctx, method, path, body)
	if err != nil {
		return "", err
	}

	var res tokenResponse
	if err = json.Unmarshal(raw, &res); err != nil {
		return "", errors.Wrap(err, "decoding token response")
	}
	if res.Token == "" {
		return "", errors.New("token missing in response")
	}
	return res.Token, nil
}
