package apitest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"max.ks1230/expense-tracker/internal/services"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decode(r, &req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide a username, email and password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		writeError(w, http.StatusBadRequest, "Email is already registered")
		return
	}
	acc := s.addAccount(req.Username, req.Email, req.Password)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "token": s.issueToken(acc.user.ID)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide an email and password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": s.issueToken(acc.user.ID)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByID(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeData(w, http.StatusOK, acc.user)
}

func (s *Server) updateDetails(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateDetailsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByID(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, acc.user.Email) {
		if _, taken := s.accounts[strings.ToLower(req.Email)]; taken {
			writeError(w, http.StatusBadRequest, "Email is already registered")
			return
		}
		delete(s.accounts, strings.ToLower(acc.user.Email))
		acc.user.Email = req.Email
		s.accounts[strings.ToLower(req.Email)] = acc
	}
	if req.Username != "" {
		acc.user.Username = req.Username
	}
	writeData(w, http.StatusOK, acc.user)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req services.UpdatePasswordRequest
	if err := decode(r, &req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Please provide the current and new password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByID(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if acc.password != req.CurrentPassword {
		writeError(w, http.StatusBadRequest, "Password is incorrect")
		return
	}
	acc.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": s.issueToken(acc.user.ID)})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ForgotPasswordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok {
		writeError(w, http.StatusNotFound, "There is no user with that email")
		return
	}
	s.resetTokens["reset-"+s.nextID()] = acc.user.ID
	writeData(w, http.StatusOK, "Email sent")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if err := decode(r, &req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide a password")
		return
	}
	resetToken := chi.URLParam(r, "token")

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resetTokens[resetToken]
	acc := s.accountByID(id)
	if !ok || acc == nil {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}
	delete(s.resetTokens, resetToken)
	acc.password = req.Password
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": s.issueToken(acc.user.ID)})
}
