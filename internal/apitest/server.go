// Package apitest runs an in-memory stand-in for the expense tracker REST
// API. It follows the same routes, envelopes and status codes and lets tests
// inject failures.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/entity/user"
)

type account struct {
	user     user.User
	password string
}

type failure struct {
	status  int
	message string
}

type ctxKey struct{}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	seq          int
	now          func() time.Time
	accounts     map[string]*account // by email
	tokens       map[string]string   // bearer token -> user ID
	resetTokens  map[string]string   // reset token -> user ID
	categories   []expense.Category
	transactions []expense.Transaction
	budgets      []expense.Budget
	failures     map[string][]failure
	hits         map[string]int
}

// NewServer starts the fake API. Close it when done.
func NewServer() *Server {
	s := &Server{
		now:         time.Now,
		accounts:    make(map[string]*account),
		tokens:      make(map[string]string),
		resetTokens: make(map[string]string),
		failures:    make(map[string][]failure),
		hits:        make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/forgotpassword", s.forgotPassword)
		r.Put("/resetpassword/{token}", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/logout", s.logout)
			r.Get("/me", s.me)
			r.Put("/updatedetails", s.updateDetails)
			r.Put("/updatepassword", s.updatePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
			r.Get("/{id}", s.getCategory)
			r.Put("/{id}", s.updateCategory)
			r.Delete("/{id}", s.deleteCategory)
		})

		r.Route("/api/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.createTransaction)
			r.Get("/{id}", s.getTransaction)
			r.Put("/{id}", s.updateTransaction)
			r.Delete("/{id}", s.deleteTransaction)
		})

		r.Route("/api/budgets", func(r chi.Router) {
			r.Get("/", s.listBudgets)
			r.Post("/", s.createBudget)
			r.Get("/summary/{month}", s.summary)
			r.Get("/{id}", s.getBudget)
			r.Put("/{id}", s.updateBudget)
			r.Delete("/{id}", s.deleteBudget)
		})
	})

	return r
}

// SetClock replaces the server clock used for timestamps and default dates.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next request to method+path answer with status and an
// error payload. Status 0 drops the connection instead.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// Hits counts requests received for method+path, query excluded.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// RevokeTokens invalidates every issued bearer token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// ResetTokenFor returns the last reset token issued for email.
func (s *Server) ResetTokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return ""
	}
	for token, id := range s.resetTokens {
		if id == acc.user.ID {
			return token
		}
	}
	return ""
}

// CreateUser registers an account directly and returns a valid token.
func (s *Server) CreateUser(username, email, password string) (user.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.addAccount(username, email, password)
	return acc.user, s.issueToken(acc.user.ID)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.hits[key]++
		var f *failure
		if queue := s.failures[key]; len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.status == 0 {
			dropConnection(w)
			return
		}
		writeError(w, f.status, f.message)
	})
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		writeError(w, http.StatusInternalServerError, "cannot hijack connection")
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")

		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()

		if header == "" || token == header || !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// must hold s.mu
func (s *Server) nextID() string {
	s.seq++
	return fmt.Sprintf("%024x", s.seq)
}

// must hold s.mu
func (s *Server) issueToken(userID string) string {
	token := "tok-" + s.nextID()
	s.tokens[token] = userID
	return token
}

// must hold s.mu
func (s *Server) addAccount(username, email, password string) *account {
	acc := &account{
		user: user.User{
			ID:       s.nextID(),
			Username: username,
			Email:    email,
		},
		password: password,
	}
	s.accounts[strings.ToLower(email)] = acc
	return acc
}

// must hold s.mu
func (s *Server) accountByID(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
