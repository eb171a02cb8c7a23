package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/quizplanner/quizplanner/internal/auth/middleware"
	"github.com/quizplanner/quizplanner/internal/quiz"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 6

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func viewOf(u quiz.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name}
}

// POST /api/auth/register  { "email": "...", "password": "...", "name": "..." }
func RegisterHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || req.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}
		if !emailRx.MatchString(email) {
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, "password must be at least 6 characters long", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, "hash password", http.StatusInternalServerError)
			return
		}
		u := quiz.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: string(hash),
			Name:         strings.TrimSpace(req.Name),
			CreatedAt:    time.Now(),
		}
		if err := store.CreateUser(r.Context(), u); err != nil {
			if errors.Is(err, quiz.ErrEmailTaken) {
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"user": viewOf(u)})
	}
}

// POST /api/auth/login  { "email": "...", "password": "..." }
func LoginHandler(store quiz.Store, a *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		u, err := store.GetUserByEmail(r.Context(), email)
		if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(u.ID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": tok,
			"user":         viewOf(u),
		})
	}
}

// GET /api/auth/me
func MeHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.GetUser(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(viewOf(u))
	}
}

// PUT /api/auth/update  { "name": "...", "current_password": "...", "new_password": "..." }
func UpdateUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name            *string `json:"name"`
			CurrentPassword string  `json:"current_password"`
			NewPassword     string  `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == nil && req.NewPassword == "" {
			http.Error(w, "no update data provided", http.StatusBadRequest)
			return
		}

		u, err := store.GetUser(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.NewPassword != "" {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
				http.Error(w, "current password is incorrect", http.StatusUnauthorized)
				return
			}
			if len(req.NewPassword) < minPasswordLen {
				http.Error(w, "password must be at least 6 characters long", http.StatusBadRequest)
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
			if err != nil {
				http.Error(w, "hash password", http.StatusInternalServerError)
				return
			}
			u.PasswordHash = string(hash)
		}
		if err := store.UpdateUser(r.Context(), u); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(viewOf(u))
	}
}
