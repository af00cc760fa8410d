package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	"github.com/MrJamesThe3rd/contratos/internal/http/request"
)

type Handler struct {
	svc    *auth.Service
	tokens *auth.Tokens
}

func NewHandler(svc *auth.Service, tokens *auth.Tokens) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Routes registers the public authentication endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
}

// UserRoutes registers user management. Callers must already be authorized.
func (h *Handler) UserRoutes(r chi.Router) {
	r.Post("/", h.createUser)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      auth.Role `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		slog.Error("failed to authenticate", "username", req.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	token, expires, err := h.tokens.Issue(u)
	if err != nil {
		slog.Error("failed to issue token", "username", u.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(loginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  u.Username,
		Role:      u.Role,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type createUserRequest struct {
	Username string    `json:"username" validate:"required"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     auth.Role `json:"role" validate:"required"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := request.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.svc.CreateUser(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, auth.ErrInvalidUser):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("failed to create user", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
