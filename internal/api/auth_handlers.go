package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/user"
)

// AuthHandlers serves registration, login and token refresh.
type AuthHandlers struct {
	users      *user.Repository
	jwtService *auth.JWTService
}

func NewAuthHandlers(users *user.Repository, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwtService: jwtService}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the account plus the session tokens. The access token
// is additionally set as a cookie for browser clients.
type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		respondJSONError(w, "email and name are required", http.StatusBadRequest)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			respondJSONError(w, "email already registered", http.StatusConflict)
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			respondJSONError(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	h.respondWithTokens(w, http.StatusCreated, u)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondJSONError(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		respondJSONError(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.respondWithTokens(w, http.StatusOK, u)
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondJSONError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "unknown account", http.StatusUnauthorized)
		return
	}

	h.respondWithTokens(w, http.StatusOK, u)
}

func (h *AuthHandlers) respondWithTokens(w http.ResponseWriter, status int, u *user.User) {
	access, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Name, u.Role)
	if err != nil {
		respondJSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	refresh, _, err := h.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		respondJSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    access,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, status, AuthResponse{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	})
}

// Me returns the authenticated account, resolved fresh from storage.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "unknown account", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
