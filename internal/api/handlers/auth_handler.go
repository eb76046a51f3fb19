package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Techne-Finance/techne-sub000/internal/api/auth"
	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
)

const minPasswordLength = 8

// AuthHandler обробляє authentication запити
type AuthHandler struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	tokenTTL   int64 // seconds
	log        *logger.Logger
}

// NewAuthHandler створює новий AuthHandler
func NewAuthHandler(userRepo repository.UserRepository, jwtManager *auth.JWTManager, tokenTTLSeconds int64, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		tokenTTL:   tokenTTLSeconds,
		log:        log.Named("auth"),
	}
}

// RegisterRequest структура запиту для реєстрації
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest структура запиту для login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse структура відповіді register/login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"` // seconds
	User      UserResponse `json:"user"`
}

// UserResponse публічні дані користувача
type UserResponse struct {
	ID               uint   `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"display_name,omitempty"`
	SubscriptionTier string `json:"subscription_tier"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		SubscriptionTier: user.SubscriptionTier,
	}
}

// Register створює нового користувача
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	// Перевірити чи email вже зайнятий
	existing, err := h.userRepo.GetByEmail(email)
	if err != nil {
		h.log.Error("❌ Failed to check existing user: %v", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}

	user := &models.User{
		Email:            email,
		DisplayName:      strings.TrimSpace(req.DisplayName),
		SubscriptionTier: "free",
		IsActive:         true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		h.log.Error("❌ Failed to hash password: %v", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if err := h.userRepo.Create(user); err != nil {
		h.log.Error("❌ Failed to create user: %v", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		h.log.Error("❌ Failed to generate token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.Info("✅ User registered: %s", user.Email)

	respondJSON(w, http.StatusCreated, AuthResponse{
		Token:     token,
		ExpiresIn: h.tokenTTL,
		User:      userResponse(user),
	})
}

// Login аутентифікує користувача
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userRepo.GetByEmail(email)
	if err != nil || user == nil {
		h.log.Warn("⚠️ Login attempt for unknown email: %s", email)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.IsBlocked || !user.IsActive {
		h.log.Warn("⚠️ Login attempt for disabled account: %s", email)
		respondError(w, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if !user.CheckPassword(req.Password) {
		h.log.Warn("⚠️ Failed login attempt: %s", email)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		h.log.Error("❌ Failed to generate token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.userRepo.TouchLastActive(user.ID); err != nil {
		h.log.Warn("⚠️ Failed to update last active: %v", err)
	}

	h.log.Info("✅ User logged in: %s", user.Email)

	respondJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresIn: h.tokenTTL,
		User:      userResponse(user),
	})
}

// RefreshToken видає новий токен по ще валідному старому
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "Token is required")
		return
	}

	newToken, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      newToken,
		"expires_in": h.tokenTTL,
	})
}

// Me повертає інформацію про поточного користувача
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil || user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, userResponse(user))
}
