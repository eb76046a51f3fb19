package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Techne-Finance/techne-sub000/internal/api/auth"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
)

// ContextKey тип для ключів контексту
type ContextKey string

const (
	// UserContextKey ключ для збереження даних користувача в контексті
	UserContextKey ContextKey = "api_user"
)

// JWTAuthMiddleware перевіряє JWT токен
func JWTAuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Отримати Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			// Витягти токен
			tokenString, err := auth.ExtractTokenFromBearer(authHeader)
			if err != nil {
				respondUnauthorized(w, "Invalid authorization header format")
				return
			}

			// Валідувати токен
			claims, err := jwtManager.ValidateToken(tokenString)
			if err != nil {
				respondUnauthorized(w, "Invalid or expired token")
				return
			}

			// Додати claims в контекст
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth додає user в контекст якщо токен присутній,
// але не вимагає його наявності (Explore листинг доступний анонімно)
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				if tokenString, err := auth.ExtractTokenFromBearer(authHeader); err == nil {
					if claims, err := jwtManager.ValidateToken(tokenString); err == nil {
						ctx := context.WithValue(r.Context(), UserContextKey, claims)
						r = r.WithContext(ctx)
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePremium перевіряє чи користувач має активну premium підписку.
// Tier з JWT claims недостатньо: підписка могла закінчитись після видачі токена.
func RequirePremium(userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				respondUnauthorized(w, "Not authenticated")
				return
			}

			user, err := userRepo.GetByID(claims.UserID)
			if err != nil || user == nil {
				respondForbidden(w, "User not found")
				return
			}

			if !user.IsPremium() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "Premium subscription required",
					"message": "This feature is only available for premium users",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext отримує user claims з контексту
func GetUserFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// Helper functions

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func respondForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
