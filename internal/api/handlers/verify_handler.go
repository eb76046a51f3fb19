package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/classify"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
	"github.com/Techne-Finance/techne-sub000/internal/resolve"
	"github.com/Techne-Finance/techne-sub000/internal/score"
	"github.com/Techne-Finance/techne-sub000/internal/state"
)

// PoolResolver резолвить розпарсений ввід у канонічний пул
type PoolResolver interface {
	Resolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error)
}

// StateStore per-user стан: кредити та історія верифікацій
type StateStore interface {
	Load(ctx context.Context, userID uint) (*state.Blob, error)
	RecordVerification(ctx context.Context, userID uint, pool models.Pool) (*state.Blob, error)
	ClearHistory(ctx context.Context, userID uint) error
	Credits(ctx context.Context, userID uint) (int, error)
}

// VerifyHandler обробляє верифікацію пулів (головний flow дашборда)
type VerifyHandler struct {
	resolver PoolResolver
	states   StateStore
	poolRepo repository.PoolRepository
	log      *logger.Logger
}

// NewVerifyHandler створює новий VerifyHandler. poolRepo може бути nil (без кешу).
func NewVerifyHandler(resolver PoolResolver, states StateStore, poolRepo repository.PoolRepository, log *logger.Logger) *VerifyHandler {
	return &VerifyHandler{
		resolver: resolver,
		states:   states,
		poolRepo: poolRepo,
		log:      log.Named("verify"),
	}
}

// VerifyRequest запит верифікації: будь-який текст з пошукового поля
type VerifyRequest struct {
	Input string `json:"input"`
}

// VerifyResponse повна відповідь верифікації
type VerifyResponse struct {
	Parsed           classify.ParsedInput     `json:"parsed"`
	Pool             *models.Pool             `json:"pool"`
	RiskLevel        string                   `json:"risk_level"`
	Security         score.SecurityAssessment `json:"security"`
	Confidence       score.ConfidenceReport   `json:"confidence"`
	Guidance         score.Guidance           `json:"guidance"`
	CreditsRemaining int                      `json:"credits_remaining"`
}

// Verify виконує повний pipeline: classify -> resolve -> score.
// Кредити перевіряються ДО першого мережевого виклику і списуються
// тільки після успішного резолву.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondError(w, http.StatusBadRequest, "Input is required")
		return
	}

	ctx := r.Context()

	// Precondition: вистачає кредитів
	blob, err := h.states.Load(ctx, claims.UserID)
	if err != nil {
		h.log.Error("❌ Failed to load user state: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load account state")
		return
	}
	if blob.Credits < state.VerifyCost {
		respondJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":   "Insufficient credits",
			"credits": blob.Credits,
		})
		return
	}

	parsed := classify.Classify(req.Input)

	pool, err := h.resolver.Resolve(ctx, parsed)
	if err != nil {
		if errors.Is(err, resolve.ErrPoolNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]string{
				"error": "Pool not found",
				"hint":  resolve.PoolNotFoundHint,
			})
			return
		}

		h.log.Error("❌ Resolve failed for kind=%s: %v", parsed.Kind, err)
		respondError(w, http.StatusBadGateway, "Verification failed")
		return
	}

	riskLevel := score.RiskLevelFromScore(pool.RiskScoreOrDefault())
	security := score.AssessSecurity(pool)
	confidence := score.ComputeConfidence(pool)
	guidance := score.GenerateGuidance(pool)

	// Списати кредит і додати в історію одним апдейтом
	blob, err = h.states.RecordVerification(ctx, claims.UserID, *pool)
	if err != nil {
		if errors.Is(err, state.ErrInsufficientCredits) {
			respondJSON(w, http.StatusPaymentRequired, map[string]interface{}{
				"error": "Insufficient credits",
			})
			return
		}

		h.log.Error("❌ Failed to record verification: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to record verification")
		return
	}

	// Поповнити Explore кеш верифікованими даними
	if h.poolRepo != nil {
		if err := h.poolRepo.Upsert(pool); err != nil {
			h.log.Warn("⚠️ Failed to cache verified pool %s: %v", pool.Identity(), err)
		}
	}

	h.log.Info("✅ Verified pool %s (risk=%s, confidence=%d%%) for user %d",
		pool.Identity(), riskLevel, confidence.ConfidencePercent, claims.UserID)

	respondJSON(w, http.StatusOK, VerifyResponse{
		Parsed:           parsed,
		Pool:             pool,
		RiskLevel:        riskLevel,
		Security:         security,
		Confidence:       confidence,
		Guidance:         guidance,
		CreditsRemaining: blob.Credits,
	})
}
