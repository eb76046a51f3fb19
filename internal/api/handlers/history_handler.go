package handlers

import (
	"net/http"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/state"
)

// HistoryHandler обробляє історію верифікацій та баланс кредитів
type HistoryHandler struct {
	states StateStore
	log    *logger.Logger
}

// NewHistoryHandler створює новий HistoryHandler
func NewHistoryHandler(states StateStore, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		states: states,
		log:    log.Named("history"),
	}
}

// GetHistory повертає видиму історію (новіші першими, без застарілих записів)
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	blob, err := h.states.Load(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error("❌ Failed to load user state: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	visible := blob.VisibleHistory(time.Now())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": visible,
		"total":   len(visible),
		"limit":   state.HistoryCap,
	})
}

// ClearHistory очищає історію, кредити не чіпає
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.states.ClearHistory(r.Context(), claims.UserID); err != nil {
		h.log.Error("❌ Failed to clear history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "History cleared",
	})
}

// GetCredits повертає поточний баланс кредитів
func (h *HistoryHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	credits, err := h.states.Credits(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error("❌ Failed to load credits: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load credits")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"credits":     credits,
		"verify_cost": state.VerifyCost,
	})
}
