package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
	"github.com/Techne-Finance/techne-sub000/internal/score"
)

const maxPageSize = 100

// PoolsHandler обробляє Explore листинг кешованих пулів
type PoolsHandler struct {
	poolRepo repository.PoolRepository
	log      *logger.Logger
}

// NewPoolsHandler створює новий PoolsHandler
func NewPoolsHandler(poolRepo repository.PoolRepository, log *logger.Logger) *PoolsHandler {
	return &PoolsHandler{
		poolRepo: poolRepo,
		log:      log.Named("pools"),
	}
}

// ListPools повертає кешовані пули з фільтрами та пагінацією.
// Сортування: TVL DESC (найліквідніші першими).
func (h *PoolsHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := repository.PoolFilters{
		Chain:      strings.ToLower(strings.TrimSpace(q.Get("chain"))),
		Protocol:   strings.ToLower(strings.TrimSpace(q.Get("protocol"))),
		MinAPY:     parseFloatQuery(r, "min_apy", 0),
		MinTVL:     parseFloatQuery(r, "min_tvl", 0),
		OnlyStable: q.Get("stable") == "true",
	}

	limit := clampLimit(parseIntQuery(r, "limit", 50), maxPageSize)
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	pools, err := h.poolRepo.List(filters, limit, offset)
	if err != nil {
		h.log.Error("❌ Failed to list pools: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch pools")
		return
	}

	total, err := h.poolRepo.Count(filters)
	if err != nil {
		h.log.Error("❌ Failed to count pools: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch pools")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pools":  pools,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetPool повертає один кешований пул з derived оцінками
func (h *PoolsHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	poolID := vars["id"]

	pool, err := h.poolRepo.GetByPoolID(poolID)
	if err != nil {
		h.log.Error("❌ Failed to fetch pool %s: %v", poolID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch pool")
		return
	}
	if pool == nil {
		respondError(w, http.StatusNotFound, "Pool not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pool":       pool,
		"risk_level": score.RiskLevelFromScore(pool.RiskScoreOrDefault()),
		"security":   score.AssessSecurity(pool),
		"confidence": score.ComputeConfidence(pool),
		"guidance":   score.GenerateGuidance(pool),
	})
}

// SearchPools шукає кешовані пули по символу токена
func (h *PoolsHandler) SearchPools(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit := clampLimit(parseIntQuery(r, "limit", 20), maxPageSize)

	pools, err := h.poolRepo.SearchBySymbol(query, limit)
	if err != nil {
		h.log.Error("❌ Pool search failed for %q: %v", query, err)
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
		"total": len(pools),
	})
}
