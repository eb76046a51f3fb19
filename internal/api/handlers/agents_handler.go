package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
)

const maxAgentsPerUser = 10

// AgentsHandler обробляє no-code агенти (yield стратегії)
type AgentsHandler struct {
	agentRepo repository.AgentRepository
	log       *logger.Logger
}

// NewAgentsHandler створює новий AgentsHandler
func NewAgentsHandler(agentRepo repository.AgentRepository, log *logger.Logger) *AgentsHandler {
	return &AgentsHandler{
		agentRepo: agentRepo,
		log:       log.Named("agents"),
	}
}

// AgentRequest структура create/update запиту
type AgentRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	PoolID       string         `json:"pool_id,omitempty"`
	Protocol     string         `json:"protocol,omitempty"`
	Chain        string         `json:"chain,omitempty"`
	MinAPY       float64        `json:"min_apy"`
	MinTVL       float64        `json:"min_tvl"`
	MinRiskScore int            `json:"min_risk_score"`
	StableOnly   bool           `json:"stable_only"`
	Settings     models.JSONMap `json:"settings,omitempty"`
	Status       string         `json:"status,omitempty"`
}

func (req *AgentRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "Agent name is required"
	}
	if req.MinRiskScore < 0 || req.MinRiskScore > 100 {
		return "min_risk_score must be between 0 and 100"
	}
	if req.Status != "" && req.Status != models.AgentStatusActive && req.Status != models.AgentStatusPaused {
		return "Status must be 'active' or 'paused'"
	}
	return ""
}

// ListAgents повертає агенти поточного користувача
func (h *AgentsHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	agents, err := h.agentRepo.ListByUser(claims.UserID)
	if err != nil {
		h.log.Error("❌ Failed to list agents: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch agents")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"agents": agents,
		"total":  len(agents),
	})
}

// CreateAgent створює нового агента
func (h *AgentsHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	count, err := h.agentRepo.CountByUser(claims.UserID)
	if err != nil {
		h.log.Error("❌ Failed to count agents: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create agent")
		return
	}
	if count >= maxAgentsPerUser {
		respondError(w, http.StatusUnprocessableEntity, "Agent limit reached")
		return
	}

	status := req.Status
	if status == "" {
		status = models.AgentStatusPaused
	}

	agent := &models.AgentConfig{
		ExternalID:   uuid.NewString(),
		UserID:       claims.UserID,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		PoolID:       req.PoolID,
		Protocol:     strings.ToLower(req.Protocol),
		Chain:        strings.ToLower(req.Chain),
		MinAPY:       req.MinAPY,
		MinTVL:       req.MinTVL,
		MinRiskScore: req.MinRiskScore,
		StableOnly:   req.StableOnly,
		Settings:     req.Settings,
		Status:       status,
	}

	if err := h.agentRepo.Create(agent); err != nil {
		h.log.Error("❌ Failed to create agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create agent")
		return
	}

	h.log.Info("✅ Agent created: %s (%s) for user %d", agent.Name, agent.ExternalID, claims.UserID)

	respondJSON(w, http.StatusCreated, agent)
}

// GetAgent повертає одного агента
func (h *AgentsHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	externalID := mux.Vars(r)["id"]

	agent, err := h.agentRepo.GetByExternalID(claims.UserID, externalID)
	if err != nil {
		h.log.Error("❌ Failed to fetch agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch agent")
		return
	}
	if agent == nil {
		respondError(w, http.StatusNotFound, "Agent not found")
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// UpdateAgent оновлює конфігурацію агента
func (h *AgentsHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	externalID := mux.Vars(r)["id"]

	agent, err := h.agentRepo.GetByExternalID(claims.UserID, externalID)
	if err != nil {
		h.log.Error("❌ Failed to fetch agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update agent")
		return
	}
	if agent == nil {
		respondError(w, http.StatusNotFound, "Agent not found")
		return
	}

	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	agent.Name = strings.TrimSpace(req.Name)
	agent.Description = strings.TrimSpace(req.Description)
	agent.PoolID = req.PoolID
	agent.Protocol = strings.ToLower(req.Protocol)
	agent.Chain = strings.ToLower(req.Chain)
	agent.MinAPY = req.MinAPY
	agent.MinTVL = req.MinTVL
	agent.MinRiskScore = req.MinRiskScore
	agent.StableOnly = req.StableOnly
	if req.Settings != nil {
		agent.Settings = req.Settings
	}
	if req.Status != "" {
		agent.Status = req.Status
	}

	if err := h.agentRepo.Update(agent); err != nil {
		h.log.Error("❌ Failed to update agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update agent")
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// DeleteAgent видаляє агента
func (h *AgentsHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	externalID := mux.Vars(r)["id"]

	agent, err := h.agentRepo.GetByExternalID(claims.UserID, externalID)
	if err != nil {
		h.log.Error("❌ Failed to fetch agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete agent")
		return
	}
	if agent == nil {
		respondError(w, http.StatusNotFound, "Agent not found")
		return
	}

	if err := h.agentRepo.Delete(claims.UserID, externalID); err != nil {
		h.log.Error("❌ Failed to delete agent: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete agent")
		return
	}

	h.log.Info("🗑 Agent deleted: %s for user %d", externalID, claims.UserID)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Agent deleted",
	})
}
