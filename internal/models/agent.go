package models

// Статуси trading agents
const (
	AgentStatusActive = "active"
	AgentStatusPaused = "paused"
)

// AgentConfig no-code конфігурація trading agent (yield стратегія)
type AgentConfig struct {
	BaseModel

	ExternalID string `gorm:"uniqueIndex;size:36;not null" json:"external_id"` // UUID
	UserID     uint   `gorm:"index;not null" json:"user_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description,omitempty"`

	// Target pool (optional: agents can also run on filter criteria only)
	PoolID   string `gorm:"size:100" json:"pool_id,omitempty"`
	Protocol string `gorm:"size:50" json:"protocol,omitempty"`
	Chain    string `gorm:"size:50" json:"chain,omitempty"`

	// Strategy thresholds
	MinAPY       float64 `json:"min_apy"`
	MinTVL       float64 `json:"min_tvl"`
	MinRiskScore int     `json:"min_risk_score"` // minimum safety score (0 = no limit)
	StableOnly   bool    `json:"stable_only"`

	// Protocol-specific knobs, kept opaque
	Settings JSONMap `gorm:"type:jsonb" json:"settings,omitempty"`

	Status string `gorm:"size:20;default:'paused'" json:"status"`
}

func (AgentConfig) TableName() string {
	return "agent_configs"
}

func (a *AgentConfig) IsActive() bool {
	return a.Status == AgentStatusActive
}

// MatchesPool перевіряє чи пул відповідає порогам стратегії
func (a *AgentConfig) MatchesPool(pool *Pool) bool {
	if a.MinAPY > 0 && pool.APY < a.MinAPY {
		return false
	}
	if a.MinTVL > 0 && pool.TVL < a.MinTVL {
		return false
	}
	if a.MinRiskScore > 0 && pool.RiskScoreOrDefault() < a.MinRiskScore {
		return false
	}
	if a.StableOnly && !pool.IsStablePool() {
		return false
	}
	return true
}
