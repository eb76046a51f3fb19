package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Типи пулів
const (
	PoolTypeSingle = "single" // single-asset deposit (lending, staking)
	PoolTypeLP     = "lp"     // dual-asset liquidity provision
	PoolTypeStable = "stable" // stablecoin pair
	PoolTypeCL     = "cl"     // concentrated liquidity
)

// DefaultRiskScore використовується коли upstream не повернув risk analysis.
// Neutral, not best or worst case.
const DefaultRiskScore = 50

// TokenSecurity per-token результат контрактного сканування
type TokenSecurity struct {
	Symbol     string  `json:"symbol,omitempty"`
	Address    string  `json:"address,omitempty"`
	IsVerified *bool   `json:"is_verified,omitempty"`
	BuyTax     float64 `json:"buy_tax"`
	SellTax    float64 `json:"sell_tax"`
	IsHoneypot bool    `json:"is_honeypot"`
}

// DepeggedToken stablecoin що торгується поза peg
type DepeggedToken struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Deviation float64 `json:"deviation"` // percent away from 1.0
}

// PegStatus pool-level depeg прапорець
type PegStatus struct {
	DepegRisk bool            `json:"depeg_risk"`
	Tokens    []DepeggedToken `json:"tokens,omitempty"`
}

// PoolSecurity заповнюється лише коли on-chain/GoPlus сканування виконалось
type PoolSecurity struct {
	IsHoneypot bool            `json:"is_honeypot"`
	Tokens     []TokenSecurity `json:"tokens,omitempty"`
	PegStatus  *PegStatus      `json:"peg_status,omitempty"`
}

func (s *PoolSecurity) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal PoolSecurity value: %v", value)
	}

	return json.Unmarshal(bytes, s)
}

func (s PoolSecurity) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Pool канонічний resolved запис. Усі upstream відповіді нормалізуються
// в цю форму на межі резолвера; downstream код не знає звідки прийшло поле.
type Pool struct {
	BaseModel

	// Identification
	PoolID  string `gorm:"uniqueIndex;size:100;not null" json:"pool_id"`
	Symbol  string `gorm:"size:100" json:"symbol"`
	Project string `gorm:"index;size:50" json:"project"`
	Chain   string `gorm:"index;size:50" json:"chain"`
	Address string `gorm:"index;size:42" json:"address,omitempty"` // 0x-prefixed, lower-cased

	// Market data. APY == 0 means "unknown", never negative.
	APY         float64 `gorm:"index" json:"apy"`
	APYBase     float64 `json:"apy_base"`
	APYReward   float64 `json:"apy_reward"`
	TVL         float64 `gorm:"index" json:"tvl"`
	Volume24h   float64 `json:"volume_24h,omitempty"`
	TVLChange7d float64 `json:"tvl_change_7d,omitempty"`

	// Classification
	PoolType   string `gorm:"size:20" json:"pool_type"`
	Stablecoin bool   `json:"stablecoin"`

	// Risk. RiskScore 0-100, higher = safer. Nil when no analysis ran.
	RiskScore   *int           `json:"risk_score,omitempty"`
	RiskLevel   string         `gorm:"size:20" json:"risk_level,omitempty"`
	RiskReasons pq.StringArray `gorm:"type:text[]" json:"risk_reasons,omitempty"`

	// Security сканування (опціонально)
	Security *PoolSecurity `gorm:"type:jsonb" json:"security,omitempty"`

	// Provenance: який upstream шлях дав APY. Керує confidence scoring.
	APYSource string `gorm:"size:50" json:"apy_source,omitempty"`

	LastChecked time.Time `gorm:"index" json:"last_checked"`
}

func (Pool) TableName() string {
	return "pools"
}

// Identity повертає ключ для дедуплікації історії
func (p *Pool) Identity() string {
	if p.PoolID != "" {
		return p.PoolID
	}
	if p.Address != "" {
		return p.Chain + ":" + p.Address
	}
	return p.Project + ":" + p.Chain + ":" + p.Symbol
}

// RiskScoreOrDefault повертає нейтральний score коли аналіз не виконувався
func (p *Pool) RiskScoreOrDefault() int {
	if p.RiskScore == nil {
		return DefaultRiskScore
	}
	return *p.RiskScore
}

// EmissionShare частка APY що походить з token emissions (0..1)
func (p *Pool) EmissionShare() float64 {
	if p.APY <= 0 {
		return 0
	}
	share := p.APYReward / p.APY
	if share < 0 {
		return 0
	}
	if share > 1 {
		return 1
	}
	return share
}

// IsStablePool перевіряє чи пул stablecoin-based (низький IL)
func (p *Pool) IsStablePool() bool {
	return p.Stablecoin || p.PoolType == PoolTypeStable
}

// HasHoneypot перевіряє honeypot прапорець на пулі або будь-якому токені
func (p *Pool) HasHoneypot() bool {
	if p.Security == nil {
		return false
	}
	if p.Security.IsHoneypot {
		return true
	}
	for _, t := range p.Security.Tokens {
		if t.IsHoneypot {
			return true
		}
	}
	return false
}

// Validate перевіряє інваріанти канонічного запису
func (p *Pool) Validate() error {
	if p.APY < 0 {
		return errors.New("pool: apy must not be negative")
	}
	if p.RiskScore != nil && (*p.RiskScore < 0 || *p.RiskScore > 100) {
		return errors.New("pool: risk score must be within 0..100")
	}
	return nil
}
