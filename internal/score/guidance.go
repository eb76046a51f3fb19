package score

import (
	"fmt"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

// Пороги decision guidance правил
const (
	EmissionShareWarning = 0.8        // emission-to-total-APY ratio
	TemporaryAPYPercent  = 50.0       // APY вище = likely temporary
	LowTVLThreshold      = 100_000    // USD
	DeepTVLThreshold     = 10_000_000 // USD
)

// Risk bands. Total і монотонні над 0..100, higher score = safer.
const (
	lowRiskFloor    = 70
	mediumRiskFloor = 50
	highRiskFloor   = CriticalRiskScore // 30
)

// RiskLevelFromScore повертає label для score. Кожне ціле 0..100
// мапиться рівно на один label.
func RiskLevelFromScore(score int) string {
	switch {
	case score >= lowRiskFloor:
		return "Low"
	case score >= mediumRiskFloor:
		return "Medium"
	case score >= highRiskFloor:
		return "High"
	default:
		return "Critical"
	}
}

// Guidance текстові підказки для рішення: що насторожує, що добре,
// для яких use cases пул підходить
type Guidance struct {
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	GoodFor         []string `json:"good_for"`
}

// GenerateGuidance фіксований список незалежних правил; всі застосовні
// правила спрацьовують, порядок не важливий.
func GenerateGuidance(pool *models.Pool) Guidance {
	g := Guidance{
		Warnings:        []string{},
		Recommendations: []string{},
		GoodFor:         []string{},
	}

	emissionHeavy := pool.EmissionShare() > EmissionShareWarning
	if emissionHeavy {
		g.Warnings = append(g.Warnings, fmt.Sprintf(
			"over %.0f%% of APY comes from token emissions and may not be sustainable",
			EmissionShareWarning*100,
		))
	}

	if pool.APY > TemporaryAPYPercent {
		g.Warnings = append(g.Warnings, fmt.Sprintf(
			"APY of %.1f%% is likely temporary", pool.APY,
		))
	}

	if pool.TVL > 0 && pool.TVL < LowTVLThreshold {
		g.Warnings = append(g.Warnings, "low liquidity: entering or exiting may move the price")
	}

	deepLiquidity := pool.TVL >= DeepTVLThreshold
	if deepLiquidity {
		g.Recommendations = append(g.Recommendations, "deep liquidity supports larger positions")
	}

	if pool.PoolType == models.PoolTypeCL {
		g.Warnings = append(g.Warnings, "concentrated liquidity requires active range management")
	}

	stable := pool.IsStablePool()
	if stable {
		g.Recommendations = append(g.Recommendations, "stable pair keeps impermanent loss minimal")
	} else if pool.PoolType != models.PoolTypeSingle {
		g.Warnings = append(g.Warnings, "volatile pair is exposed to impermanent loss")
	}

	// goodFor tags: кон'юнкції правил вище
	noILRisk := stable || pool.PoolType == models.PoolTypeSingle
	if pool.APY > 0 && pool.APY <= TemporaryAPYPercent/2 && deepLiquidity && noILRisk {
		g.GoodFor = append(g.GoodFor, "conservative yield farming")
	}
	if stable && pool.TVL >= LowTVLThreshold*10 {
		g.GoodFor = append(g.GoodFor, "parking stablecoins")
	}
	if pool.APY > TemporaryAPYPercent && !emissionHeavy {
		g.GoodFor = append(g.GoodFor, "short-term yield opportunities")
	}
	if pool.PoolType == models.PoolTypeCL && deepLiquidity {
		g.GoodFor = append(g.GoodFor, "active LP management")
	}

	return g
}
