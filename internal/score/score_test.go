package score

import (
	"strings"
	"testing"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func basePool() *models.Pool {
	return &models.Pool{
		PoolID:      "test-pool",
		Symbol:      "USDC/WETH",
		Project:     "aerodrome",
		Chain:       "base",
		APY:         12.5,
		APYBase:     8.0,
		APYReward:   4.5,
		TVL:         2_000_000,
		TVLChange7d: 1.3,
		PoolType:    models.PoolTypeLP,
		APYSource:   "gauge-verified",
		RiskScore:   intPtr(75),
	}
}

func TestRiskLevelTotalityAndMonotonicity(t *testing.T) {
	// Safety ordering of labels, least safe first
	rank := map[string]int{
		"Critical": 0,
		"High":     1,
		"Medium":   2,
		"Low":      3,
	}

	prev := -1
	for score := 0; score <= 100; score++ {
		label := RiskLevelFromScore(score)

		r, ok := rank[label]
		if !ok {
			t.Fatalf("Score %d mapped to unknown label %q", score, label)
		}
		if r < prev {
			t.Fatalf("Score %d maps to less safe label %q than score %d", score, label, score-1)
		}
		prev = r
	}

	if RiskLevelFromScore(75) != "Low" {
		t.Errorf("Expected score 75 to map to Low, got %s", RiskLevelFromScore(75))
	}
	if RiskLevelFromScore(29) != "Critical" {
		t.Errorf("Expected score 29 to map to Critical, got %s", RiskLevelFromScore(29))
	}
}

func TestConfidenceMonotonicInAPYSource(t *testing.T) {
	// Tiers ordered from lowest to highest trust
	sources := []string{"", "mystery-feed", "defillama", "uniswap", "rewards-calculated", "gauge"}

	prev := -1
	for _, source := range sources {
		pool := basePool()
		pool.APYSource = source

		report := ComputeConfidence(pool)
		if report.ConfidencePercent < prev {
			t.Errorf("Source %q yields %d%%, lower than previous tier's %d%%",
				source, report.ConfidencePercent, prev)
		}
		prev = report.ConfidencePercent
	}
}

func TestConfidenceNoAPYScoresZeroForSource(t *testing.T) {
	pool := basePool()
	pool.APY = 0
	pool.APYSource = "gauge" // source tag alone must not earn points

	withAPY := basePool()

	noAPYReport := ComputeConfidence(pool)
	withAPYReport := ComputeConfidence(withAPY)

	if noAPYReport.ConfidencePercent >= withAPYReport.ConfidencePercent {
		t.Errorf("Pool without APY should score below identical pool with APY: %d vs %d",
			noAPYReport.ConfidencePercent, withAPYReport.ConfidencePercent)
	}
}

func TestConfidenceLabelsAndFactorCount(t *testing.T) {
	pool := basePool()
	report := ComputeConfidence(pool)

	// gauge(40) + tvl(25) + history(20) + known protocol(15) = 100%
	if report.ConfidencePercent != 100 {
		t.Errorf("Expected 100%% for fully populated pool, got %d%%", report.ConfidencePercent)
	}
	if report.ConfidenceLabel != "High" {
		t.Errorf("Expected High label, got %s", report.ConfidenceLabel)
	}
	if len(report.Factors) != 4 {
		t.Errorf("Expected 4 itemized factors, got %d", len(report.Factors))
	}

	empty := &models.Pool{Project: "unknown-fork"}
	emptyReport := ComputeConfidence(empty)

	// unknown protocol baseline(5) only = 5%
	if emptyReport.ConfidencePercent != 5 {
		t.Errorf("Expected 5%% for empty pool, got %d%%", emptyReport.ConfidencePercent)
	}
	if emptyReport.ConfidenceLabel != "Low" {
		t.Errorf("Expected Low label, got %s", emptyReport.ConfidenceLabel)
	}
}

func TestConfidenceDeterministic(t *testing.T) {
	pool := basePool()

	first := ComputeConfidence(pool)
	for i := 0; i < 10; i++ {
		if got := ComputeConfidence(pool); got.ConfidencePercent != first.ConfidencePercent {
			t.Fatalf("Confidence is not deterministic: %d vs %d", got.ConfidencePercent, first.ConfidencePercent)
		}
	}
}

func TestAssessSecurityCleanPool(t *testing.T) {
	assessment := AssessSecurity(basePool())

	if assessment.IsCritical {
		t.Errorf("Clean pool must not be critical")
	}
	if assessment.IsWarning {
		t.Errorf("Clean pool must not carry warnings")
	}
	if len(assessment.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", assessment.Warnings)
	}
	if !assessment.CanDeposit {
		t.Errorf("Clean pool must allow deposit")
	}
}

func TestAssessSecurityHoneypotBlocks(t *testing.T) {
	pool := basePool()
	pool.Security = &models.PoolSecurity{
		Tokens: []models.TokenSecurity{
			{Symbol: "SCAM", IsHoneypot: true},
		},
	}

	assessment := AssessSecurity(pool)

	if !assessment.IsCritical {
		t.Fatalf("Honeypot must be critical")
	}
	if assessment.CanDeposit {
		t.Errorf("Critical assessment must block deposit")
	}
	if len(assessment.Warnings) == 0 {
		t.Errorf("Expected honeypot warning text")
	}
}

func TestAssessSecurityCriticalRiskScore(t *testing.T) {
	pool := basePool()
	pool.RiskScore = intPtr(20)

	assessment := AssessSecurity(pool)

	if !assessment.IsCritical {
		t.Fatalf("Score below %d must be critical", CriticalRiskScore)
	}
	if assessment.CanDeposit {
		t.Errorf("CanDeposit must be the inverse of IsCritical")
	}
}

func TestAssessSecurityWarningsDoNotBlock(t *testing.T) {
	pool := basePool()
	pool.Security = &models.PoolSecurity{
		Tokens: []models.TokenSecurity{
			{Symbol: "TKN", IsVerified: boolPtr(false), BuyTax: 12.0, SellTax: 15.0},
		},
		PegStatus: &models.PegStatus{
			DepegRisk: true,
			Tokens: []models.DepeggedToken{
				{Symbol: "USDX", Price: 0.93, Deviation: 7.0},
			},
		},
	}

	assessment := AssessSecurity(pool)

	if assessment.IsCritical {
		t.Fatalf("Warning-only checks must not be critical: %v", assessment.Warnings)
	}
	if !assessment.IsWarning {
		t.Errorf("Expected warning state")
	}
	if !assessment.CanDeposit {
		t.Errorf("Warning-only pool must still allow deposit")
	}
	// unverified + tax + depeg
	if len(assessment.Warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %d: %v", len(assessment.Warnings), assessment.Warnings)
	}
}

func TestAssessSecurityCriticalFirst(t *testing.T) {
	pool := basePool()
	pool.RiskScore = intPtr(10)
	pool.Security = &models.PoolSecurity{
		Tokens: []models.TokenSecurity{
			{Symbol: "TKN", IsVerified: boolPtr(false)},
		},
	}

	assessment := AssessSecurity(pool)

	if len(assessment.Warnings) < 2 {
		t.Fatalf("Expected critical + warning entries, got %v", assessment.Warnings)
	}
	if assessment.Warnings[0] != "Critical risk level (score 10/100)" {
		t.Errorf("Critical reasons must come first, got %q", assessment.Warnings[0])
	}
}

func TestAssessSecurityMissingScoreIsNeutral(t *testing.T) {
	pool := basePool()
	pool.RiskScore = nil // neutral default, not worst case

	assessment := AssessSecurity(pool)

	if assessment.IsCritical {
		t.Errorf("Missing risk score must default to neutral 50, not critical")
	}
}

func TestGenerateGuidanceEmissionHeavy(t *testing.T) {
	pool := basePool()
	pool.APY = 60
	pool.APYBase = 5
	pool.APYReward = 55

	g := GenerateGuidance(pool)

	if !containsSubstring(g.Warnings, "emissions") {
		t.Errorf("Expected sustainability warning, got %v", g.Warnings)
	}
	if !containsSubstring(g.Warnings, "temporary") {
		t.Errorf("Expected temporary APY warning, got %v", g.Warnings)
	}
}

func TestGenerateGuidanceStableDeepLiquidity(t *testing.T) {
	pool := basePool()
	pool.APY = 8
	pool.TVL = 50_000_000
	pool.PoolType = models.PoolTypeStable
	pool.Stablecoin = true

	g := GenerateGuidance(pool)

	if !containsSubstring(g.Recommendations, "deep liquidity") {
		t.Errorf("Expected deep liquidity positive, got %v", g.Recommendations)
	}
	if !containsSubstring(g.Recommendations, "impermanent loss") {
		t.Errorf("Expected IL-minimal positive for stable pool, got %v", g.Recommendations)
	}
	if !containsSubstring(g.GoodFor, "conservative yield farming") {
		t.Errorf("Expected conservative tag, got %v", g.GoodFor)
	}
}

func TestGenerateGuidanceVolatileCL(t *testing.T) {
	pool := basePool()
	pool.PoolType = models.PoolTypeCL
	pool.TVL = 50_000

	g := GenerateGuidance(pool)

	if !containsSubstring(g.Warnings, "active range management") {
		t.Errorf("Expected CL warning, got %v", g.Warnings)
	}
	if !containsSubstring(g.Warnings, "low liquidity") {
		t.Errorf("Expected low liquidity warning, got %v", g.Warnings)
	}
}

func TestGenerateGuidanceNeverPanicsOnEmptyPool(t *testing.T) {
	g := GenerateGuidance(&models.Pool{})

	if g.Warnings == nil || g.Recommendations == nil || g.GoodFor == nil {
		t.Errorf("Guidance lists must never be nil")
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
