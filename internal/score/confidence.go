package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

// Ваги факторів. Product-tuned константи, behaviour parity > score optimality.
const (
	APYSourceMaxPoints      = 40
	TVLPoints               = 25
	HistoryPoints           = 20
	KnownProtocolPoints     = 15
	UnknownProtocolPoints   = 5
	ConfidenceMaxPoints     = APYSourceMaxPoints + TVLPoints + HistoryPoints + KnownProtocolPoints
	HighConfidencePercent   = 80
	MediumConfidencePercent = 50
)

// APY source tier points, найвищий tier перший
const (
	apyTierOnChain    = 40 // gauge/on-chain verified
	apyTierEmission   = 35 // calculated from reward emissions
	apyTierProtocol   = 30 // protocol's own API
	apyTierAggregator = 25 // DefiLlama / GeckoTerminal
	apyTierUnknown    = 15 // APY present, source unrecognized
)

// Source tag prefixes по tiers. Provenance tags вільної форми, тому prefix match.
var (
	onChainSources    = []string{"gauge", "onchain", "on-chain", "rpc"}
	emissionSources   = []string{"emission", "reward-calc", "rewards"}
	protocolSources   = []string{"protocol", "aerodrome", "velodrome", "uniswap", "pancakeswap", "curve"}
	aggregatorSources = []string{"defillama", "geckoterminal", "aggregator"}
)

// knownProtocols allow-list розпізнаних протоколів (EVM + Solana)
var knownProtocols = map[string]bool{
	"aerodrome":      true,
	"velodrome":      true,
	"uniswap":        true,
	"uniswap-v2":     true,
	"uniswap-v3":     true,
	"pancakeswap":    true,
	"pancakeswap-v3": true,
	"curve":          true,
	"curve-dex":      true,
	"aave":           true,
	"aave-v3":        true,
	"balancer":       true,
	"sushiswap":      true,
	"compound":       true,
	"convex-finance": true,
	"lido":           true,
	"raydium":        true,
	"orca":           true,
	"meteora":        true,
	"kamino":         true,
	"marinade":       true,
}

// FactorStatus статус одного confidence фактора
type FactorStatus string

const (
	StatusHigh        FactorStatus = "high"
	StatusMedium      FactorStatus = "medium"
	StatusLow         FactorStatus = "low"
	StatusUnavailable FactorStatus = "unavailable"
)

// Factor один елемент звіту з поясненням
type Factor struct {
	Label  string       `json:"label"`
	Status FactorStatus `json:"status"`
	Text   string       `json:"text"`
}

// ConfidenceReport derived звіт про повноту даних пулу
type ConfidenceReport struct {
	ConfidencePercent int      `json:"confidence_percent"`
	ConfidenceLabel   string   `json:"confidence_label"` // High | Medium | Low
	Factors           []Factor `json:"factors"`
}

// ComputeConfidence зважена point система над чотирма незалежними факторами.
// Детерміністична і монотонна по кожному фактору окремо.
func ComputeConfidence(pool *models.Pool) ConfidenceReport {
	earned := 0
	factors := make([]Factor, 0, 4)

	// APY source tier (max 40)
	apyPoints, apyFactor := scoreAPYSource(pool)
	earned += apyPoints
	factors = append(factors, apyFactor)

	// TVL presence (max 25)
	if pool.TVL > 0 {
		earned += TVLPoints
		factors = append(factors, Factor{
			Label:  "TVL",
			Status: StatusHigh,
			Text:   fmt.Sprintf("TVL reported: $%.0f", pool.TVL),
		})
	} else {
		factors = append(factors, Factor{
			Label:  "TVL",
			Status: StatusUnavailable,
			Text:   "No TVL data available",
		})
	}

	// Historical data presence (max 20)
	if pool.TVLChange7d != 0 {
		earned += HistoryPoints
		factors = append(factors, Factor{
			Label:  "History",
			Status: StatusHigh,
			Text:   fmt.Sprintf("7-day TVL change tracked (%.2f%%)", pool.TVLChange7d),
		})
	} else {
		factors = append(factors, Factor{
			Label:  "History",
			Status: StatusUnavailable,
			Text:   "No historical data available",
		})
	}

	// Protocol recognition (max 15)
	if knownProtocols[strings.ToLower(pool.Project)] {
		earned += KnownProtocolPoints
		factors = append(factors, Factor{
			Label:  "Protocol",
			Status: StatusHigh,
			Text:   fmt.Sprintf("%s is a recognized protocol", pool.Project),
		})
	} else {
		earned += UnknownProtocolPoints
		factors = append(factors, Factor{
			Label:  "Protocol",
			Status: StatusLow,
			Text:   fmt.Sprintf("%s is less known, verify independently", displayProject(pool.Project)),
		})
	}

	percent := int(math.Round(100 * float64(earned) / float64(ConfidenceMaxPoints)))

	return ConfidenceReport{
		ConfidencePercent: percent,
		ConfidenceLabel:   confidenceLabel(percent),
		Factors:           factors,
	}
}

func confidenceLabel(percent int) string {
	switch {
	case percent >= HighConfidencePercent:
		return "High"
	case percent >= MediumConfidencePercent:
		return "Medium"
	default:
		return "Low"
	}
}

// scoreAPYSource повертає points за tier джерела APY
func scoreAPYSource(pool *models.Pool) (int, Factor) {
	if pool.APY <= 0 {
		return 0, Factor{
			Label:  "APY source",
			Status: StatusUnavailable,
			Text:   "No APY reported",
		}
	}

	source := strings.ToLower(pool.APYSource)

	switch {
	case matchesAny(source, onChainSources):
		return apyTierOnChain, Factor{
			Label:  "APY source",
			Status: StatusHigh,
			Text:   "APY verified against on-chain gauge data",
		}
	case matchesAny(source, emissionSources):
		return apyTierEmission, Factor{
			Label:  "APY source",
			Status: StatusHigh,
			Text:   "APY calculated from reward emissions",
		}
	case matchesAny(source, protocolSources):
		return apyTierProtocol, Factor{
			Label:  "APY source",
			Status: StatusMedium,
			Text:   "APY reported by the protocol's own API",
		}
	case matchesAny(source, aggregatorSources):
		return apyTierAggregator, Factor{
			Label:  "APY source",
			Status: StatusMedium,
			Text:   "APY reported by an aggregator",
		}
	default:
		return apyTierUnknown, Factor{
			Label:  "APY source",
			Status: StatusLow,
			Text:   "APY present but its source is unknown",
		}
	}
}

func matchesAny(source string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(source, p) {
			return true
		}
	}
	return false
}

func displayProject(project string) string {
	if project == "" {
		return "This protocol"
	}
	return project
}
