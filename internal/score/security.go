package score

import (
	"fmt"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

// Пороги security перевірок
const (
	CriticalRiskScore = 30   // score нижче цього блокує депозит
	MaxTaxPercent     = 10.0 // buy/sell tax вище цього = warning
)

// SecurityAssessment derived вердикт: critical блокує депозит, warning лише застерігає
type SecurityAssessment struct {
	IsCritical bool     `json:"is_critical"`
	IsWarning  bool     `json:"is_warning"`
	Warnings   []string `json:"warnings"`
	CanDeposit bool     `json:"can_deposit"`
}

// AssessSecurity виконує впорядкований набір незалежних перевірок.
// Перевірки не short-circuit: всі виконуються, critical причини йдуть першими.
func AssessSecurity(pool *models.Pool) SecurityAssessment {
	var critical []string
	var warnings []string

	// 1. Honeypot on the pool or any token
	if pool.HasHoneypot() {
		critical = append(critical, "Honeypot detected: cannot sell tokens")
	}

	// 2. Critical risk score
	if len(critical) == 0 && pool.RiskScoreOrDefault() < CriticalRiskScore {
		critical = append(critical, fmt.Sprintf("Critical risk level (score %d/100)", pool.RiskScoreOrDefault()))
	}

	if pool.Security != nil {
		for _, token := range pool.Security.Tokens {
			// 3. Unverified contract
			if token.IsVerified != nil && !*token.IsVerified {
				warnings = append(warnings, fmt.Sprintf("Unverified contract: %s", tokenName(token)))
			}

			// 4. Excessive transfer taxes
			if token.BuyTax > MaxTaxPercent || token.SellTax > MaxTaxPercent {
				warnings = append(warnings, fmt.Sprintf(
					"High transfer tax on %s: buy %.1f%%, sell %.1f%%",
					tokenName(token), token.BuyTax, token.SellTax,
				))
			}
		}

		// 5. Depeg per token
		if peg := pool.Security.PegStatus; peg != nil && peg.DepegRisk {
			for _, depegged := range peg.Tokens {
				warnings = append(warnings, fmt.Sprintf(
					"%s is depegged: trading at $%.4f (%.2f%% off peg)",
					depegged.Symbol, depegged.Price, depegged.Deviation,
				))
			}
		}
	}

	all := make([]string, 0, len(critical)+len(warnings))
	all = append(all, critical...)
	all = append(all, warnings...)

	return SecurityAssessment{
		IsCritical: len(critical) > 0,
		IsWarning:  len(warnings) > 0,
		Warnings:   all,
		CanDeposit: len(critical) == 0,
	}
}

func tokenName(token models.TokenSecurity) string {
	if token.Symbol != "" {
		return token.Symbol
	}
	if token.Address != "" {
		return token.Address
	}
	return "token"
}
