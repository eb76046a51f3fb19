package resolve

import (
	"strings"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/score"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/verifier"
)

// normalizePool конвертує upstream payload у канонічний Pool запис.
// defaultSource ставиться в APYSource коли upstream не повідомив provenance.
func normalizePool(p *verifier.PoolPayload, defaultSource string) *models.Pool {
	apy := p.APY
	if apy < 0 {
		apy = 0 // canonical APY is never negative; negative upstream values mean "unknown"
	}

	source := p.APYSource
	if source == "" {
		source = defaultSource
	}

	poolType := p.PoolType
	if poolType == "" {
		if p.Stablecoin {
			poolType = models.PoolTypeStable
		} else {
			poolType = models.PoolTypeLP
		}
	}

	pool := &models.Pool{
		PoolID:      p.PoolID,
		Symbol:      p.Symbol,
		Project:     p.Project,
		Chain:       p.Chain,
		Address:     strings.ToLower(p.Address),
		APY:         apy,
		APYBase:     p.APYBase,
		APYReward:   p.APYReward,
		TVL:         p.TVL,
		Volume24h:   p.Volume24h,
		TVLChange7d: p.TVLChange7d,
		PoolType:    poolType,
		Stablecoin:  p.Stablecoin,
		RiskLevel:   p.RiskLevel,
		RiskReasons: p.RiskReasons,
		APYSource:   source,
		LastChecked: time.Now(),
	}

	if p.RiskScore != nil {
		scoreValue := *p.RiskScore
		pool.RiskScore = &scoreValue
		if pool.RiskLevel == "" {
			pool.RiskLevel = score.RiskLevelFromScore(scoreValue)
		}
	}

	if p.Security != nil {
		pool.Security = normalizeSecurity(p.Security)
	}

	return pool
}

func normalizeSecurity(s *verifier.SecurityPayload) *models.PoolSecurity {
	security := &models.PoolSecurity{
		IsHoneypot: s.IsHoneypot,
	}

	for _, t := range s.Tokens {
		security.Tokens = append(security.Tokens, models.TokenSecurity{
			Symbol:     t.Symbol,
			Address:    strings.ToLower(t.Address),
			IsVerified: t.IsVerified,
			BuyTax:     t.BuyTax,
			SellTax:    t.SellTax,
			IsHoneypot: t.IsHoneypot,
		})
	}

	if s.PegStatus != nil {
		peg := &models.PegStatus{DepegRisk: s.PegStatus.DepegRisk}
		for _, t := range s.PegStatus.Tokens {
			peg.Tokens = append(peg.Tokens, models.DepeggedToken{
				Symbol:    t.Symbol,
				Price:     t.Price,
				Deviation: t.Deviation,
			})
		}
		security.PegStatus = peg
	}

	return security
}

// applyVerification перекриває risk/security поля результатом верифікації.
// Verification payload багатший, тому його risk дані мають пріоритет.
func applyVerification(pool *models.Pool, resp *verifier.VerifyResponse) {
	if resp == nil || !resp.Success {
		return
	}

	if resp.RiskAnalysis != nil {
		scoreValue := resp.RiskAnalysis.RiskScore
		pool.RiskScore = &scoreValue
		pool.RiskLevel = resp.RiskAnalysis.RiskLevel
		if pool.RiskLevel == "" {
			pool.RiskLevel = score.RiskLevelFromScore(scoreValue)
		}
		pool.RiskReasons = resp.RiskAnalysis.RiskReasons
	}

	if resp.Pool == nil {
		return
	}

	if resp.Pool.Security != nil {
		pool.Security = normalizeSecurity(resp.Pool.Security)
	}
	if resp.Pool.RiskScore != nil && resp.RiskAnalysis == nil {
		scoreValue := *resp.Pool.RiskScore
		pool.RiskScore = &scoreValue
		pool.RiskLevel = resp.Pool.RiskLevel
		if pool.RiskLevel == "" {
			pool.RiskLevel = score.RiskLevelFromScore(scoreValue)
		}
		pool.RiskReasons = resp.Pool.RiskReasons
	}
	if resp.Pool.APYSource != "" {
		pool.APYSource = resp.Pool.APYSource
	}
}
