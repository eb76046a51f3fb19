package verifier

// PoolPayload форма пулу яку повертають verification endpoints
type PoolPayload struct {
	PoolID      string  `json:"poolId"`
	Symbol      string  `json:"symbol"`
	Project     string  `json:"project"`
	Chain       string  `json:"chain"`
	Address     string  `json:"address"`
	APY         float64 `json:"apy"`
	APYBase     float64 `json:"apyBase"`
	APYReward   float64 `json:"apyReward"`
	TVL         float64 `json:"tvl"`
	Volume24h   float64 `json:"volume24h"`
	TVLChange7d float64 `json:"tvlChange7d"`
	PoolType    string  `json:"poolType"`
	Stablecoin  bool    `json:"stablecoin"`
	APYSource   string  `json:"apySource"`

	RiskScore   *int     `json:"riskScore,omitempty"`
	RiskLevel   string   `json:"riskLevel,omitempty"`
	RiskReasons []string `json:"riskReasons,omitempty"`

	Security *SecurityPayload `json:"security,omitempty"`
}

// SecurityPayload результат контрактного/GoPlus сканування
type SecurityPayload struct {
	IsHoneypot bool           `json:"isHoneypot"`
	Tokens     []TokenPayload `json:"tokens,omitempty"`
	PegStatus  *PegPayload    `json:"pegStatus,omitempty"`
}

type TokenPayload struct {
	Symbol     string  `json:"symbol,omitempty"`
	Address    string  `json:"address,omitempty"`
	IsVerified *bool   `json:"isVerified,omitempty"`
	BuyTax     float64 `json:"buyTax"`
	SellTax    float64 `json:"sellTax"`
	IsHoneypot bool    `json:"isHoneypot"`
}

type PegPayload struct {
	DepegRisk bool                 `json:"depegRisk"`
	Tokens    []DepeggedTokenEntry `json:"tokens,omitempty"`
}

type DepeggedTokenEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Deviation float64 `json:"deviation"`
}

// RiskAnalysis верифікаційний risk payload; при успіху перекриває
// risk поля pair-lookup відповіді
type RiskAnalysis struct {
	RiskScore   int      `json:"riskScore"`
	RiskLevel   string   `json:"riskLevel"`
	RiskReasons []string `json:"riskReasons"`
}

// PairLookupRequest запит pair-lookup endpoint
type PairLookupRequest struct {
	Token0   string `json:"token0"`
	Token1   string `json:"token1"`
	Protocol string `json:"protocol,omitempty"`
	Chain    string `json:"chain,omitempty"`
	Stable   *bool  `json:"stable,omitempty"`
}

// PairLookupResponse відповідь pair-lookup endpoint
type PairLookupResponse struct {
	Pool *PoolPayload `json:"pool,omitempty"`
}

// ResolveRequest запит generic resolve endpoint (URL → pool address)
type ResolveRequest struct {
	RawInput  string `json:"rawInput"`
	ChainHint string `json:"chainHint,omitempty"`
}

// ResolveResponse відповідь resolve endpoint
type ResolveResponse struct {
	Success     bool   `json:"success"`
	PoolAddress string `json:"poolAddress,omitempty"`
}

// VerifyResponse відповідь on-chain verify endpoint
type VerifyResponse struct {
	Success      bool          `json:"success"`
	Pool         *PoolPayload  `json:"pool,omitempty"`
	RiskAnalysis *RiskAnalysis `json:"riskAnalysis,omitempty"`
}
