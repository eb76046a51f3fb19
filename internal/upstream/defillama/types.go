package defillama

// Pool представляє liquidity pool від DeFiLlama API
type Pool struct {
	Chain            string   `json:"chain"`
	Project          string   `json:"project"`
	Symbol           string   `json:"symbol"`
	PoolID           string   `json:"pool"`
	TVL              float64  `json:"tvlUsd"`
	APY              float64  `json:"apy"`
	APYBase          float64  `json:"apyBase"`
	APYReward        float64  `json:"apyReward"`
	APYPct7D         float64  `json:"apyPct7D"`
	Volume1d         float64  `json:"volumeUsd1d"`
	Volume7d         float64  `json:"volumeUsd7d"`
	IL7d             float64  `json:"il7d"`
	ILRisk           string   `json:"ilRisk"`
	RewardTokens     []string `json:"rewardTokens"`
	UnderlyingTokens []string `json:"underlyingTokens"`
	PoolMeta         string   `json:"poolMeta"`
	Stablecoin       bool     `json:"stablecoin"`
}

// PoolsResponse відповідь від /pools endpoint
type PoolsResponse struct {
	Status string `json:"status"`
	Data   []Pool `json:"data"`
}
