package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind тип розпізнаного вводу
type Kind string

const (
	KindDefiLlamaID Kind = "defillama_id"
	KindAddress     Kind = "address"
	KindTokenPair   Kind = "token_pair"
	KindFreeText    Kind = "free_text"
)

// ParsedInput tagged variant: рівно один Kind встановлений.
// Адреси завжди нормалізовані до lower-case hex.
type ParsedInput struct {
	Kind         Kind   `json:"kind"`
	ID           string `json:"id,omitempty"`
	Address      string `json:"address,omitempty"`
	Token0       string `json:"token0,omitempty"`
	Token1       string `json:"token1,omitempty"`
	ProtocolHint string `json:"protocol_hint,omitempty"`
	ChainHint    string `json:"chain_hint,omitempty"`
	StableHint   *bool  `json:"stable_hint,omitempty"`
	RawInput     string `json:"raw_input"`
}

var (
	addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

	// aggregator pool page: .../pool/<uuid>
	aggregatorPoolRe = regexp.MustCompile(`pool/([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)
)

// protocolGrammar одна підтримувана DEX-frontend URL граматика.
// Додавання протоколу = новий рядок таблиці, не нова гілка коду.
type protocolGrammar struct {
	protocol        string
	domainSubstring string
	pathRegex       *regexp.Regexp // capture group 1: pool contract address
	tokenParams     [2]string      // query params carrying token0/token1
	typeParam       string         // numeric pool-type query param
	defaultChain    string
	stableTypeCodes map[string]bool // typeParam values meaning "stable pool"
}

// protocolTable перевіряється у фіксованому порядку. First match wins.
var protocolTable = []protocolGrammar{
	{
		protocol:        "aerodrome",
		domainSubstring: "aerodrome.finance",
		pathRegex:       regexp.MustCompile(`/(?:liquidity|pools?|deposit)/(0x[0-9a-fA-F]{40})`),
		tokenParams:     [2]string{"token0", "token1"},
		typeParam:       "type",
		defaultChain:    "base",
		stableTypeCodes: map[string]bool{"0": true},
	},
	{
		protocol:        "velodrome",
		domainSubstring: "velodrome.finance",
		pathRegex:       regexp.MustCompile(`/(?:liquidity|pools?|deposit)/(0x[0-9a-fA-F]{40})`),
		tokenParams:     [2]string{"token0", "token1"},
		typeParam:       "type",
		defaultChain:    "optimism",
		stableTypeCodes: map[string]bool{"0": true},
	},
	{
		protocol:        "uniswap",
		domainSubstring: "app.uniswap.org",
		pathRegex:       regexp.MustCompile(`/(?:pools?|explore/pools/[a-z]+)/(0x[0-9a-fA-F]{40})`),
		tokenParams:     [2]string{"currencyA", "currencyB"},
		defaultChain:    "ethereum",
	},
	{
		protocol:        "pancakeswap",
		domainSubstring: "pancakeswap.finance",
		pathRegex:       regexp.MustCompile(`/(?:liquidity|pools?)/(0x[0-9a-fA-F]{40})`),
		tokenParams:     [2]string{"token0", "token1"},
		defaultChain:    "bsc",
	},
}

const aggregatorDomain = "defillama.com"

// Classify парсить довільний user-supplied рядок у типізований референс.
// Total: ніколи не панікує, нерозпізнаний ввід завжди падає у free_text.
func Classify(input string) ParsedInput {
	trimmed := strings.TrimSpace(input)

	// 1. Aggregator pool URL
	if strings.Contains(trimmed, aggregatorDomain) {
		if m := aggregatorPoolRe.FindStringSubmatch(trimmed); m != nil {
			return ParsedInput{Kind: KindDefiLlamaID, ID: strings.ToLower(m[1]), RawInput: input}
		}
	}

	// 2-3. DEX frontend URLs, per grammar table
	for _, g := range protocolTable {
		if !strings.Contains(trimmed, g.domainSubstring) {
			continue
		}

		// Direct pool contract address in the path
		if m := g.pathRegex.FindStringSubmatch(trimmed); m != nil {
			return ParsedInput{
				Kind:         KindAddress,
				Address:      strings.ToLower(m[1]),
				ProtocolHint: g.protocol,
				ChainHint:    g.defaultChain,
				RawInput:     input,
			}
		}

		// Token pair in query params
		if parsed := classifyTokenPair(trimmed, g, input); parsed != nil {
			return *parsed
		}

		// Known domain but no extractable reference: keep the raw URL,
		// the resolver's generic resolve endpoint may still handle it.
		break
	}

	// 4. Bare contract address
	if addressRe.MatchString(trimmed) {
		return ParsedInput{Kind: KindAddress, Address: strings.ToLower(trimmed), RawInput: input}
	}

	// 5. Bare DefiLlama UUID
	if len(trimmed) == 36 {
		if _, err := uuid.Parse(trimmed); err == nil {
			return ParsedInput{Kind: KindDefiLlamaID, ID: strings.ToLower(trimmed), RawInput: input}
		}
	}

	// 6. Symbol-based search
	return ParsedInput{Kind: KindFreeText, RawInput: input}
}

// classifyTokenPair витягує token0/token1 з query params за граматикою
func classifyTokenPair(trimmed string, g protocolGrammar, raw string) *ParsedInput {
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil
	}

	q := u.Query()
	token0 := q.Get(g.tokenParams[0])
	token1 := q.Get(g.tokenParams[1])
	if !addressRe.MatchString(token0) || !addressRe.MatchString(token1) {
		return nil
	}

	parsed := &ParsedInput{
		Kind:         KindTokenPair,
		Token0:       strings.ToLower(token0),
		Token1:       strings.ToLower(token1),
		ProtocolHint: g.protocol,
		ChainHint:    g.defaultChain,
		RawInput:     raw,
	}

	if g.typeParam != "" {
		if code := q.Get(g.typeParam); code != "" {
			stable := g.stableTypeCodes[code]
			parsed.StableHint = &stable
		}
	}

	return parsed
}

// LooksLikeURL перевіряє чи raw input схожий на URL чи містить token референс.
// Резолвер використовує це щоб вирішити чи пробувати generic resolve.
func LooksLikeURL(input string) bool {
	s := strings.TrimSpace(input)
	return strings.Contains(s, "://") || strings.Contains(s, "www.") ||
		strings.Contains(s, "token0=") || strings.Contains(s, "token1=")
}
