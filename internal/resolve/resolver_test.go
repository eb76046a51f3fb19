package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/Techne-Finance/techne-sub000/internal/classify"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/verifier"
)

// Mock verifier client for testing

type mockVerifier struct {
	pairResponse    *verifier.PairLookupResponse
	pairErr         error
	resolveResponse *verifier.ResolveResponse
	resolveErr      error
	verifyResponse  *verifier.VerifyResponse
	verifyErr       error

	pairCalls    int
	resolveCalls int
	verifyCalls  []string // addresses, in call order
}

func (m *mockVerifier) PairLookup(ctx context.Context, req verifier.PairLookupRequest) (*verifier.PairLookupResponse, error) {
	m.pairCalls++
	return m.pairResponse, m.pairErr
}

func (m *mockVerifier) ResolveInput(ctx context.Context, rawInput, chainHint string) (*verifier.ResolveResponse, error) {
	m.resolveCalls++
	return m.resolveResponse, m.resolveErr
}

func (m *mockVerifier) VerifyPool(ctx context.Context, address, chain string) (*verifier.VerifyResponse, error) {
	m.verifyCalls = append(m.verifyCalls, address)
	return m.verifyResponse, m.verifyErr
}

type mockSearcher struct {
	pools []*models.Pool
	err   error
}

func (m *mockSearcher) SearchBySymbol(query string, limit int) ([]*models.Pool, error) {
	return m.pools, m.err
}

func testLogger() *logger.Logger {
	return logger.New("error")
}

func intPtr(v int) *int {
	return &v
}

func TestResolveTokenPairVerificationOverrides(t *testing.T) {
	client := &mockVerifier{
		pairResponse: &verifier.PairLookupResponse{
			Pool: &verifier.PoolPayload{
				PoolID:    "aero-usdc-weth",
				Symbol:    "USDC/WETH",
				Project:   "aerodrome",
				Chain:     "base",
				Address:   "0xABC0000000000000000000000000000000000000",
				APY:       15.0,
				TVL:       1_000_000,
				RiskScore: intPtr(80),
			},
		},
		verifyResponse: &verifier.VerifyResponse{
			Success: true,
			RiskAnalysis: &verifier.RiskAnalysis{
				RiskScore:   20,
				RiskLevel:   "Critical",
				RiskReasons: []string{"unverified deployer"},
			},
		},
	}

	r := New(client, nil, testLogger())
	parsed := classify.ParsedInput{
		Kind:   classify.KindTokenPair,
		Token0: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Token1: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Verification risk payload must take precedence over pair-lookup's own
	if pool.RiskScoreOrDefault() != 20 {
		t.Errorf("Expected verification risk score 20, got %d", pool.RiskScoreOrDefault())
	}
	if pool.RiskLevel != "Critical" {
		t.Errorf("Expected verification risk level, got %s", pool.RiskLevel)
	}
	if len(client.verifyCalls) != 1 {
		t.Errorf("Expected one secondary verification call, got %d", len(client.verifyCalls))
	}
}

func TestResolveTokenPairVerificationFailureKeepsLookupData(t *testing.T) {
	client := &mockVerifier{
		pairResponse: &verifier.PairLookupResponse{
			Pool: &verifier.PoolPayload{
				PoolID:    "aero-usdc-weth",
				Address:   "0xabc0000000000000000000000000000000000000",
				APY:       15.0,
				RiskScore: intPtr(80),
			},
		},
		verifyErr: errors.New("rpc unavailable"),
	}

	r := New(client, nil, testLogger())
	parsed := classify.ParsedInput{Kind: classify.KindTokenPair, Token0: "0xaa", Token1: "0xbb"}

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Verification failure must not fail resolution: %v", err)
	}
	if pool.RiskScoreOrDefault() != 80 {
		t.Errorf("Expected pair-lookup data unmodified, got risk score %d", pool.RiskScoreOrDefault())
	}
}

func TestResolveAddressURLChain(t *testing.T) {
	client := &mockVerifier{
		resolveResponse: &verifier.ResolveResponse{
			Success:     true,
			PoolAddress: "0xdef0000000000000000000000000000000000000",
		},
		verifyResponse: &verifier.VerifyResponse{
			Success: true,
			Pool: &verifier.PoolPayload{
				PoolID:  "resolved-pool",
				Symbol:  "USDC/WETH",
				Address: "0xdef0000000000000000000000000000000000000",
				APY:     12.5,
				TVL:     2_000_000,
			},
			RiskAnalysis: &verifier.RiskAnalysis{RiskScore: 75, RiskLevel: "Low"},
		},
	}

	r := New(client, nil, testLogger())
	parsed := classify.Classify("https://aerodrome.finance/liquidity/0x1234567890123456789012345678901234567890")

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if client.resolveCalls != 1 {
		t.Errorf("Expected generic resolve attempt for URL input, got %d calls", client.resolveCalls)
	}
	if pool.RiskScoreOrDefault() != 75 {
		t.Errorf("Expected risk score 75, got %d", pool.RiskScoreOrDefault())
	}
	if pool.Symbol != "USDC/WETH" {
		t.Errorf("Unexpected symbol: %s", pool.Symbol)
	}
}

func TestResolveFallsBackToDirectVerify(t *testing.T) {
	client := &mockVerifier{
		resolveErr: errors.New("resolve endpoint down"),
		verifyResponse: &verifier.VerifyResponse{
			Success: true,
			Pool: &verifier.PoolPayload{
				PoolID:  "direct-pool",
				Address: "0x1234567890123456789012345678901234567890",
				APY:     5.0,
			},
		},
	}

	r := New(client, nil, testLogger())
	parsed := classify.Classify("https://aerodrome.finance/liquidity/0x1234567890123456789012345678901234567890")

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Intermediate failure must advance the chain, got: %v", err)
	}
	if pool.PoolID != "direct-pool" {
		t.Errorf("Expected direct verification result, got %s", pool.PoolID)
	}
	if client.resolveCalls != 1 {
		t.Errorf("Expected resolve attempted once before falling through")
	}
}

func TestResolveTerminalFailure(t *testing.T) {
	client := &mockVerifier{
		resolveResponse: &verifier.ResolveResponse{Success: false},
		verifyResponse:  &verifier.VerifyResponse{Success: false},
	}

	r := New(client, nil, testLogger())
	parsed := classify.ParsedInput{
		Kind:     classify.KindAddress,
		Address:  "0x1234567890123456789012345678901234567890",
		RawInput: "https://aerodrome.finance/liquidity/0x1234567890123456789012345678901234567890",
	}

	pool, err := r.Resolve(context.Background(), parsed)
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("Expected ErrPoolNotFound, got %v (pool=%v)", err, pool)
	}
}

func TestResolveFreeTextUsesSymbolSearch(t *testing.T) {
	searcher := &mockSearcher{
		pools: []*models.Pool{
			{PoolID: "cached-pool", Symbol: "USDC-WETH", APY: 9.0},
		},
	}

	r := New(&mockVerifier{}, searcher, testLogger())
	parsed := classify.Classify("USDC-WETH")

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pool.PoolID != "cached-pool" {
		t.Errorf("Expected cached pool, got %s", pool.PoolID)
	}
	if pool.APYSource != "defillama" {
		t.Errorf("Expected aggregator provenance tag, got %s", pool.APYSource)
	}
}

func TestResolveFreeTextWithoutSearcherFails(t *testing.T) {
	r := New(&mockVerifier{}, nil, testLogger())

	_, err := r.Resolve(context.Background(), classify.Classify("some random search"))
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("Expected ErrPoolNotFound, got %v", err)
	}
}

func TestNormalizeAddressLowerCased(t *testing.T) {
	client := &mockVerifier{
		verifyResponse: &verifier.VerifyResponse{
			Success: true,
			Pool: &verifier.PoolPayload{
				PoolID:  "p",
				Address: "0xABCDEF1234567890ABCDEF1234567890ABCDEF12",
				APY:     -3.0, // negative upstream APY means unknown
			},
		},
	}

	r := New(client, nil, testLogger())
	parsed := classify.ParsedInput{
		Kind:     classify.KindAddress,
		Address:  "0xabcdef1234567890abcdef1234567890abcdef12",
		RawInput: "0xabcdef1234567890abcdef1234567890abcdef12",
	}

	pool, err := r.Resolve(context.Background(), parsed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pool.Address != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("Address must be normalized to lower case, got %s", pool.Address)
	}
	if pool.APY != 0 {
		t.Errorf("Negative upstream APY must normalize to 0, got %f", pool.APY)
	}
}
