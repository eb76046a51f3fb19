package classify

import (
	"strings"
	"testing"
)

func TestClassifyAggregatorPoolURL(t *testing.T) {
	input := "https://defillama.com/yields/pool/747c1d2a-c668-4682-b9f9-296708a3dd90"
	parsed := Classify(input)

	if parsed.Kind != KindDefiLlamaID {
		t.Fatalf("Expected kind %s, got %s", KindDefiLlamaID, parsed.Kind)
	}
	if parsed.ID != "747c1d2a-c668-4682-b9f9-296708a3dd90" {
		t.Errorf("Unexpected pool id: %s", parsed.ID)
	}
	if parsed.RawInput != input {
		t.Errorf("RawInput must be preserved, got %s", parsed.RawInput)
	}
}

func TestClassifyDEXPoolAddressURL(t *testing.T) {
	input := "https://aerodrome.finance/liquidity/0x1234567890123456789012345678901234567890"
	parsed := Classify(input)

	if parsed.Kind != KindAddress {
		t.Fatalf("Expected kind %s, got %s", KindAddress, parsed.Kind)
	}
	if parsed.Address != "0x1234567890123456789012345678901234567890" {
		t.Errorf("Unexpected address: %s", parsed.Address)
	}
	if parsed.ProtocolHint != "aerodrome" {
		t.Errorf("Expected protocol hint aerodrome, got %s", parsed.ProtocolHint)
	}
	if parsed.ChainHint != "base" {
		t.Errorf("Expected chain hint base, got %s", parsed.ChainHint)
	}
}

func TestClassifyTokenPairURL(t *testing.T) {
	input := "https://aerodrome.finance/deposit?token0=0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA&token1=0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB&type=0"
	parsed := Classify(input)

	if parsed.Kind != KindTokenPair {
		t.Fatalf("Expected kind %s, got %s", KindTokenPair, parsed.Kind)
	}
	if parsed.Token0 != strings.ToLower("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA") {
		t.Errorf("Token0 must be lower-cased, got %s", parsed.Token0)
	}
	if parsed.Token1 != strings.ToLower("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB") {
		t.Errorf("Token1 must be lower-cased, got %s", parsed.Token1)
	}
	if parsed.StableHint == nil || !*parsed.StableHint {
		t.Errorf("Expected stable hint true for type=0")
	}
	if parsed.ChainHint != "base" {
		t.Errorf("Expected default chain base, got %s", parsed.ChainHint)
	}
}

func TestClassifyVolatileTokenPair(t *testing.T) {
	input := "https://velodrome.finance/deposit?token0=0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa&token1=0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb&type=-1"
	parsed := Classify(input)

	if parsed.Kind != KindTokenPair {
		t.Fatalf("Expected kind %s, got %s", KindTokenPair, parsed.Kind)
	}
	if parsed.StableHint == nil || *parsed.StableHint {
		t.Errorf("Expected stable hint false for type=-1")
	}
	if parsed.ProtocolHint != "velodrome" {
		t.Errorf("Expected protocol hint velodrome, got %s", parsed.ProtocolHint)
	}
}

func TestClassifyBareAddressCaseInsensitive(t *testing.T) {
	upper := Classify("0xABCDEF1234567890ABCDEF1234567890ABCDEF12")
	lower := Classify("0xabcdef1234567890abcdef1234567890abcdef12")

	if upper.Kind != KindAddress || lower.Kind != KindAddress {
		t.Fatalf("Expected both case variants to classify as address")
	}
	if upper.Address != lower.Address {
		t.Errorf("Case variants must normalize identically: %s vs %s", upper.Address, lower.Address)
	}
	if upper.Address != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("Address must be lower-cased, got %s", upper.Address)
	}
}

func TestClassifyBareUUID(t *testing.T) {
	parsed := Classify("  747c1d2a-c668-4682-b9f9-296708a3dd90  ")

	if parsed.Kind != KindDefiLlamaID {
		t.Fatalf("Expected kind %s, got %s", KindDefiLlamaID, parsed.Kind)
	}
	if parsed.ID != "747c1d2a-c668-4682-b9f9-296708a3dd90" {
		t.Errorf("Unexpected id: %s", parsed.ID)
	}
}

func TestClassifyTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"USDC/WETH",
		"not a url at all",
		"0x123",                                      // too short for an address
		"0xZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", // not hex
		"https://aerodrome.finance/",                 // known domain, no pool ref
		"https://defillama.com/yields",               // aggregator, no pool id
		"747c1d2a-c668-4682-b9f9",                    // truncated uuid
		"::::////%%%",
	}

	for _, input := range inputs {
		parsed := Classify(input)
		if parsed.Kind == "" {
			t.Errorf("Classify(%q) returned empty kind", input)
		}
		if parsed.RawInput != input {
			t.Errorf("Classify(%q) lost raw input", input)
		}
	}
}

func TestClassifyGarbageFallsBackToFreeText(t *testing.T) {
	parsed := Classify("high apy stablecoin farms")

	if parsed.Kind != KindFreeText {
		t.Fatalf("Expected kind %s, got %s", KindFreeText, parsed.Kind)
	}
	if parsed.RawInput != "high apy stablecoin farms" {
		t.Errorf("RawInput must be preserved for free text search")
	}
}

func TestLooksLikeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://aerodrome.finance/liquidity/0x1234567890123456789012345678901234567890", true},
		{"www.defillama.com/yields", true},
		{"deposit?token0=0xaa&token1=0xbb", true},
		{"0xabcdef1234567890abcdef1234567890abcdef12", false},
		{"USDC/WETH", false},
	}

	for _, tt := range tests {
		if got := LooksLikeURL(tt.input); got != tt.expected {
			t.Errorf("LooksLikeURL(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}
