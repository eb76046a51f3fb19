package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/api/auth"
	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/classify"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/resolve"
	"github.com/Techne-Finance/techne-sub000/internal/state"
)

type mockResolver struct {
	pool  *models.Pool
	err   error
	calls int
}

func (m *mockResolver) Resolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.pool, nil
}

// mockStates тримає blobs в пам'яті, мутації через чисту Blob логіку
type mockStates struct {
	defaultCredits int
	blobs          map[uint]*state.Blob
	loadErr        error
}

func newMockStates(credits int) *mockStates {
	return &mockStates{defaultCredits: credits, blobs: map[uint]*state.Blob{}}
}

func (m *mockStates) blob(userID uint) *state.Blob {
	if b, ok := m.blobs[userID]; ok {
		return b
	}
	b := state.NewBlob(m.defaultCredits)
	m.blobs[userID] = b
	return b
}

func (m *mockStates) Load(ctx context.Context, userID uint) (*state.Blob, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.blob(userID), nil
}

func (m *mockStates) RecordVerification(ctx context.Context, userID uint, pool models.Pool) (*state.Blob, error) {
	b := m.blob(userID)
	if err := b.Debit(state.VerifyCost); err != nil {
		return nil, err
	}
	b.PushHistory(pool, time.Now())
	return b, nil
}

func (m *mockStates) ClearHistory(ctx context.Context, userID uint) error {
	m.blob(userID).ClearHistory()
	return nil
}

func (m *mockStates) Credits(ctx context.Context, userID uint) (int, error) {
	return m.blob(userID).Credits, nil
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &auth.Claims{UserID: 1, Email: "user@example.com", Tier: "free"}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	return req.WithContext(ctx)
}

func testLogger() *logger.Logger {
	return logger.New("error")
}

func TestVerifySuccess(t *testing.T) {
	score := 85
	resolver := &mockResolver{pool: &models.Pool{
		PoolID:    "747c1d2a-c668-4682-b9f9-296708a3dd90",
		Symbol:    "USDC-WETH",
		Project:   "aerodrome",
		Chain:     "base",
		APY:       12.5,
		TVL:       5_000_000,
		RiskScore: &score,
		APYSource: "onchain",
	}}
	states := newMockStates(state.DefaultCredits)
	h := NewVerifyHandler(resolver, states, nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "747c1d2a-c668-4682-b9f9-296708a3dd90"})
	req := authedRequest(t, "POST", "/api/v1/verify", body)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp VerifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.RiskLevel != "Low" {
		t.Errorf("expected risk level Low for score 85, got %s", resp.RiskLevel)
	}
	if !resp.Security.CanDeposit {
		t.Error("expected clean pool to allow deposit")
	}
	if resp.CreditsRemaining != state.DefaultCredits-state.VerifyCost {
		t.Errorf("expected %d credits remaining, got %d", state.DefaultCredits-state.VerifyCost, resp.CreditsRemaining)
	}

	// Верифікація потрапляє в історію
	blob := states.blobs[1]
	if len(blob.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(blob.History))
	}
	if blob.History[0].Pool.PoolID != "747c1d2a-c668-4682-b9f9-296708a3dd90" {
		t.Errorf("unexpected history entry: %+v", blob.History[0])
	}
}

func TestVerifyInsufficientCreditsBeforeResolve(t *testing.T) {
	resolver := &mockResolver{pool: &models.Pool{PoolID: "x"}}
	states := newMockStates(0)
	states.blobs[1] = state.NewBlob(0)

	h := NewVerifyHandler(resolver, states, nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "usdc/eth"})
	req := authedRequest(t, "POST", "/api/v1/verify", body)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	// Precondition: жодного мережевого виклику без кредитів
	if resolver.calls != 0 {
		t.Errorf("expected resolver not to be called, got %d calls", resolver.calls)
	}
}

func TestVerifyPoolNotFound(t *testing.T) {
	resolver := &mockResolver{err: resolve.ErrPoolNotFound}
	states := newMockStates(state.DefaultCredits)
	h := NewVerifyHandler(resolver, states, nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "total garbage"})
	req := authedRequest(t, "POST", "/api/v1/verify", body)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["hint"] != resolve.PoolNotFoundHint {
		t.Errorf("expected hint %q, got %q", resolve.PoolNotFoundHint, resp["hint"])
	}

	// Невдалий резолв не списує кредити
	if credits := states.blob(1).Credits; credits != state.DefaultCredits {
		t.Errorf("expected credits untouched at %d, got %d", state.DefaultCredits, credits)
	}
}

func TestVerifyEmptyInput(t *testing.T) {
	resolver := &mockResolver{}
	h := NewVerifyHandler(resolver, newMockStates(10), nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "   "})
	req := authedRequest(t, "POST", "/api/v1/verify", body)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("expected resolver not to be called")
	}
}

func TestVerifyUnauthenticated(t *testing.T) {
	h := NewVerifyHandler(&mockResolver{}, newMockStates(10), nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "usdc/eth"})
	req := httptest.NewRequest("POST", "/api/v1/verify", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVerifyCriticalPoolStillReturnsResult(t *testing.T) {
	score := 10
	resolver := &mockResolver{pool: &models.Pool{
		PoolID:    "0xdead",
		Symbol:    "SCAM-WETH",
		Project:   "unknown-dex",
		Chain:     "base",
		APY:       900,
		RiskScore: &score,
	}}
	states := newMockStates(10)
	h := NewVerifyHandler(resolver, states, nil, testLogger())

	body, _ := json.Marshal(VerifyRequest{Input: "0xdead"})
	req := authedRequest(t, "POST", "/api/v1/verify", body)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	// Critical пул не блокує відповідь: юзер бачить повну оцінку
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp VerifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RiskLevel != "Critical" {
		t.Errorf("expected Critical risk level, got %s", resp.RiskLevel)
	}
	if resp.Security.CanDeposit {
		t.Error("expected deposit to be blocked for critical pool")
	}
}
