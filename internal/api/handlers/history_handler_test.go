package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/state"
)

func TestGetHistoryNewestFirst(t *testing.T) {
	states := newMockStates(state.DefaultCredits)
	blob := states.blob(1)
	blob.PushHistory(models.Pool{PoolID: "pool-a", Symbol: "USDC-WETH"}, time.Now().Add(-time.Hour))
	blob.PushHistory(models.Pool{PoolID: "pool-b", Symbol: "DAI-USDC"}, time.Now())

	h := NewHistoryHandler(states, testLogger())

	req := authedRequest(t, "GET", "/api/v1/history", nil)
	rec := httptest.NewRecorder()

	h.GetHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		History []state.HistoryItem `json:"history"`
		Total   int                 `json:"total"`
		Limit   int                 `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("expected 2 entries, got %d", resp.Total)
	}
	if resp.History[0].Pool.PoolID != "pool-b" {
		t.Errorf("expected newest entry first, got %s", resp.History[0].Pool.PoolID)
	}
	if resp.Limit != state.HistoryCap {
		t.Errorf("expected limit %d, got %d", state.HistoryCap, resp.Limit)
	}
}

func TestGetHistoryHidesExpiredEntries(t *testing.T) {
	states := newMockStates(state.DefaultCredits)
	blob := states.blob(1)
	blob.PushHistory(models.Pool{PoolID: "stale"}, time.Now().Add(-25*time.Hour))
	blob.PushHistory(models.Pool{PoolID: "fresh"}, time.Now())

	h := NewHistoryHandler(states, testLogger())

	req := authedRequest(t, "GET", "/api/v1/history", nil)
	rec := httptest.NewRecorder()

	h.GetHistory(rec, req)

	var resp struct {
		History []state.HistoryItem `json:"history"`
		Total   int                 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Total != 1 {
		t.Fatalf("expected 1 visible entry, got %d", resp.Total)
	}
	if resp.History[0].Pool.PoolID != "fresh" {
		t.Errorf("expected only fresh entry, got %s", resp.History[0].Pool.PoolID)
	}
}

func TestClearHistoryKeepsCredits(t *testing.T) {
	states := newMockStates(7)
	blob := states.blob(1)
	blob.PushHistory(models.Pool{PoolID: "pool-a"}, time.Now())

	h := NewHistoryHandler(states, testLogger())

	req := authedRequest(t, "DELETE", "/api/v1/history", nil)
	rec := httptest.NewRecorder()

	h.ClearHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(blob.History) != 0 {
		t.Errorf("expected empty history, got %d entries", len(blob.History))
	}
	if blob.Credits != 7 {
		t.Errorf("expected credits untouched at 7, got %d", blob.Credits)
	}
}

func TestGetCredits(t *testing.T) {
	states := newMockStates(3)
	h := NewHistoryHandler(states, testLogger())

	req := authedRequest(t, "GET", "/api/v1/credits", nil)
	rec := httptest.NewRecorder()

	h.GetCredits(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Credits    int `json:"credits"`
		VerifyCost int `json:"verify_cost"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Credits != 3 {
		t.Errorf("expected 3 credits, got %d", resp.Credits)
	}
	if resp.VerifyCost != state.VerifyCost {
		t.Errorf("expected verify cost %d, got %d", state.VerifyCost, resp.VerifyCost)
	}
}
