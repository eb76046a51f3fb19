package state

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

func TestDebit(t *testing.T) {
	blob := NewBlob(3)

	if err := blob.Debit(1); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if blob.Credits != 2 {
		t.Errorf("Expected 2 credits, got %d", blob.Credits)
	}
}

func TestDebitInsufficient(t *testing.T) {
	blob := NewBlob(0)

	err := blob.Debit(1)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("Expected ErrInsufficientCredits, got %v", err)
	}
	if blob.Credits != 0 {
		t.Errorf("Failed debit must not change balance, got %d", blob.Credits)
	}
}

func TestPushHistoryCap(t *testing.T) {
	blob := NewBlob(100)
	now := time.Now()

	// Verify 21 distinct pools sequentially
	for i := 1; i <= 21; i++ {
		pool := models.Pool{PoolID: fmt.Sprintf("pool-%d", i)}
		blob.PushHistory(pool, now.Add(time.Duration(i)*time.Second))
	}

	if len(blob.History) != HistoryCap {
		t.Fatalf("Expected exactly %d entries, got %d", HistoryCap, len(blob.History))
	}
	if blob.History[0].Pool.PoolID != "pool-21" {
		t.Errorf("Newest entry must be at index 0, got %s", blob.History[0].Pool.PoolID)
	}

	// pool-1 (the oldest) must be evicted
	for _, item := range blob.History {
		if item.Pool.PoolID == "pool-1" {
			t.Errorf("Oldest entry must be evicted")
		}
	}
}

func TestPushHistoryDeduplicates(t *testing.T) {
	blob := NewBlob(100)
	now := time.Now()

	blob.PushHistory(models.Pool{PoolID: "a"}, now)
	blob.PushHistory(models.Pool{PoolID: "b"}, now.Add(time.Second))
	blob.PushHistory(models.Pool{PoolID: "a"}, now.Add(2*time.Second))

	if len(blob.History) != 2 {
		t.Fatalf("Re-verifying must move, not duplicate: got %d entries", len(blob.History))
	}
	if blob.History[0].Pool.PoolID != "a" {
		t.Errorf("Re-verified pool must move to the front, got %s", blob.History[0].Pool.PoolID)
	}
	if blob.History[1].Pool.PoolID != "b" {
		t.Errorf("Expected b at index 1, got %s", blob.History[1].Pool.PoolID)
	}
}

func TestPushHistoryDeduplicatesByAddressIdentity(t *testing.T) {
	blob := NewBlob(100)
	now := time.Now()

	pool := models.Pool{Chain: "base", Address: "0xabc"}
	blob.PushHistory(pool, now)
	blob.PushHistory(pool, now.Add(time.Second))

	if len(blob.History) != 1 {
		t.Fatalf("Expected address identity dedup, got %d entries", len(blob.History))
	}
}

func TestVisibleHistorySoftExpiry(t *testing.T) {
	blob := NewBlob(100)
	now := time.Now()

	blob.PushHistory(models.Pool{PoolID: "old"}, now.Add(-25*time.Hour))
	blob.PushHistory(models.Pool{PoolID: "fresh"}, now.Add(-time.Hour))

	visible := blob.VisibleHistory(now)
	if len(visible) != 1 {
		t.Fatalf("Expected 1 visible entry, got %d", len(visible))
	}
	if visible[0].Pool.PoolID != "fresh" {
		t.Errorf("Expected fresh entry, got %s", visible[0].Pool.PoolID)
	}

	// Expiry prunes display only; the underlying history keeps both
	if len(blob.History) != 2 {
		t.Errorf("Soft expiry must not mutate stored history, got %d entries", len(blob.History))
	}
}

func TestClearHistoryKeepsCredits(t *testing.T) {
	blob := NewBlob(7)
	blob.PushHistory(models.Pool{PoolID: "a"}, time.Now())

	blob.ClearHistory()

	if len(blob.History) != 0 {
		t.Errorf("Expected empty history")
	}
	if blob.Credits != 7 {
		t.Errorf("Clear must not touch credits, got %d", blob.Credits)
	}
}
