package state

import (
	"errors"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

const (
	// HistoryCap максимум записів історії, найновіші перші
	HistoryCap = 20

	// HistorySoftExpiry м'який термін показу запису. Не впливає на
	// коректність, лише ховає старі записи з видимої історії.
	HistorySoftExpiry = 24 * time.Hour

	// VerifyCost фіксована вартість одної верифікації в кредитах
	VerifyCost = 1

	// DefaultCredits стартовий баланс нового користувача
	DefaultCredits = 10
)

// ErrInsufficientCredits precondition: перевіряється до будь-якого
// мережевого виклику
var ErrInsufficientCredits = errors.New("insufficient credits")

// HistoryItem один запис історії верифікацій
type HistoryItem struct {
	Pool      models.Pool `json:"pool"`
	Timestamp int64       `json:"timestamp"` // epoch millis
}

// Blob per-user стан: кредити + історія. JSON blob під фіксованим ключем.
type Blob struct {
	Credits int           `json:"credits"`
	History []HistoryItem `json:"history"`
}

// NewBlob створює стан нового користувача
func NewBlob(credits int) *Blob {
	return &Blob{
		Credits: credits,
		History: []HistoryItem{},
	}
}

// Debit списує кредити. Не дозволяє негативний баланс.
func (b *Blob) Debit(amount int) error {
	if b.Credits < amount {
		return ErrInsufficientCredits
	}
	b.Credits -= amount
	return nil
}

// Credit нараховує кредити (top-up, promo)
func (b *Blob) Credit(amount int) {
	b.Credits += amount
}

// PushHistory додає пул на початок історії. Повторна верифікація того
// самого пулу пересуває запис наперед замість дублювання. Кап HistoryCap,
// найстаріший запис витісняється.
func (b *Blob) PushHistory(pool models.Pool, now time.Time) {
	identity := pool.Identity()

	kept := make([]HistoryItem, 0, len(b.History)+1)
	kept = append(kept, HistoryItem{Pool: pool, Timestamp: now.UnixMilli()})

	for _, item := range b.History {
		if item.Pool.Identity() == identity {
			continue
		}
		kept = append(kept, item)
	}

	if len(kept) > HistoryCap {
		kept = kept[:HistoryCap]
	}

	b.History = kept
}

// VisibleHistory повертає записи не старші за soft expiry. Не мутує blob.
func (b *Blob) VisibleHistory(now time.Time) []HistoryItem {
	cutoff := now.Add(-HistorySoftExpiry).UnixMilli()

	visible := make([]HistoryItem, 0, len(b.History))
	for _, item := range b.History {
		if item.Timestamp >= cutoff {
			visible = append(visible, item)
		}
	}

	return visible
}

// ClearHistory очищає історію, кредити не чіпає
func (b *Blob) ClearHistory() {
	b.History = []HistoryItem{}
}
