package refresh

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/config"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/defillama"
)

// Broadcaster отримує події оновлення кешу (websocket hub)
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// RefreshEvent подія для live підписників Explore сторінки
type RefreshEvent struct {
	PoolCount int       `json:"pool_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Service оновлює кеш пулів з DeFiLlama
type Service struct {
	client      *defillama.Client
	repo        repository.PoolRepository
	broadcaster Broadcaster
	cfg         config.RefreshConfig
	log         *logger.Logger
}

// NewService створює новий refresh service. broadcaster може бути nil.
func NewService(
	client *defillama.Client,
	repo repository.PoolRepository,
	broadcaster Broadcaster,
	cfg config.RefreshConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		client:      client,
		repo:        repo,
		broadcaster: broadcaster,
		cfg:         cfg,
		log:         log.Named("refresh"),
	}
}

// Run виконує один цикл оновлення кешу
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("Starting pool cache refresh...")

	filters := defillama.PoolFilters{
		Chains:    s.cfg.Chains,
		Protocols: s.cfg.Protocols,
		MinAPY:    s.cfg.MinAPY,
		MinTVL:    s.cfg.MinTVL,
	}

	pools, err := s.client.FilterPools(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to fetch pools: %w", err)
	}

	s.log.Info("Found %d pools matching criteria", len(pools))

	converted := make([]*models.Pool, 0, len(pools))
	for _, pool := range pools {
		converted = append(converted, convertPool(pool))
	}

	saved, err := s.repo.UpsertBatch(converted)
	if err != nil {
		return fmt.Errorf("failed to upsert pools (%d saved): %w", saved, err)
	}

	// Prune pools gone from the upstream listing for over a week
	if deleted, err := s.repo.DeleteStale(time.Now().Add(-7 * 24 * time.Hour)); err != nil {
		s.log.Warn("Failed to prune stale pools: %v", err)
	} else if deleted > 0 {
		s.log.Info("Pruned %d stale pools", deleted)
	}

	s.log.Info("Pool cache refresh complete: %d pools", saved)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("pools_refreshed", RefreshEvent{
			PoolCount: saved,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// convertPool конвертує DeFiLlama pool у канонічний запис
func convertPool(pool defillama.Pool) *models.Pool {
	poolType := models.PoolTypeLP
	switch {
	case pool.Stablecoin:
		poolType = models.PoolTypeStable
	case len(pool.UnderlyingTokens) <= 1 && !strings.Contains(pool.Symbol, "-") && !strings.Contains(pool.Symbol, "/"):
		poolType = models.PoolTypeSingle
	case strings.Contains(strings.ToLower(pool.PoolMeta), "concentrated") || strings.Contains(pool.PoolMeta, "0.01%") || strings.Contains(pool.PoolMeta, "0.05%"):
		poolType = models.PoolTypeCL
	}

	apy := pool.APY
	if apy < 0 {
		apy = 0
	}

	return &models.Pool{
		PoolID:      pool.PoolID,
		Symbol:      pool.Symbol,
		Project:     pool.Project,
		Chain:       strings.ToLower(pool.Chain),
		APY:         apy,
		APYBase:     pool.APYBase,
		APYReward:   pool.APYReward,
		TVL:         pool.TVL,
		Volume24h:   pool.Volume1d,
		PoolType:    poolType,
		Stablecoin:  pool.Stablecoin,
		APYSource:   "defillama",
		LastChecked: time.Now(),
	}
}
