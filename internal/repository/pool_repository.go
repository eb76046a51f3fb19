package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

// PoolRepository інтерфейс для кешу пулів (Explore сторінка)
type PoolRepository interface {
	Upsert(pool *models.Pool) error
	UpsertBatch(pools []*models.Pool) (int, error)
	GetByPoolID(poolID string) (*models.Pool, error)

	List(filters PoolFilters, limit, offset int) ([]*models.Pool, error)
	SearchBySymbol(query string, limit int) ([]*models.Pool, error)
	Count(filters PoolFilters) (int64, error)

	DeleteStale(before time.Time) (int64, error)
}

// PoolFilters фільтри Explore листингу
type PoolFilters struct {
	Chain      string
	Protocol   string
	MinAPY     float64
	MinTVL     float64
	OnlyStable bool
}

// PoolRepositoryImpl implementation
type PoolRepositoryImpl struct {
	db *gorm.DB
}

// NewPoolRepository створює новий pool repository
func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &PoolRepositoryImpl{db: db}
}

// Upsert створює або оновлює пул за pool_id
func (r *PoolRepositoryImpl) Upsert(pool *models.Pool) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pool_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"symbol", "project", "chain", "address",
			"apy", "apy_base", "apy_reward", "tvl", "volume24h", "tvl_change7d",
			"pool_type", "stablecoin", "apy_source", "last_checked", "updated_at",
		}),
	}).Create(pool).Error
}

// UpsertBatch масово оновлює кеш; повертає кількість успішних записів
func (r *PoolRepositoryImpl) UpsertBatch(pools []*models.Pool) (int, error) {
	saved := 0
	for _, pool := range pools {
		if err := r.Upsert(pool); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// GetByPoolID отримує пул за зовнішнім pool id
func (r *PoolRepositoryImpl) GetByPoolID(poolID string) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.Where("pool_id = ?", poolID).First(&pool).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

// List повертає пули за фільтрами, найвищий TVL перший
func (r *PoolRepositoryImpl) List(filters PoolFilters, limit, offset int) ([]*models.Pool, error) {
	var pools []*models.Pool
	err := r.applyFilters(filters).
		Order("tvl DESC").
		Limit(limit).
		Offset(offset).
		Find(&pools).Error
	return pools, err
}

// SearchBySymbol шукає пули за символом (free-text ввід)
func (r *PoolRepositoryImpl) SearchBySymbol(query string, limit int) ([]*models.Pool, error) {
	var pools []*models.Pool
	err := r.db.
		Where("symbol ILIKE ?", "%"+query+"%").
		Order("tvl DESC").
		Limit(limit).
		Find(&pools).Error
	return pools, err
}

// Count рахує пули за фільтрами
func (r *PoolRepositoryImpl) Count(filters PoolFilters) (int64, error) {
	var count int64
	err := r.applyFilters(filters).Model(&models.Pool{}).Count(&count).Error
	return count, err
}

// DeleteStale видаляє пули що не оновлювались з before
func (r *PoolRepositoryImpl) DeleteStale(before time.Time) (int64, error) {
	result := r.db.Where("last_checked < ?", before).Delete(&models.Pool{})
	return result.RowsAffected, result.Error
}

func (r *PoolRepositoryImpl) applyFilters(filters PoolFilters) *gorm.DB {
	query := r.db.Model(&models.Pool{})

	if filters.Chain != "" {
		query = query.Where("chain = ?", filters.Chain)
	}
	if filters.Protocol != "" {
		query = query.Where("project = ?", filters.Protocol)
	}
	if filters.MinAPY > 0 {
		query = query.Where("apy >= ?", filters.MinAPY)
	}
	if filters.MinTVL > 0 {
		query = query.Where("tvl >= ?", filters.MinTVL)
	}
	if filters.OnlyStable {
		query = query.Where("stablecoin = ? OR pool_type = ?", true, models.PoolTypeStable)
	}

	return query
}
