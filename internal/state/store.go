package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Techne-Finance/techne-sub000/internal/config"
	"github.com/Techne-Finance/techne-sub000/internal/models"
)

const keyPrefix = "techne:state:"

// ErrStoreUnavailable повертається коли Redis не підключений (dev режим)
var ErrStoreUnavailable = errors.New("state store unavailable: redis not connected")

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil // Redis is optional in development
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Store персистить per-user Blob у Redis. Всі мутації load-modify-save:
// один blob на користувача, мутації йдуть з одного запиту за раз.
type Store struct {
	rdb            *redis.Client
	defaultCredits int
}

// NewStore створює новий Store
func NewStore(rdb *redis.Client, defaultCredits int) *Store {
	if defaultCredits <= 0 {
		defaultCredits = DefaultCredits
	}

	return &Store{
		rdb:            rdb,
		defaultCredits: defaultCredits,
	}
}

func stateKey(userID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Load завантажує стан користувача; відсутній ключ = новий blob
func (s *Store) Load(ctx context.Context, userID uint) (*Blob, error) {
	if s.rdb == nil {
		return nil, ErrStoreUnavailable
	}

	data, err := s.rdb.Get(ctx, stateKey(userID)).Bytes()
	if err == redis.Nil {
		return NewBlob(s.defaultCredits), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for user %d: %w", userID, err)
	}

	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state for user %d: %w", userID, err)
	}
	if blob.History == nil {
		blob.History = []HistoryItem{}
	}

	return &blob, nil
}

// Save зберігає стан після кожної мутації
func (s *Store) Save(ctx context.Context, userID uint, blob *Blob) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, stateKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state for user %d: %w", userID, err)
	}

	return nil
}

// Credits повертає поточний баланс
func (s *Store) Credits(ctx context.Context, userID uint) (int, error) {
	blob, err := s.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return blob.Credits, nil
}

// RecordVerification списує вартість верифікації та додає пул в історію.
// Викликається після успішної resolution (сам резолвер side-effect free).
func (s *Store) RecordVerification(ctx context.Context, userID uint, pool models.Pool) (*Blob, error) {
	blob, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := blob.Debit(VerifyCost); err != nil {
		return nil, err
	}
	blob.PushHistory(pool, time.Now())

	if err := s.Save(ctx, userID, blob); err != nil {
		return nil, err
	}

	return blob, nil
}

// ClearHistory очищає видиму історію користувача
func (s *Store) ClearHistory(ctx context.Context, userID uint) error {
	blob, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}

	blob.ClearHistory()

	return s.Save(ctx, userID, blob)
}
