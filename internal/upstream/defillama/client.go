package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/ratelimit"
)

const (
	BaseURL        = "https://yields.llama.fi"
	RequestTimeout = 30 * time.Second
	MaxRetries     = 3
	RetryDelay     = 2 * time.Second

	// DeFiLlama free tier недокументовано ріже агресивні клієнти
	requestsPerMinute = 30
)

// Client для роботи з DeFiLlama API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
}

// NewClient створює новий DeFiLlama API client
func NewClient() *Client {
	return NewClientWithBaseURL(BaseURL)
}

// NewClientWithBaseURL для тестів та self-hosted mirrors
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
		limiter: ratelimit.NewRateLimiter(requestsPerMinute, time.Minute/requestsPerMinute),
	}
}

// GetPools отримує всі pools
func (c *Client) GetPools(ctx context.Context) ([]Pool, error) {
	url := fmt.Sprintf("%s/pools", c.baseURL)

	var response PoolsResponse
	if err := c.doRequest(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}

	return response.Data, nil
}

// PoolFilters критерії фільтрації
type PoolFilters struct {
	Chains       []string
	Protocols    []string
	MinAPY       float64
	MinTVL       float64
	OnlyStable   bool
	MinVolume24h float64
}

// FilterPools фільтрує pools за критеріями
func (c *Client) FilterPools(ctx context.Context, filters PoolFilters) ([]Pool, error) {
	pools, err := c.GetPools(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []Pool
	for _, pool := range pools {
		if matchesFilters(pool, filters) {
			filtered = append(filtered, pool)
		}
	}

	return filtered, nil
}

// matchesFilters перевіряє чи pool відповідає фільтрам
func matchesFilters(pool Pool, filters PoolFilters) bool {
	if len(filters.Chains) > 0 && !containsFold(filters.Chains, pool.Chain) {
		return false
	}

	if len(filters.Protocols) > 0 && !containsFold(filters.Protocols, pool.Project) {
		return false
	}

	if filters.MinAPY > 0 && pool.APY < filters.MinAPY {
		return false
	}

	if filters.MinTVL > 0 && pool.TVL < filters.MinTVL {
		return false
	}

	if filters.OnlyStable && !pool.Stablecoin && pool.IL7d > 2.0 {
		return false
	}

	if filters.MinVolume24h > 0 && pool.Volume1d < filters.MinVolume24h {
		return false
	}

	return true
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// doRequest виконує HTTP запит з retry логікою
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error

	for i := 0; i < MaxRetries; i++ {
		if i > 0 {
			log.Printf("Retrying request to %s (attempt %d/%d)", url, i+1, MaxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(RetryDelay * time.Duration(i)):
			}
		}

		if err := c.limiter.WaitContext(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			log.Printf("Error response from %s: %s", url, string(body))

			// Don't retry on 4xx errors
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return lastErr
			}
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal response: %w", err)
			continue
		}

		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", MaxRetries, lastErr)
}
