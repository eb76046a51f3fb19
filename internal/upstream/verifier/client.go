package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	RequestTimeout = 30 * time.Second
)

// Client для verification backend (pair lookup, URL resolve, on-chain verify).
// Без retries: fallback ланцюг резолвера і є retry політикою.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient створює новий verifier client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// PairLookup шукає пул за парою токенів
func (c *Client) PairLookup(ctx context.Context, req PairLookupRequest) (*PairLookupResponse, error) {
	var response PairLookupResponse
	if err := c.post(ctx, "/pool-pair", req, &response); err != nil {
		return nil, fmt.Errorf("pair lookup failed: %w", err)
	}

	return &response, nil
}

// ResolveInput просить backend перетворити сирий URL/референс на pool address
func (c *Client) ResolveInput(ctx context.Context, rawInput, chainHint string) (*ResolveResponse, error) {
	req := ResolveRequest{RawInput: rawInput, ChainHint: chainHint}

	var response ResolveResponse
	if err := c.post(ctx, "/resolve", req, &response); err != nil {
		return nil, fmt.Errorf("resolve failed: %w", err)
	}

	return &response, nil
}

// VerifyPool виконує on-chain верифікацію за адресою.
// Chain порожній = server сам визначає chain.
func (c *Client) VerifyPool(ctx context.Context, address, chain string) (*VerifyResponse, error) {
	req := map[string]string{"address": address}
	if chain != "" {
		req["chain"] = chain
	}

	var response VerifyResponse
	if err := c.post(ctx, "/verify-rpc", req, &response); err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	return &response, nil
}

// post виконує один POST запит без retry
func (c *Client) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
