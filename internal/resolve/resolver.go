package resolve

import (
	"context"
	"errors"

	"github.com/Techne-Finance/techne-sub000/internal/classify"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/models"
	"github.com/Techne-Finance/techne-sub000/internal/upstream/verifier"
)

// ErrPoolNotFound всі fallback кроки вичерпані
var ErrPoolNotFound = errors.New("pool not found")

// PoolNotFoundHint підказка для користувача при terminal failure
const PoolNotFoundHint = "Try pasting a direct contract address"

// Provenance tags для apy_source коли upstream не повідомив свій
const (
	sourcePairLookup = "pair-lookup"
	sourceOnChain    = "onchain-verified"
	sourceAggregator = "defillama"
)

// Verifier зовнішні verification endpoints (upstream/verifier client)
type Verifier interface {
	PairLookup(ctx context.Context, req verifier.PairLookupRequest) (*verifier.PairLookupResponse, error)
	ResolveInput(ctx context.Context, rawInput, chainHint string) (*verifier.ResolveResponse, error)
	VerifyPool(ctx context.Context, address, chain string) (*verifier.VerifyResponse, error)
}

// PoolSearcher symbol-based пошук для free_text вводу (локальний кеш пулів)
type PoolSearcher interface {
	SearchBySymbol(query string, limit int) ([]*models.Pool, error)
}

// strategy один крок fallback ланцюга
type strategy interface {
	name() string
	tryResolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error)
}

// Resolver перетворює класифікований ввід на канонічний Pool через
// впорядкований ланцюг стратегій. Кроки строго послідовні: кожен
// наступний дорожчий за попередній.
type Resolver struct {
	client Verifier
	pools  PoolSearcher
	log    *logger.Logger
}

// New створює новий Resolver. pools може бути nil: тоді free_text
// ввід одразу дає ErrPoolNotFound.
func New(client Verifier, pools PoolSearcher, log *logger.Logger) *Resolver {
	return &Resolver{
		client: client,
		pools:  pools,
		log:    log,
	}
}

// Resolve проходить fallback ланцюг для parsed вводу. Проміжні помилки
// логуються і поглинаються; наверх іде лише terminal ErrPoolNotFound.
// Side-effect free щодо credits та history.
func (r *Resolver) Resolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	for _, step := range r.chainFor(parsed) {
		pool, err := step.tryResolve(ctx, parsed)
		if err != nil {
			// Expected given heterogeneous upstream coverage
			r.log.Warn("resolve step %s failed for kind %s: %v", step.name(), parsed.Kind, err)
			continue
		}
		if pool != nil {
			return pool, nil
		}
	}

	return nil, ErrPoolNotFound
}

// chainFor будує ланцюг стратегій для типу вводу
func (r *Resolver) chainFor(parsed classify.ParsedInput) []strategy {
	var chain []strategy

	switch parsed.Kind {
	case classify.KindTokenPair:
		chain = append(chain, &pairLookupStrategy{client: r.client, log: r.log})

	case classify.KindAddress:
		if classify.LooksLikeURL(parsed.RawInput) {
			chain = append(chain, &urlResolveStrategy{client: r.client})
		}
		chain = append(chain, &directVerifyStrategy{client: r.client})

	case classify.KindDefiLlamaID:
		chain = append(chain, &urlResolveStrategy{client: r.client})

	case classify.KindFreeText:
		if r.pools != nil {
			chain = append(chain, &symbolSearchStrategy{pools: r.pools})
		}
	}

	return chain
}

// pairLookupStrategy: pair-lookup endpoint + опціональна верифікація
// поверненої адреси. Верифікація при успіху перекриває risk дані.
type pairLookupStrategy struct {
	client Verifier
	log    *logger.Logger
}

func (s *pairLookupStrategy) name() string { return "pair-lookup" }

func (s *pairLookupStrategy) tryResolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	resp, err := s.client.PairLookup(ctx, verifier.PairLookupRequest{
		Token0:   parsed.Token0,
		Token1:   parsed.Token1,
		Protocol: parsed.ProtocolHint,
		Chain:    parsed.ChainHint,
		Stable:   parsed.StableHint,
	})
	if err != nil {
		return nil, err
	}
	if resp.Pool == nil {
		return nil, nil
	}

	pool := normalizePool(resp.Pool, sourcePairLookup)

	// Secondary on-chain verification when the candidate has a contract
	// address. A failure here falls back to the pair-lookup data unmodified.
	if pool.Address != "" {
		verifyResp, err := s.client.VerifyPool(ctx, pool.Address, pool.Chain)
		if err != nil {
			s.log.Warn("secondary verification of %s failed, keeping pair-lookup data: %v", pool.Address, err)
			return pool, nil
		}
		applyVerification(pool, verifyResp)
	}

	return pool, nil
}

// urlResolveStrategy: generic resolve (URL → canonical address), потім
// той самий verify виклик
type urlResolveStrategy struct {
	client Verifier
}

func (s *urlResolveStrategy) name() string { return "url-resolve" }

func (s *urlResolveStrategy) tryResolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	resp, err := s.client.ResolveInput(ctx, parsed.RawInput, parsed.ChainHint)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.PoolAddress == "" {
		return nil, nil
	}

	return verifyByAddress(ctx, s.client, resp.PoolAddress, parsed.ChainHint)
}

// directVerifyStrategy: on-chain верифікація напряму за адресою.
// Порожній chain = server сам визначає chain.
type directVerifyStrategy struct {
	client Verifier
}

func (s *directVerifyStrategy) name() string { return "direct-verify" }

func (s *directVerifyStrategy) tryResolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	if parsed.Address == "" {
		return nil, nil
	}

	return verifyByAddress(ctx, s.client, parsed.Address, parsed.ChainHint)
}

// symbolSearchStrategy: symbol-based пошук по локальному кешу пулів
type symbolSearchStrategy struct {
	pools PoolSearcher
}

func (s *symbolSearchStrategy) name() string { return "symbol-search" }

func (s *symbolSearchStrategy) tryResolve(ctx context.Context, parsed classify.ParsedInput) (*models.Pool, error) {
	matches, err := s.pools.SearchBySymbol(parsed.RawInput, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	pool := matches[0]
	if pool.APYSource == "" {
		pool.APYSource = sourceAggregator
	}

	return pool, nil
}

func verifyByAddress(ctx context.Context, client Verifier, address, chain string) (*models.Pool, error) {
	resp, err := client.VerifyPool(ctx, address, chain)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Pool == nil {
		return nil, nil
	}

	pool := normalizePool(resp.Pool, sourceOnChain)
	applyVerification(pool, resp)

	return pool, nil
}
