// Package resolver turns a coin symbol into live market stats.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"coinFrame/internal/dex"
	"coinFrame/internal/model"
	"coinFrame/internal/stats"
	"coinFrame/internal/subgraph"
)

// CoinDirectory resolves coins and their supply data.
type CoinDirectory interface {
	FindCoinBySymbol(ctx context.Context, symbol string) (subgraph.CoinLookupResult, error)
	GetCoinMeta(ctx context.Context, address string) (subgraph.CoinMetaResult, error)
}

// PoolLocator finds the pool for a token pair at a fee tier.
type PoolLocator interface {
	LocatePool(ctx context.Context, token, reference common.Address, fee uint32) (common.Address, error)
}

// PoolStateReader reads live pool state.
type PoolStateReader interface {
	ReadPoolState(ctx context.Context, pool common.Address) (model.PoolState, error)
}

// Settings is the static chain configuration a pipeline is bound to.
type Settings struct {
	Reference common.Address
	FeeTier   uint32
}

// Pipeline runs symbol lookup, pool lookup, chain read and stats computation in order.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	coins    CoinDirectory
	pools    PoolLocator
	reader   PoolStateReader
	settings Settings
	logger   *zap.Logger
}

func New(coins CoinDirectory, pools PoolLocator, reader PoolStateReader, settings Settings, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		coins:    coins,
		pools:    pools,
		reader:   reader,
		settings: settings,
		logger:   logger,
	}
}

// NormalizeSymbol trims and upper-cases a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Resolve returns stats for symbol or a *ResolutionError. Nothing is retried.
func (p *Pipeline) Resolve(ctx context.Context, symbol string) (model.CoinStats, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return model.CoinStats{}, fail(SymbolNotFound, symbol, fmt.Errorf("empty symbol"))
	}
	log := p.logger.With(zap.String("symbol", symbol))

	log.Debug("symbol lookup")
	coin, err := p.coins.FindCoinBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, subgraph.ErrNotFound) {
			return model.CoinStats{}, fail(SymbolNotFound, symbol, err)
		}
		return model.CoinStats{}, fail(UpstreamError, symbol, fmt.Errorf("find coin: %w", err))
	}

	address := strings.ToLower(coin.Address.Hex())
	log.Debug("address found", zap.String("address", address))
	meta, err := p.coins.GetCoinMeta(ctx, address)
	if err != nil {
		return model.CoinStats{}, fail(UpstreamError, symbol, fmt.Errorf("coin meta: %w", err))
	}

	pool, err := p.pools.LocatePool(ctx, coin.Address, p.settings.Reference, p.settings.FeeTier)
	if err != nil {
		if errors.Is(err, dex.ErrPoolNotFound) {
			return model.CoinStats{}, fail(PoolNotFound, symbol, err)
		}
		return model.CoinStats{}, fail(ChainReadError, symbol, fmt.Errorf("locate pool: %w", err))
	}
	log.Debug("pool found", zap.String("pool", pool.Hex()), zap.Uint32("fee", p.settings.FeeTier))

	state, err := p.reader.ReadPoolState(ctx, pool)
	if err != nil {
		return model.CoinStats{}, fail(ChainReadError, symbol, fmt.Errorf("read pool state: %w", err))
	}

	result := stats.Compute(state, model.CoinMeta{
		TotalSupply: meta.TotalSupply,
		HolderCount: meta.HolderCount,
	})
	result.Symbol = symbol
	result.Address = address
	result.Pool = strings.ToLower(pool.Hex())

	log.Debug("stats computed",
		zap.String("price", result.Price.String()),
		zap.String("liquidity", result.Liquidity.String()),
		zap.Uint64("holders", result.HolderCount),
	)
	return result, nil
}
