package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"coinFrame/internal/model"
)

// PoolReader reads live V3 pool state.
type PoolReader struct {
	caller ContractCaller
}

func NewPoolReader(caller ContractCaller) *PoolReader {
	return &PoolReader{caller: caller}
}

// ReadSlot0 returns the pool's sqrtPriceX96 and current tick.
func (r *PoolReader) ReadSlot0(ctx context.Context, pool common.Address) (*big.Int, int32, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, 0, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, r.caller, pool, poolABI, "slot0")
	if err != nil {
		return nil, 0, err
	}
	if len(values) < 2 {
		return nil, 0, fmt.Errorf("slot0 return size %d", len(values))
	}

	sqrt, err := asBigInt(values[0])
	if err != nil {
		return nil, 0, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return nil, 0, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, 0, fmt.Errorf("tick: %w", err)
	}
	return sqrt, tick, nil
}

// ReadLiquidity returns the pool's in-range liquidity.
func (r *PoolReader) ReadLiquidity(ctx context.Context, pool common.Address) (*big.Int, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, r.caller, pool, poolABI, "liquidity")
	if err != nil {
		return nil, err
	}
	liq, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	return liq, nil
}

// ReadPoolState issues slot0 and liquidity concurrently; both must succeed.
func (r *PoolReader) ReadPoolState(ctx context.Context, pool common.Address) (model.PoolState, error) {
	var state model.PoolState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sqrt, tick, err := r.ReadSlot0(gctx, pool)
		if err != nil {
			return err
		}
		state.SqrtPriceX96 = sqrt
		state.Tick = tick
		return nil
	})
	g.Go(func() error {
		liq, err := r.ReadLiquidity(gctx, pool)
		if err != nil {
			return err
		}
		state.Liquidity = liq
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.PoolState{}, err
	}
	return state, nil
}
