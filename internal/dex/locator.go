package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrPoolNotFound is returned when the factory has no pool for the pair and fee tier.
var ErrPoolNotFound = errors.New("pool not found")

// PoolLocator finds V3 pools through the factory's getPool lookup.
type PoolLocator struct {
	caller  ContractCaller
	factory common.Address
}

// NewPoolLocator builds a locator bound to one factory contract.
func NewPoolLocator(caller ContractCaller, factory common.Address) *PoolLocator {
	return &PoolLocator{caller: caller, factory: factory}
}

// LocatePool returns the pool for (token, reference) at the given fee tier.
// The factory answers the zero address for unknown or misordered pairs, which maps to ErrPoolNotFound.
func (l *PoolLocator) LocatePool(ctx context.Context, token, reference common.Address, fee uint32) (common.Address, error) {
	if token == reference {
		return common.Address{}, ErrPoolNotFound
	}

	factoryABI, err := V3FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}

	pair := SortTokens(token, reference)
	values, err := callMethod(ctx, l.caller, l.factory, factoryABI, "getPool",
		pair.Token0,
		pair.Token1,
		new(big.Int).SetUint64(uint64(fee)),
	)
	if err != nil {
		return common.Address{}, err
	}

	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, ErrPoolNotFound
	}
	return pool, nil
}
