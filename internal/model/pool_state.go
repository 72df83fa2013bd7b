package model

import "math/big"

// PoolState is a single read of a V3 pool's price and active liquidity.
type PoolState struct {
	SqrtPriceX96 *big.Int `json:"sqrt_price_x96"`
	Tick         int32    `json:"tick"`
	Liquidity    *big.Int `json:"liquidity"`
}
