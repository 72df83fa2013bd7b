package model

import "math/big"

// CoinMeta captures subgraph supply data for a coin. TotalSupply is 10^18 scaled.
type CoinMeta struct {
	TotalSupply *big.Int `json:"total_supply"`
	HolderCount uint64   `json:"holder_count"`
}
