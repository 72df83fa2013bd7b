package model

import "github.com/ethereum/go-ethereum/common"

// TokenPair is a canonically ordered pair of pool tokens (Token0 < Token1).
type TokenPair struct {
	Token0 common.Address `json:"token0"`
	Token1 common.Address `json:"token1"`
}
