package dex

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"coinFrame/internal/model"
)

// SortTokens orders two token addresses the way the factory keys its pools.
// Comparison is on the lowercase hex form; Hex() is checksummed and mixed-case.
func SortTokens(a, b common.Address) model.TokenPair {
	if addressLess(b, a) {
		a, b = b, a
	}
	return model.TokenPair{Token0: a, Token1: b}
}

func addressLess(a, b common.Address) bool {
	return strings.ToLower(a.Hex()) < strings.ToLower(b.Hex())
}
