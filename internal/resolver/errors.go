package resolver

import (
	"errors"
	"fmt"
)

// Kind classifies a failed resolution.
type Kind int

const (
	// SymbolNotFound means the symbol does not resolve to any coin.
	SymbolNotFound Kind = iota + 1
	// PoolNotFound means the coin has no pool against the reference asset at the configured fee tier.
	PoolNotFound
	// ChainReadError covers RPC failures, timeouts and malformed contract responses.
	ChainReadError
	// UpstreamError covers any other transport or parse fault.
	UpstreamError
)

func (k Kind) String() string {
	switch k {
	case SymbolNotFound:
		return "symbol_not_found"
	case PoolNotFound:
		return "pool_not_found"
	case ChainReadError:
		return "chain_read_error"
	case UpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Message is the user-visible text for the kind. It never carries transport detail.
func (k Kind) Message() string {
	switch k {
	case SymbolNotFound:
		return "Coin not found"
	case PoolNotFound:
		return "No liquidity pool found for this coin"
	case ChainReadError:
		return "Could not read on-chain data"
	default:
		return "Service temporarily unavailable"
	}
}

// ResolutionError is the terminal failure of one pipeline run.
type ResolutionError struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %s: %s", e.Symbol, e.Kind)
	}
	return fmt.Sprintf("resolve %s: %s: %v", e.Symbol, e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err. Errors from outside the pipeline count as UpstreamError.
func KindOf(err error) Kind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return UpstreamError
}

func fail(kind Kind, symbol string, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Symbol: symbol, Err: err}
}
