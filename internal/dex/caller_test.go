package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// fakeCaller answers eth_call by 4-byte selector.
type fakeCaller struct {
	mu       sync.Mutex
	handlers map[string]func(input []byte) ([]byte, error)
	calls    []ethereum.CallMsg
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{handlers: make(map[string]func([]byte) ([]byte, error))}
}

func (f *fakeCaller) handle(parsed abi.ABI, method string, fn func(input []byte) ([]byte, error)) {
	f.handlers[string(parsed.Methods[method].ID)] = fn
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("short call data")
	}
	fn, ok := f.handlers[string(msg.Data[:4])]
	if !ok {
		return nil, fmt.Errorf("unexpected selector %x", msg.Data[:4])
	}
	return fn(msg.Data[4:])
}

func (f *fakeCaller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
