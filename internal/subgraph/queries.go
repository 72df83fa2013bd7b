package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const coinBySymbolQuery = `query CoinBySymbol($symbol: String!) {
  coins(where: {symbol: $symbol}, first: 1) {
    id
    symbol
    totalSupply
  }
}`

const coinMetaQuery = `query CoinMeta($id: ID!) {
  coin(id: $id) {
    id
    totalSupply
    holderCount
  }
}`

// CoinLookupResult is a coin matched by symbol. TotalSupply is nil when the subgraph omits it;
// authoritative supply comes from GetCoinMeta.
type CoinLookupResult struct {
	Address     common.Address
	Symbol      string
	TotalSupply *big.Int
}

// CoinMetaResult is supply and holder data for a coin address.
type CoinMetaResult struct {
	Address     common.Address
	TotalSupply *big.Int
	HolderCount uint64
}

// bigNumber accepts subgraph BigInt values, which arrive as strings, and plain JSON numbers.
type bigNumber string

func (n *bigNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = bigNumber(s)
		return nil
	}
	*n = bigNumber(data)
	return nil
}

type coinRecord struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	TotalSupply bigNumber `json:"totalSupply"`
	HolderCount bigNumber `json:"holderCount"`
}

// FindCoinBySymbol resolves an upper-cased symbol to a coin.
func (c *Client) FindCoinBySymbol(ctx context.Context, symbol string) (CoinLookupResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return CoinLookupResult{}, ErrNotFound
	}

	var data struct {
		Coins []coinRecord `json:"coins"`
	}
	if err := c.query(ctx, coinBySymbolQuery, map[string]interface{}{"symbol": symbol}, &data); err != nil {
		return CoinLookupResult{}, err
	}
	if data.Coins == nil {
		return CoinLookupResult{}, fmt.Errorf("%w: missing coins", ErrMalformedResponse)
	}
	if len(data.Coins) == 0 {
		return CoinLookupResult{}, ErrNotFound
	}

	rec := data.Coins[0]
	address, err := parseAddress(rec.ID)
	if err != nil {
		return CoinLookupResult{}, err
	}
	result := CoinLookupResult{Address: address, Symbol: rec.Symbol}
	if rec.TotalSupply != "" {
		supply, err := parseBigInt("totalSupply", rec.TotalSupply)
		if err != nil {
			return CoinLookupResult{}, err
		}
		result.TotalSupply = supply
	}
	return result, nil
}

// GetCoinMeta loads supply and holder count for a lower-cased coin address.
func (c *Client) GetCoinMeta(ctx context.Context, address string) (CoinMetaResult, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !common.IsHexAddress(address) {
		return CoinMetaResult{}, fmt.Errorf("invalid address: %s", address)
	}

	var data struct {
		Coin *coinRecord `json:"coin"`
	}
	if err := c.query(ctx, coinMetaQuery, map[string]interface{}{"id": address}, &data); err != nil {
		return CoinMetaResult{}, err
	}
	if data.Coin == nil {
		return CoinMetaResult{}, ErrNotFound
	}

	rec := data.Coin
	parsed, err := parseAddress(rec.ID)
	if err != nil {
		return CoinMetaResult{}, err
	}
	supply, err := parseBigInt("totalSupply", rec.TotalSupply)
	if err != nil {
		return CoinMetaResult{}, err
	}
	holders, err := parseUint("holderCount", rec.HolderCount)
	if err != nil {
		return CoinMetaResult{}, err
	}
	return CoinMetaResult{Address: parsed, TotalSupply: supply, HolderCount: holders}, nil
}

func parseAddress(id string) (common.Address, error) {
	if !common.IsHexAddress(id) {
		return common.Address{}, fmt.Errorf("%w: invalid coin id %q", ErrMalformedResponse, id)
	}
	return common.HexToAddress(id), nil
}

func parseBigInt(field string, value bigNumber) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
	}
	n, ok := new(big.Int).SetString(string(value), 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid %s %q", ErrMalformedResponse, field, value)
	}
	return n, nil
}

func parseUint(field string, value bigNumber) (uint64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
	}
	n, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedResponse, field, value)
	}
	return n, nil
}
