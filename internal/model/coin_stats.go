package model

import "github.com/shopspring/decimal"

// CoinStats is the resolved market view of a coin, denominated in the reference asset.
type CoinStats struct {
	Symbol      string          `json:"symbol"`
	Address     string          `json:"address"`
	Pool        string          `json:"pool"`
	Price       decimal.Decimal `json:"price"`
	Volume24h   decimal.Decimal `json:"volume_24h"`
	Liquidity   decimal.Decimal `json:"liquidity"`
	MarketCap   decimal.Decimal `json:"market_cap"`
	HolderCount uint64          `json:"holder_count"`
}
