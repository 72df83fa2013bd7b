// Package stats converts raw pool and supply reads into display market stats.
package stats

import (
	"math/big"

	"github.com/shopspring/decimal"

	"coinFrame/internal/model"
)

const (
	// CoinDecimals is the decimals of every coin served by the frame.
	CoinDecimals = 18
	// ReferenceDecimals is the decimals of the reference asset (wrapped native).
	ReferenceDecimals = 18

	// significantScale is the number of places kept past the first significant digit.
	significantScale = 18
)

// volumeEstimateRatio is a placeholder share of liquidity reported as 24h volume.
// There is no volume source; the figure is an estimate and labelled as such.
var volumeEstimateRatio = decimal.New(1, -1)

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// VolumeEstimateRatio returns the share of liquidity reported as 24h volume.
func VolumeEstimateRatio() decimal.Decimal {
	return volumeEstimateRatio
}

// Compute derives price, liquidity, volume and market cap from one pool read.
// Liquidity is raw pool liquidity scaled to 18 decimals and multiplied by price; it is
// not the pool's TVL. Everything is derived from the exact price and rounded last.
func Compute(pool model.PoolState, meta model.CoinMeta) model.CoinStats {
	price := priceRat(pool.SqrtPriceX96)
	liquidity := ratToDecimal(new(big.Rat).Mul(fixedRat(pool.Liquidity, CoinDecimals), price))
	marketCap := ratToDecimal(new(big.Rat).Mul(fixedRat(meta.TotalSupply, CoinDecimals), price))

	return model.CoinStats{
		Price:       ratToDecimal(price),
		Volume24h:   liquidity.Mul(volumeEstimateRatio),
		Liquidity:   liquidity,
		MarketCap:   marketCap,
		HolderCount: meta.HolderCount,
	}
}

// PriceFromSqrtX96 returns (sqrtPriceX96 / 2^96)^2 in human units, keeping 18 digits
// past the first significant one.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int) decimal.Decimal {
	return ratToDecimal(priceRat(sqrtPriceX96))
}

func priceRat(sqrtPriceX96 *big.Int) *big.Rat {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return new(big.Rat)
	}
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	ratio := new(big.Rat).SetFrac(squared, q192)
	return ratio.Mul(ratio, decimalAdjust(CoinDecimals, ReferenceDecimals))
}

func decimalAdjust(coinDecimals, referenceDecimals int64) *big.Rat {
	num := new(big.Int).Exp(big.NewInt(10), big.NewInt(coinDecimals), nil)
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(referenceDecimals), nil)
	return new(big.Rat).SetFrac(num, den)
}

// ratToDecimal rounds r relative to its magnitude so sub-1e-18 values keep their digits.
func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r.Sign() == 0 {
		return decimal.Zero
	}
	scale := significantScale
	if zeros := len(r.Denom().String()) - len(new(big.Int).Abs(r.Num()).String()); zeros > 0 {
		scale += zeros
	}
	d, err := decimal.NewFromString(r.FloatString(scale))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fixedRat(value *big.Int, decimals int64) *big.Rat {
	if value == nil || value.Sign() <= 0 {
		return new(big.Rat)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	return new(big.Rat).SetFrac(value, scale)
}
