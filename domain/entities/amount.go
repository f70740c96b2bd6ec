package entities

import (
	"fmt"
	"math/big"
	"strconv"
)

const (
	// NativeDecimals is the decimal precision of RON
	NativeDecimals = 18
	// AmountPrecision is the number of decimals kept when converting shares
	AmountPrecision = 8
)

var weiPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(NativeDecimals), nil)

// ToWei converts whole RON into wei, rounding to AmountPrecision decimals first
func ToWei(amount float64) (*big.Int, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %v", amount)
	}

	rat, ok := new(big.Rat).SetString(strconv.FormatFloat(amount, 'f', AmountPrecision, 64))
	if !ok {
		return nil, fmt.Errorf("invalid amount: %v", amount)
	}
	rat.Mul(rat, new(big.Rat).SetInt(weiPerUnit))

	// Exact after scaling: AmountPrecision < NativeDecimals
	return new(big.Int).Quo(rat.Num(), rat.Denom()), nil
}

// FromWei converts wei into whole RON
func FromWei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(wei, weiPerUnit).Float64()
	return f
}
