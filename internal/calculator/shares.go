// Package calculator holds the exact integer arithmetic behind share
// payments: share amounts, platform fees and refunds. Amounts are in the
// token's smallest unit and never rounded except where noted.
package calculator

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// BasisPoints is the fee denominator (100% = 10 000 bps).
const BasisPoints = 10_000

// ErrOverflow is returned when a product does not fit in 256 bits.
var ErrOverflow = errors.New("amount overflows 256 bits")

// ShareAmount returns sharePrice × shares.
func ShareAmount(sharePrice *uint256.Int, shares uint8) (*uint256.Int, error) {
	amount, overflow := new(uint256.Int).MulOverflow(sharePrice, uint256.NewInt(uint64(shares)))
	if overflow {
		return nil, fmt.Errorf("%w: %s × %d", ErrOverflow, sharePrice.Dec(), shares)
	}
	return amount, nil
}

// FeeSplit is one payment divided between the platform and the creator.
type FeeSplit struct {
	Amount *uint256.Int // gross amount pulled from the payer
	Fee    *uint256.Int // platform share, truncated toward zero
	Net    *uint256.Int // Amount - Fee, forwarded to the creator
}

// PlatformFee splits amount by a fee in basis points:
// fee = floor(amount × feeBps / 10 000), net = amount - fee.
func PlatformFee(amount *uint256.Int, feeBps uint16) (FeeSplit, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(uint64(feeBps)))
	if overflow {
		return FeeSplit{}, fmt.Errorf("%w: fee on %s", ErrOverflow, amount.Dec())
	}
	fee := scaled.Div(scaled, uint256.NewInt(BasisPoints))
	return FeeSplit{
		Amount: amount.Clone(),
		Fee:    fee,
		Net:    new(uint256.Int).Sub(amount, fee),
	}, nil
}

// FormatUnits renders a smallest-unit amount with the token's decimals,
// trimming trailing zeros ("50000000", 6 → "50").
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	return decimal.NewFromBigInt(amount.ToBig(), -int32(decimals)).String()
}

// ParseUnits converts a human amount ("10.5") to smallest units. Amounts
// with more fractional digits than the token supports are rejected.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: negative", s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", s, decimals)
	}
	amount, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	return amount, nil
}
