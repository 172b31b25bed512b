package fxnum

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/robaho/fixed"
	"github.com/shopspring/decimal"
)

// fixedScaleDigits represents the default scale (7 decimal places) used by robaho/fixed.
const fixedScaleDigits = 7

var fixedDownscale = uint256.NewInt(100_000_000_000) // 10^(18-7)

// FromString parses a non-negative decimal string such as "12.5".
// Digits beyond 18 decimal places are rounded half up.
func FromString(s string) (FxNum, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZERO, err
	}
	ret, ok := FromDecimal(d)
	if !ok {
		return ZERO, fmt.Errorf("fxnum: %q is negative or too large", s)
	}
	return ret, nil
}

func MustFromString(s string) FxNum {
	ret, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return ret
}

// FromDecimal converts d, rounding to 18 decimal places.
func FromDecimal(d decimal.Decimal) (FxNum, bool) {
	if d.IsNegative() {
		return ZERO, false
	}
	raw, overflow := uint256.FromBig(d.Shift(Decimals).Round(0).BigInt())
	if overflow {
		return ZERO, false
	}
	return fit(raw)
}

// ToDecimal is exact.
func (x FxNum) ToDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(x.v.ToBig(), -Decimals)
}

func (x SignedFxNum) ToDecimal() decimal.Decimal {
	d := x.Value.ToDecimal()
	if x.Negative {
		return d.Neg()
	}
	return d
}

// ToFixed rounds x half up to 7 decimal places.
func (x FxNum) ToFixed() (fixed.Fixed, error) {
	var z uint256.Int
	z.AddUint64(&x.v, fixedDownscale.Uint64()/2)
	z.Div(&z, fixedDownscale)
	if !z.IsUint64() || z.Uint64() > math.MaxInt64 {
		return fixed.NaN, fmt.Errorf("fxnum: %s is out of fixed.Fixed range", x)
	}
	return fixed.NewI(int64(z.Uint64()), fixedScaleDigits), nil
}

// FromFixed fails for NaN and negative values.
func FromFixed(f fixed.Fixed) (FxNum, error) {
	d, err := FixedToDecimalByInt(f)
	if err != nil {
		return ZERO, err
	}
	ret, ok := FromDecimal(d)
	if !ok {
		return ZERO, fmt.Errorf("fxnum: negative fixed.Fixed %s", f)
	}
	return ret, nil
}

// FixedToDecimalByInt converts a robaho/fixed.Fixed value to a shopspring/decimal.Decimal.
// It leverages the internal int64 value via MarshalBinary.
func FixedToDecimalByInt(f fixed.Fixed) (decimal.Decimal, error) {
	if f.IsNaN() {
		return decimal.Decimal{}, fmt.Errorf("cannot convert NaN fixed.Fixed to decimal.Decimal")
	}

	buf, err := f.MarshalBinary()
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to marshal fixed.Fixed to binary: %w", err)
	}

	// 'raw' is value * 10^fixedScaleDigits
	raw, _ := binary.Varint(buf)
	return decimal.New(raw, -fixedScaleDigits), nil
}
