package types

import (
	"fmt"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/holiman/uint256"
)

const (
	DECIMAL int16 = 18

	MaxBasisPoints uint32 = 10_000
)

var (
	pow10Tab [DECIMAL + 1]*uint256.Int
	oneBps   = fxnum.FromRaw64(100_000_000_000_000) // 0.0001
)

func init() {
	pow10Tab[0] = uint256.NewInt(1)
	for i := 1; i <= int(DECIMAL); i++ {
		pow10Tab[i] = new(uint256.Int).Mul(pow10Tab[i-1], uint256.NewInt(10))
	}
}

func checkDecimals(decimals uint8) xerrors.XError {
	if int16(decimals) > DECIMAL {
		return xerrors.ErrInvalidDecimals.Wrapf("%d decimal places (max %d)", decimals, DECIMAL)
	}
	return nil
}

// ToNumeric converts an integer amount of the smallest token unit
// into a fixed-point amount of whole tokens: raw / 10^decimals.
func ToNumeric(raw uint64, decimals uint8) (fxnum.FxNum, xerrors.XError) {
	if xerr := checkDecimals(decimals); xerr != nil {
		return fxnum.ZERO, xerr
	}
	scaled := new(uint256.Int).Mul(uint256.NewInt(raw), pow10Tab[DECIMAL-int16(decimals)])
	ret, ok := fxnum.FromRaw(scaled)
	if !ok {
		return fxnum.ZERO, xerrors.ErrOverFlow.Wrapf("amount %d", raw)
	}
	return ret, nil
}

// FromNumeric is the inverse of ToNumeric: round(v * 10^decimals), half up.
func FromNumeric(v fxnum.FxNum, decimals uint8) (uint64, xerrors.XError) {
	if xerr := checkDecimals(decimals); xerr != nil {
		return 0, xerr
	}
	div := pow10Tab[DECIMAL-int16(decimals)]
	half := new(uint256.Int).Rsh(div, 1)

	z := v.Raw()
	z.Add(z, half)
	z.Div(z, div)
	if !z.IsUint64() {
		return 0, xerrors.ErrOverFlow.Wrapf("numeric %s does not fit in u64 with %d decimals", v, decimals)
	}
	return z.Uint64(), nil
}

// UnitOf returns 10^decimals, the number of smallest units in one whole token.
func UnitOf(decimals uint8) (uint64, xerrors.XError) {
	if xerr := checkDecimals(decimals); xerr != nil {
		return 0, xerr
	}
	return pow10Tab[decimals].Uint64(), nil
}

// FromBasisPoints returns bps/10000 as a fixed-point rate.
func FromBasisPoints(bps uint32) (fxnum.FxNum, xerrors.XError) {
	if bps > MaxBasisPoints {
		return fxnum.ZERO, xerrors.ErrInvalidFeeRate.Wrapf("%d basis points", bps)
	}
	ret, _ := oneBps.Mul(fxnum.FromUint64(uint64(bps)))
	return ret, nil
}

// FormattedAmount renders a raw amount with its decimal point, e.g. 1234567 with 6 decimals is "1.234567".
func FormattedAmount(raw uint64, decimals uint8) string {
	if decimals == 0 || int16(decimals) > DECIMAL {
		return fmt.Sprintf("%d", raw)
	}
	q, r := new(uint256.Int).DivMod(uint256.NewInt(raw), pow10Tab[decimals], new(uint256.Int))
	return fmt.Sprintf("%d.%0*d", q.Uint64(), int(decimals), r.Uint64())
}
