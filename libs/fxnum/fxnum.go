package fxnum

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional decimal digits carried by FxNum.
const Decimals = 18

// BytesLen is the size of the serialized form (three little-endian 64-bit limbs).
const BytesLen = 24

const (
	oneRaw  = uint64(1_000_000_000_000_000_000)
	halfRaw = oneRaw / 2
)

var (
	scaleOne           = uint256.NewInt(oneRaw)
	roundingCorrection = uint256.NewInt(halfRaw)

	ZERO = FxNum{}
	ONE  = FromUint64(1)
	TWO  = FromUint64(2)
	HALF = FromRaw64(halfRaw)
)

// FxNum is a non-negative number scaled by 10^18 and kept below 2^192.
// The zero value is 0.
type FxNum struct {
	v uint256.Int
}

// fit reports whether z can be carried by FxNum (below 2^192).
func fit(z *uint256.Int) (FxNum, bool) {
	if z[3] != 0 {
		return ZERO, false
	}
	return FxNum{v: *z}, true
}

// FromUint64 returns n as a fixed-point value. It never overflows.
func FromUint64(n uint64) FxNum {
	var z uint256.Int
	z.Mul(uint256.NewInt(n), scaleOne)
	return FxNum{v: z}
}

// FromInt scales an arbitrary integer by 10^18.
func FromInt(n *uint256.Int) (FxNum, bool) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(n, scaleOne); overflow {
		return ZERO, false
	}
	return fit(&z)
}

// FromRaw wraps an already scaled integer.
func FromRaw(raw *uint256.Int) (FxNum, bool) {
	return fit(raw)
}

func FromRaw64(raw uint64) FxNum {
	return FxNum{v: uint256.Int{raw, 0, 0, 0}}
}

// MustFromRawDecimal parses a scaled integer written in base 10.
// It is meant for constants and panics on bad input.
func MustFromRawDecimal(s string) FxNum {
	ret, ok := fit(uint256.MustFromDecimal(s))
	if !ok {
		panic(fmt.Errorf("fxnum: raw value %s does not fit in 192 bits", s))
	}
	return ret
}

// FromLimbs builds a value from little-endian 64-bit limbs.
func FromLimbs(lo, mid, hi uint64) FxNum {
	return FxNum{v: uint256.Int{lo, mid, hi, 0}}
}

func (x FxNum) Limbs() (lo, mid, hi uint64) {
	return x.v[0], x.v[1], x.v[2]
}

// FromBytes is the inverse of Bytes.
func FromBytes(bz [BytesLen]byte) FxNum {
	return FromLimbs(
		binary.LittleEndian.Uint64(bz[0:8]),
		binary.LittleEndian.Uint64(bz[8:16]),
		binary.LittleEndian.Uint64(bz[16:24]),
	)
}

// Bytes returns the limbs, each encoded in little-endian.
func (x FxNum) Bytes() [BytesLen]byte {
	var bz [BytesLen]byte
	binary.LittleEndian.PutUint64(bz[0:8], x.v[0])
	binary.LittleEndian.PutUint64(bz[8:16], x.v[1])
	binary.LittleEndian.PutUint64(bz[16:24], x.v[2])
	return bz
}

// Raw returns a copy of the scaled integer.
func (x FxNum) Raw() *uint256.Int {
	return x.v.Clone()
}

func (x FxNum) IsZero() bool {
	return x.v.IsZero()
}

func (x FxNum) Signed() SignedFxNum {
	return SignedFxNum{Value: x}
}

func (x FxNum) Add(o FxNum) (FxNum, bool) {
	var z uint256.Int
	z.Add(&x.v, &o.v)
	return fit(&z)
}

// Sub fails when o is greater than x.
func (x FxNum) Sub(o FxNum) (FxNum, bool) {
	if x.v.Lt(&o.v) {
		return ZERO, false
	}
	var z uint256.Int
	z.Sub(&x.v, &o.v)
	return FxNum{v: z}, true
}

// UnsignedSub returns |x-o| and whether x-o is negative.
func (x FxNum) UnsignedSub(o FxNum) (FxNum, bool) {
	var z uint256.Int
	if x.v.Lt(&o.v) {
		z.Sub(&o.v, &x.v)
		return FxNum{v: z}, true
	}
	z.Sub(&x.v, &o.v)
	return FxNum{v: z}, false
}

// Mul rounds half up. When the full product does not fit, it falls back to
// (larger/ONE)*smaller without rounding correction.
func (x FxNum) Mul(o FxNum) (FxNum, bool) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&x.v, &o.v); !overflow && z[3] == 0 {
		z.Add(&z, roundingCorrection)
		if z[3] != 0 {
			return ZERO, false
		}
		z.Div(&z, scaleOne)
		return FxNum{v: z}, true
	}

	larger, smaller := &x.v, &o.v
	if larger.Lt(smaller) {
		larger, smaller = smaller, larger
	}
	z.Div(larger, scaleOne)
	if _, overflow := z.MulOverflow(&z, smaller); overflow {
		return ZERO, false
	}
	return fit(&z)
}

// Div rounds half up and fails on a zero divisor. When x*ONE does not fit,
// it divides first and scales afterwards.
func (x FxNum) Div(o FxNum) (FxNum, bool) {
	if o.v.IsZero() {
		return ZERO, false
	}

	var z uint256.Int
	if _, overflow := z.MulOverflow(&x.v, scaleOne); !overflow && z[3] == 0 {
		z.Add(&z, roundingCorrection)
		if z[3] != 0 {
			return ZERO, false
		}
		z.Div(&z, &o.v)
		return FxNum{v: z}, true
	}

	z.Add(&x.v, roundingCorrection)
	if z[3] != 0 {
		return ZERO, false
	}
	z.Div(&z, &o.v)
	if _, overflow := z.MulOverflow(&z, scaleOne); overflow {
		return ZERO, false
	}
	return fit(&z)
}

// Floor rounds toward zero to a multiple of ONE.
func (x FxNum) Floor() FxNum {
	var z uint256.Int
	z.Div(&x.v, scaleOne)
	z.Mul(&z, scaleOne)
	return FxNum{v: z}
}

// Ceiling rounds up to a multiple of ONE.
func (x FxNum) Ceiling() (FxNum, bool) {
	var z uint256.Int
	z.AddUint64(&x.v, oneRaw-1)
	z.Div(&z, scaleOne)
	z.Mul(&z, scaleOne)
	return fit(&z)
}

// Shl multiplies by 2^n and fails instead of wrapping past 192 bits.
func (x FxNum) Shl(n uint) (FxNum, bool) {
	if x.v.IsZero() {
		return ZERO, true
	}
	if uint(x.v.BitLen())+n > 192 {
		return ZERO, false
	}
	var z uint256.Int
	z.Lsh(&x.v, n)
	return FxNum{v: z}, true
}

// Shr divides by 2^n, truncating.
func (x FxNum) Shr(n uint) FxNum {
	var z uint256.Int
	z.Rsh(&x.v, n)
	return FxNum{v: z}
}

// Int rounds half up to the nearest integer.
func (x FxNum) Int() *uint256.Int {
	z := new(uint256.Int)
	z.Add(&x.v, roundingCorrection)
	return z.Div(z, scaleOne)
}

// Uint64 rounds like Int and fails if the result does not fit in uint64.
func (x FxNum) Uint64() (uint64, bool) {
	z := x.Int()
	if !z.IsUint64() {
		return 0, false
	}
	return z.Uint64(), true
}

func (x FxNum) Cmp(o FxNum) int {
	return x.v.Cmp(&o.v)
}

func (x FxNum) Equal(o FxNum) bool {
	return x.v.Eq(&o.v)
}

func (x FxNum) GreaterThan(o FxNum) bool {
	return x.v.Gt(&o.v)
}

func (x FxNum) GreaterThanOrEqual(o FxNum) bool {
	return !x.v.Lt(&o.v)
}

func (x FxNum) LessThan(o FxNum) bool {
	return x.v.Lt(&o.v)
}

func (x FxNum) LessThanOrEqual(o FxNum) bool {
	return !x.v.Gt(&o.v)
}

// AlmostEqual reports whether |x-o| < tolerance.
func (x FxNum) AlmostEqual(o, tolerance FxNum) bool {
	diff, _ := x.UnsignedSub(o)
	return diff.LessThan(tolerance)
}

// String renders "<integer>.<18 digits>". It is for display only.
func (x FxNum) String() string {
	var ip, fp uint256.Int
	ip.DivMod(&x.v, scaleOne, &fp)
	return fmt.Sprintf("%s.%018d", ip.Dec(), fp.Uint64())
}

// leadingZeros64 counts the leading zero bits of the lowest limb.
func leadingZeros64(x FxNum) int {
	return bits.LeadingZeros64(x.v[0])
}
