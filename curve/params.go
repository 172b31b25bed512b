package curve

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
)

const RawCurveLen = 3 * fxnum.BytesLen

// RawExponentialCurve is the persisted form of the curve parameters.
// Each field holds three little-endian 64-bit limbs.
type RawExponentialCurve struct {
	A [fxnum.BytesLen]byte
	B [fxnum.BytesLen]byte
	C [fxnum.BytesLen]byte
}

func RawCurveFrom(curve *ContinuousExponentialCurve) RawExponentialCurve {
	return RawExponentialCurve{
		A: curve.A.Bytes(),
		B: curve.B.Bytes(),
		C: curve.C.Bytes(),
	}
}

func (raw RawExponentialCurve) ToCurve() *ContinuousExponentialCurve {
	return &ContinuousExponentialCurve{
		A: fxnum.FromBytes(raw.A),
		B: fxnum.FromBytes(raw.B),
		C: fxnum.FromBytes(raw.C),
	}
}

func (raw RawExponentialCurve) Bytes() [RawCurveLen]byte {
	var bz [RawCurveLen]byte
	copy(bz[0:], raw.A[:])
	copy(bz[fxnum.BytesLen:], raw.B[:])
	copy(bz[2*fxnum.BytesLen:], raw.C[:])
	return bz
}

func RawCurveFromBytes(bz [RawCurveLen]byte) RawExponentialCurve {
	var raw RawExponentialCurve
	copy(raw.A[:], bz[0:])
	copy(raw.B[:], bz[fxnum.BytesLen:])
	copy(raw.C[:], bz[2*fxnum.BytesLen:])
	return raw
}
