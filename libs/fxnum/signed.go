package fxnum

// SignedFxNum is a FxNum magnitude with a sign flag.
// A zero magnitude may carry Negative; the flag still steers
// branch selection inside Log and Exp.
type SignedFxNum struct {
	Value    FxNum
	Negative bool
}

func NewSigned(v FxNum, negative bool) SignedFxNum {
	return SignedFxNum{Value: v, Negative: negative}
}

func (x SignedFxNum) Neg() SignedFxNum {
	return SignedFxNum{Value: x.Value, Negative: !x.Negative}
}

func (x SignedFxNum) IsZero() bool {
	return x.Value.IsZero()
}

func (x SignedFxNum) Add(o SignedFxNum) (SignedFxNum, bool) {
	switch {
	case x.Negative && o.Negative:
		v, ok := x.Value.Add(o.Value)
		return SignedFxNum{Value: v, Negative: true}, ok
	case o.Negative:
		// x - |o|
		v, neg := x.Value.UnsignedSub(o.Value)
		return SignedFxNum{Value: v, Negative: neg}, true
	case x.Negative:
		// o - |x|
		v, neg := o.Value.UnsignedSub(x.Value)
		return SignedFxNum{Value: v, Negative: neg}, true
	default:
		v, ok := x.Value.Add(o.Value)
		return SignedFxNum{Value: v}, ok
	}
}

func (x SignedFxNum) Sub(o SignedFxNum) (SignedFxNum, bool) {
	return x.Add(o.Neg())
}

func (x SignedFxNum) Mul(o SignedFxNum) (SignedFxNum, bool) {
	v, ok := x.Value.Mul(o.Value)
	return SignedFxNum{Value: v, Negative: x.Negative != o.Negative}, ok
}

func (x SignedFxNum) Div(o SignedFxNum) (SignedFxNum, bool) {
	v, ok := x.Value.Div(o.Value)
	return SignedFxNum{Value: v, Negative: x.Negative != o.Negative}, ok
}

// Floor floors the magnitude and keeps the sign.
func (x SignedFxNum) Floor() SignedFxNum {
	return SignedFxNum{Value: x.Value.Floor(), Negative: x.Negative}
}

func (x SignedFxNum) Equal(o SignedFxNum) bool {
	if x.Value.IsZero() && o.Value.IsZero() {
		return true
	}
	return x.Negative == o.Negative && x.Value.Equal(o.Value)
}

func (x SignedFxNum) String() string {
	if x.Negative && !x.Value.IsZero() {
		return "-" + x.Value.String()
	}
	return x.Value.String()
}
