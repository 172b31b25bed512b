package fxnum

// Exp returns e^x.
// The result is scaled back by 2^k with a bit shift; a shift that would
// carry the value past 192 bits fails. Precision degrades as |x| grows
// (roughly beyond 20).
func (x SignedFxNum) Exp() (FxNum, bool) {
	c := newOpChain()

	var hi, lo, r, k SignedFxNum
	if x.Value.GreaterThan(halfLn2) {
		if x.Value.GreaterThanOrEqual(threeHalfLn2) {
			// k = round(x/ln2)
			k = c.s(invLn2.Signed().Mul(x))
			k = c.s(k.Add(SignedFxNum{Value: HALF, Negative: x.Negative}))
			k = k.Floor()
		} else {
			k = SignedFxNum{Value: ONE, Negative: x.Negative}
		}

		hi = c.s(c.s(k.Mul(ln2Hi.Signed())).Div(ln2HiScale.Signed()))
		hi = c.s(x.Sub(hi))
		lo = c.s(c.s(k.Mul(ln2Lo.Signed())).Div(ln2LoScale.Signed()))
		r = c.s(hi.Sub(lo))
	} else {
		r, hi = x, x
	}

	xx := c.s(r.Mul(r))
	poly := c.s(p4.Add(c.s(xx.Mul(p5))))
	poly = c.s(p3.Add(c.s(xx.Mul(poly))))
	poly = c.s(p2.Add(c.s(xx.Mul(poly))))
	poly = c.s(p1.Add(c.s(xx.Mul(poly))))
	cc := c.s(r.Sub(c.s(poly.Mul(xx))))

	// 1 + (r*c/(2-c) - lo + hi)
	y := c.s(c.s(r.Mul(cc)).Div(c.s(TWO.Signed().Sub(cc))))
	y = c.s(y.Sub(lo))
	y = c.s(y.Add(hi))
	y = c.s(ONE.Signed().Add(y))
	if !c.ok {
		return ZERO, false
	}

	if k.Value.IsZero() {
		return y.Value, true
	}

	n := k.Value.Int()
	if k.Negative {
		if !n.IsUint64() || n.Uint64() >= 256 {
			return ZERO, true
		}
		return y.Value.Shr(uint(n.Uint64())), true
	}
	if !n.IsUint64() || n.Uint64() > 192 {
		return ZERO, false
	}
	return y.Value.Shl(uint(n.Uint64()))
}

// Pow returns x^e computed as exp(e*ln(x)). A zero base yields zero.
func (x FxNum) Pow(e FxNum) (FxNum, bool) {
	if x.IsZero() {
		return ZERO, true
	}
	lg, ok := x.Log()
	if !ok {
		return ZERO, false
	}
	p, ok := e.Signed().Mul(lg)
	if !ok {
		return ZERO, false
	}
	return p.Exp()
}
