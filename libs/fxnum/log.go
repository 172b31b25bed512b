package fxnum

// opChain threads the ok flag of a sequence of checked operations.
// Once an operation fails the chain stays failed; later operations still
// run on zero values, which never panic.
type opChain struct {
	ok bool
}

func newOpChain() *opChain {
	return &opChain{ok: true}
}

func (c *opChain) u(v FxNum, ok bool) FxNum {
	c.ok = c.ok && ok
	return v
}

func (c *opChain) s(v SignedFxNum, ok bool) SignedFxNum {
	c.ok = c.ok && ok
	return v
}

// frexp splits x into frac*2^exp with frac in [0.5, 1).
func frexp(x FxNum) (frac FxNum, exp int, ok bool) {
	if x.IsZero() {
		return ZERO, 0, true
	}

	if x.LessThan(ONE) {
		n := leadingZeros64(x) - leadingZeros64(ONE)
		frac, ok = x.Shl(uint(n))
		if !ok {
			return ZERO, 0, false
		}
		if frac.LessThan(HALF) {
			frac, ok = frac.Mul(TWO)
			return frac, -n - 1, ok
		}
		return frac, -n, true
	}

	n := x.Int().BitLen()
	frac = x.Shr(uint(n))
	if frac.LessThan(HALF) {
		frac, ok = frac.Mul(TWO)
		return frac, n - 1, ok
	}
	return frac, n, true
}

// Log returns the natural logarithm of x.
// It fails for zero and on any intermediate overflow.
func (x FxNum) Log() (SignedFxNum, bool) {
	if x.IsZero() {
		return SignedFxNum{}, false
	}
	if x.Equal(ONE) {
		return SignedFxNum{}, true
	}

	frac, k, ok := frexp(x)
	if !ok {
		return SignedFxNum{}, false
	}

	c := newOpChain()
	if frac.LessThan(sqrt2OverTwo) {
		frac = c.u(frac.Mul(TWO))
		k--
	}

	f := c.s(frac.Signed().Sub(ONE.Signed()))
	s := c.s(f.Div(c.s(TWO.Signed().Add(f))))
	s2 := c.s(s.Mul(s)).Value
	s4 := c.u(s2.Mul(s2))

	// odd and even terms of the polynomial in s^2
	t1 := c.u(s4.Mul(lg7))
	t1 = c.u(lg5.Add(t1))
	t1 = c.u(s4.Mul(t1))
	t1 = c.u(lg3.Add(t1))
	t1 = c.u(s4.Mul(t1))
	t1 = c.u(lg1.Add(t1))
	t1 = c.u(s2.Mul(t1))

	t2 := c.u(s4.Mul(lg6))
	t2 = c.u(lg4.Add(t2))
	t2 = c.u(s4.Mul(t2))
	t2 = c.u(lg2.Add(t2))
	t2 = c.u(s4.Mul(t2))

	r := c.u(t1.Add(t2))
	hfsq := c.s(c.s(f.Mul(f)).Div(TWO.Signed()))

	kabs := k
	if kabs < 0 {
		kabs = -kabs
	}
	kk := SignedFxNum{Value: FromUint64(uint64(kabs)), Negative: k < 0}

	kl2hi := c.s(c.s(kk.Mul(ln2Hi.Signed())).Div(ln2HiScale.Signed()))
	shfsqr := c.s(s.Mul(c.s(hfsq.Add(r.Signed()))))
	kl2lo := c.s(c.s(kk.Mul(ln2Lo.Signed())).Div(ln2LoScale.Signed()))

	// k*ln2hi - ((hfsq - (s*(hfsq+R) + k*ln2lo)) - f)
	ret := c.s(shfsqr.Add(kl2lo))
	ret = c.s(hfsq.Sub(ret))
	ret = c.s(ret.Sub(f))
	ret = c.s(kl2hi.Sub(ret))
	if !c.ok {
		return SignedFxNum{}, false
	}
	return ret, true
}
