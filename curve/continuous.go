package curve

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
)

// ContinuousExponentialCurve is price(s) = a*b*e^(c*s) in closed form.
// It is the reference the discrete tables are generated from.
type ContinuousExponentialCurve struct {
	A fxnum.FxNum
	B fxnum.FxNum
	C fxnum.FxNum
}

func DefaultContinuousCurve() *ContinuousExponentialCurve {
	return &ContinuousExponentialCurve{
		A: CurveA,
		B: CurveB,
		C: CurveC,
	}
}

// expOf returns e^(c*s).
func (curve *ContinuousExponentialCurve) expOf(s fxnum.FxNum) (fxnum.FxNum, bool) {
	cs, ok := curve.C.Mul(s)
	if !ok {
		return fxnum.ZERO, false
	}
	return cs.Signed().Exp()
}

// abOverC is the integral's multiplier a*b/c.
func (curve *ContinuousExponentialCurve) abOverC() (fxnum.FxNum, bool) {
	ab, ok := curve.A.Mul(curve.B)
	if !ok {
		return fxnum.ZERO, false
	}
	return ab.Div(curve.C)
}

func (curve *ContinuousExponentialCurve) SpotPriceAtSupply(supply fxnum.FxNum) (fxnum.FxNum, bool) {
	e, ok := curve.expOf(supply)
	if !ok {
		return fxnum.ZERO, false
	}
	ab, ok := curve.A.Mul(curve.B)
	if !ok {
		return fxnum.ZERO, false
	}
	return ab.Mul(e)
}

// TokensToValue integrates the price from supply to supply+tokens:
// (a*b/c) * (e^(c*(s+tokens)) - e^(c*s)).
func (curve *ContinuousExponentialCurve) TokensToValue(supply, tokens fxnum.FxNum) (fxnum.FxNum, bool) {
	newSupply, ok := supply.Add(tokens)
	if !ok {
		return fxnum.ZERO, false
	}
	expCs, ok := curve.expOf(supply)
	if !ok {
		return fxnum.ZERO, false
	}
	expNs, ok := curve.expOf(newSupply)
	if !ok {
		return fxnum.ZERO, false
	}
	k, ok := curve.abOverC()
	if !ok {
		return fxnum.ZERO, false
	}
	diff, ok := expNs.Sub(expCs)
	if !ok {
		return fxnum.ZERO, false
	}
	return k.Mul(diff)
}

// ValueToTokens inverts TokensToValue:
// ln(value/(a*b/c) + e^(c*s)) / c - s.
func (curve *ContinuousExponentialCurve) ValueToTokens(supply, value fxnum.FxNum) (fxnum.FxNum, bool) {
	k, ok := curve.abOverC()
	if !ok {
		return fxnum.ZERO, false
	}
	expCs, ok := curve.expOf(supply)
	if !ok {
		return fxnum.ZERO, false
	}
	term, ok := value.Div(k)
	if !ok {
		return fxnum.ZERO, false
	}
	if term, ok = term.Add(expCs); !ok {
		return fxnum.ZERO, false
	}
	ln, ok := term.Log()
	if !ok {
		return fxnum.ZERO, false
	}
	ret, ok := ln.Value.Div(curve.C)
	if !ok {
		return fxnum.ZERO, false
	}
	return ret.Sub(supply)
}

// TokensToValueFromCurrentValue is the sell side priced from the value held in the pool
// instead of the supply: the value of the last `tokens` minted when the pool holds
// currentValue, (currentValue + a*b/c) * (1 - e^(-c*tokens)).
// It equals TokensToValue(supply-tokens, tokens) for the supply that currentValue buys from zero.
func (curve *ContinuousExponentialCurve) TokensToValueFromCurrentValue(currentValue, tokens fxnum.FxNum) (fxnum.FxNum, bool) {
	k, ok := curve.abOverC()
	if !ok {
		return fxnum.ZERO, false
	}
	ct, ok := curve.C.Mul(tokens)
	if !ok {
		return fxnum.ZERO, false
	}
	e, ok := ct.Signed().Neg().Exp()
	if !ok {
		return fxnum.ZERO, false
	}
	f, ok := fxnum.ONE.Sub(e)
	if !ok {
		return fxnum.ZERO, false
	}
	base, ok := currentValue.Add(k)
	if !ok {
		return fxnum.ZERO, false
	}
	return base.Mul(f)
}

// TokensForValueExchange returns the tokens to give back so that a pool holding
// currentValue pays out value: (ln(1 + cv/k) - ln(1 + (cv-value)/k)) / c with k = a*b/c.
// It fails when value is more than currentValue.
func (curve *ContinuousExponentialCurve) TokensForValueExchange(currentValue, value fxnum.FxNum) (fxnum.FxNum, bool) {
	remaining, ok := currentValue.Sub(value)
	if !ok {
		return fxnum.ZERO, false
	}
	k, ok := curve.abOverC()
	if !ok {
		return fxnum.ZERO, false
	}

	lnOnePlus := func(v fxnum.FxNum) (fxnum.SignedFxNum, bool) {
		r, ok := v.Div(k)
		if !ok {
			return fxnum.SignedFxNum{}, false
		}
		if r, ok = fxnum.ONE.Add(r); !ok {
			return fxnum.SignedFxNum{}, false
		}
		return r.Log()
	}

	lnCur, ok := lnOnePlus(currentValue)
	if !ok {
		return fxnum.ZERO, false
	}
	lnRem, ok := lnOnePlus(remaining)
	if !ok {
		return fxnum.ZERO, false
	}
	diff, ok := lnCur.Sub(lnRem)
	if !ok {
		return fxnum.ZERO, false
	}
	if diff.Negative && !diff.IsZero() {
		return fxnum.ZERO, false
	}
	return diff.Value.Div(curve.C)
}
