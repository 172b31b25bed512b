package curve

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/holiman/uint256"
)

// DiscreteExponentialCurve charges a constant price inside each step of supply.
// Range costs come from the cumulative table, so every call does a bounded amount of work.
type DiscreteExponentialCurve struct {
	tables *Tables
}

func NewDiscreteCurve(tables *Tables) *DiscreteExponentialCurve {
	return &DiscreteExponentialCurve{tables: tables}
}

// DefaultDiscreteCurve uses the tables compiled into the binary.
func DefaultDiscreteCurve() *DiscreteExponentialCurve {
	return NewDiscreteCurve(DefaultTables())
}

func (curve *DiscreteExponentialCurve) Tables() *Tables {
	return curve.tables
}

// locate returns floor(s/step) and s mod step.
func (curve *DiscreteExponentialCurve) locate(s fxnum.FxNum) (uint64, fxnum.FxNum, bool) {
	var q, r uint256.Int
	q.DivMod(s.Raw(), &curve.tables.stepRaw, &r)
	if !q.IsUint64() {
		return 0, fxnum.ZERO, false
	}
	offset, _ := fxnum.FromRaw(&r)
	return q.Uint64(), offset, true
}

func (curve *DiscreteExponentialCurve) SpotPriceAtSupply(supply fxnum.FxNum) (fxnum.FxNum, bool) {
	idx, _, ok := curve.locate(supply)
	if !ok || idx >= uint64(curve.tables.Len()) {
		return fxnum.ZERO, false
	}
	return curve.tables.prices[idx], true
}

// TokensToValue prices the partial start step, the complete steps in between
// and the partial end step separately. Buying zero tokens costs exactly zero.
func (curve *DiscreteExponentialCurve) TokensToValue(supply, tokens fxnum.FxNum) (fxnum.FxNum, bool) {
	if tokens.IsZero() {
		return fxnum.ZERO, true
	}

	newSupply, ok := supply.Add(tokens)
	if !ok {
		return fxnum.ZERO, false
	}
	startStep, startOffset, ok := curve.locate(supply)
	if !ok {
		return fxnum.ZERO, false
	}
	endStep, endOffset, ok := curve.locate(newSupply)
	if !ok || endStep >= uint64(curve.tables.Len()) {
		return fxnum.ZERO, false
	}

	prices, cumulative := curve.tables.prices, curve.tables.cumulative
	if startStep == endStep {
		return tokens.Mul(prices[startStep])
	}

	tokensInStartStep, _ := curve.tables.step.Sub(startOffset)
	startCost, ok := tokensInStartStep.Mul(prices[startStep])
	if !ok {
		return fxnum.ZERO, false
	}
	middleCost, ok := cumulative[endStep].Sub(cumulative[startStep+1])
	if !ok {
		return fxnum.ZERO, false
	}
	endCost, ok := endOffset.Mul(prices[endStep])
	if !ok {
		return fxnum.ZERO, false
	}

	total, ok := startCost.Add(middleCost)
	if !ok {
		return fxnum.ZERO, false
	}
	return total.Add(endCost)
}

// ValueToTokens inverts TokensToValue with a binary search over the cumulative table.
// It fails when supply is on the last step or the purchase would run past the table.
func (curve *DiscreteExponentialCurve) ValueToTokens(supply, value fxnum.FxNum) (fxnum.FxNum, bool) {
	if value.IsZero() {
		return fxnum.ZERO, true
	}

	last := uint64(curve.tables.Len() - 1)
	startStep, startOffset, ok := curve.locate(supply)
	if !ok || startStep >= last {
		return fxnum.ZERO, false
	}

	prices, cumulative := curve.tables.prices, curve.tables.cumulative
	price := prices[startStep]

	tokensInStartStep, _ := curve.tables.step.Sub(startOffset)
	startCost, ok := tokensInStartStep.Mul(price)
	if !ok {
		return fxnum.ZERO, false
	}
	if value.LessThan(startCost) {
		// the purchase ends inside the current step
		return value.Div(price)
	}

	remaining, _ := value.Sub(startCost)
	target, ok := cumulative[startStep+1].Add(remaining)
	if !ok {
		return fxnum.ZERO, false
	}
	endStep := curve.tables.searchCumulative(startStep+1, target)

	leftover, _ := target.Sub(cumulative[endStep])
	endTokens := fxnum.ZERO
	if !leftover.IsZero() {
		// Div adds its rounding correction even to a zero dividend
		if endTokens, ok = leftover.Div(prices[endStep]); !ok {
			return fxnum.ZERO, false
		}
	}
	if endStep == last && endTokens.GreaterThanOrEqual(curve.tables.step) {
		return fxnum.ZERO, false
	}

	middleTokens, ok := fxnum.FromUint64(endStep - startStep - 1).Mul(curve.tables.step)
	if !ok {
		return fxnum.ZERO, false
	}
	total, ok := tokensInStartStep.Add(middleTokens)
	if !ok {
		return fxnum.ZERO, false
	}
	return total.Add(endTokens)
}
