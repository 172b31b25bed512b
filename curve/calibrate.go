package curve

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
)

// Calibrate derives the curve that starts at priceAtZero and reaches priceAtMax at maxSupply:
//
//	c = ln(priceAtMax/priceAtZero) / maxSupply
//	b = c
//	a = priceAtZero / c
//
// so that a*b equals the starting price.
func Calibrate(priceAtZero, priceAtMax, maxSupply fxnum.FxNum) (*ContinuousExponentialCurve, xerrors.XError) {
	if priceAtZero.IsZero() || maxSupply.IsZero() {
		return nil, xerrors.ErrInvalidAmount.Wrapf("starting price and supply must be positive")
	}
	if !priceAtMax.GreaterThan(priceAtZero) {
		return nil, xerrors.ErrInvalidAmount.Wrapf("final price %s is not greater than starting price %s", priceAtMax, priceAtZero)
	}

	ratio, ok := priceAtMax.Div(priceAtZero)
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("price ratio")
	}
	ln, ok := ratio.Log()
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("ln(%s)", ratio)
	}
	c, ok := ln.Value.Div(maxSupply)
	if !ok || c.IsZero() {
		return nil, xerrors.ErrCurveOverflow.Wrapf("rate constant underflows")
	}
	a, ok := priceAtZero.Div(c)
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("%s / %s", priceAtZero, c)
	}

	return &ContinuousExponentialCurve{A: a, B: c, C: c}, nil
}
