package curve

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
)

const (
	TokenDecimals  uint8  = 6
	MaxTokenSupply uint64 = 21_000_000
	QuarksPerToken uint64 = 1_000_000

	// DiscretePricingStepSize is the number of whole tokens sold at one price.
	DiscretePricingStepSize uint64 = 100
	// DiscretePricingTableLen covers supplies from 0 to MaxTokenSupply inclusive.
	DiscretePricingTableLen = int(MaxTokenSupply/DiscretePricingStepSize) + 1
)

// The default curve goes from $0.01 to $1,000,000 over 21,000,000 tokens.
var (
	CurveA = fxnum.MustFromRawDecimal("11400230149967394933471")
	CurveB = fxnum.MustFromRawDecimal("877175273521")
	CurveC = CurveB
)

// Curve prices purchases against token supply.
// Every method returns ok=false on overflow or when the input is outside the curve's domain.
type Curve interface {
	// SpotPriceAtSupply returns the marginal price at the given supply.
	SpotPriceAtSupply(supply fxnum.FxNum) (fxnum.FxNum, bool)
	// TokensToValue returns the cost of buying tokens starting at supply.
	TokensToValue(supply, tokens fxnum.FxNum) (fxnum.FxNum, bool)
	// ValueToTokens returns the tokens that value buys starting at supply.
	ValueToTokens(supply, value fxnum.FxNum) (fxnum.FxNum, bool)
}

var (
	_ Curve = (*ContinuousExponentialCurve)(nil)
	_ Curve = (*DiscreteExponentialCurve)(nil)
)
