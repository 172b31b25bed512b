package pool

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types"
	"github.com/beatoz/beatoz-curve/types/xerrors"
)

// TradeResult describes a buy or sell. Amounts are in the smallest units:
// a buy takes base value in and gives target tokens out, a sell does the reverse.
// Supply and SpotPrice are the values after the trade.
type TradeResult struct {
	Symbol    string      `json:"symbol"`
	Side      string      `json:"side"`
	InAmount  uint64      `json:"in_amount"`
	OutAmount uint64      `json:"out_amount"`
	Fee       uint64      `json:"fee"`
	Supply    fxnum.FxNum `json:"supply"`
	SpotPrice fxnum.FxNum `json:"spot_price"`
}

// circulating returns the sold supply in the smallest unit.
func circulating(cur *Currency, pool *Pool) (uint64, xerrors.XError) {
	maxRaw, xerr := cur.SupplyRaw()
	if xerr != nil {
		return 0, xerr
	}
	if pool.VaultA > maxRaw {
		return 0, xerrors.ErrInvalidRecord.Wrapf("vault A %d exceeds the max supply %d", pool.VaultA, maxRaw)
	}
	return maxRaw - pool.VaultA, nil
}

func (ctrler *PoolCtrler) checkTradable(pool *Pool, in, limit uint64, now int64) xerrors.XError {
	if !pool.IsLive(now) {
		return xerrors.ErrNotLive.Wrapf("%s goes live at %d", pool.SymbolString(), pool.GoLiveUnixTime)
	}
	if in == 0 {
		return xerrors.ErrInvalidAmount.Wrapf("zero input")
	}
	if limit > 0 && in > limit {
		return xerrors.ErrCapExceeded.Wrapf("%d exceeds the cap %d", in, limit)
	}
	return nil
}

func (ctrler *PoolCtrler) spotAt(supplyRaw uint64, decimals uint8) fxnum.FxNum {
	supply, xerr := types.ToNumeric(supplyRaw, decimals)
	if xerr != nil {
		return fxnum.ZERO
	}
	price, _ := ctrler.curve.SpotPriceAtSupply(supply)
	return price
}

func (ctrler *PoolCtrler) computeBuy(cur *Currency, pool *Pool, in, minOut uint64, now int64) (*TradeResult, xerrors.XError) {
	if xerr := ctrler.checkTradable(pool, in, pool.PurchaseCap, now); xerr != nil {
		return nil, xerr
	}
	supplyRaw, xerr := circulating(cur, pool)
	if xerr != nil {
		return nil, xerr
	}
	supply, xerr := types.ToNumeric(supplyRaw, cur.Decimals)
	if xerr != nil {
		return nil, xerr
	}
	value, xerr := types.ToNumeric(in, pool.BaseDecimals)
	if xerr != nil {
		return nil, xerr
	}

	tokens, ok := ctrler.curve.ValueToTokens(supply, value)
	if !ok {
		return nil, xerrors.ErrCurveExhausted.Wrapf("%s at supply %s", value, supply)
	}
	rate, xerr := types.FromBasisPoints(uint32(pool.BuyFee))
	if xerr != nil {
		return nil, xerr
	}
	fee, ok := tokens.Mul(rate)
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("buy fee")
	}

	tokensRaw, xerr := types.FromNumeric(tokens, cur.Decimals)
	if xerr != nil {
		return nil, xerr
	}
	feeRaw, xerr := types.FromNumeric(fee, cur.Decimals)
	if xerr != nil {
		return nil, xerr
	}
	outRaw := tokensRaw - feeRaw

	if outRaw == 0 {
		return nil, xerrors.ErrInvalidAmount.Wrapf("%d buys no tokens", in)
	}
	if outRaw < minOut {
		return nil, xerrors.ErrSlippage.Wrapf("%d is less than the minimum %d", outRaw, minOut)
	}
	if tokensRaw > pool.VaultA {
		return nil, xerrors.ErrInsufficientVault.Wrapf("need %d, vault A has %d", tokensRaw, pool.VaultA)
	}

	newSupply, _ := types.ToNumeric(supplyRaw+tokensRaw, cur.Decimals)
	return &TradeResult{
		Symbol:    pool.SymbolString(),
		Side:      SideBuy,
		InAmount:  in,
		OutAmount: outRaw,
		Fee:       feeRaw,
		Supply:    newSupply,
		SpotPrice: ctrler.spotAt(supplyRaw+tokensRaw, cur.Decimals),
	}, nil
}

func (ctrler *PoolCtrler) computeSell(cur *Currency, pool *Pool, in, minOut uint64, now int64) (*TradeResult, xerrors.XError) {
	if xerr := ctrler.checkTradable(pool, in, pool.SaleCap, now); xerr != nil {
		return nil, xerr
	}
	supplyRaw, xerr := circulating(cur, pool)
	if xerr != nil {
		return nil, xerr
	}
	if in > supplyRaw {
		return nil, xerrors.ErrInsufficientVault.Wrapf("selling %d of %d circulating", in, supplyRaw)
	}
	newSupply, xerr := types.ToNumeric(supplyRaw-in, cur.Decimals)
	if xerr != nil {
		return nil, xerr
	}
	valueLeft, xerr := types.ToNumeric(pool.VaultB, pool.BaseDecimals)
	if xerr != nil {
		return nil, xerr
	}

	// The value that must stay in vault B to back the remaining supply.
	backing, ok := ctrler.curve.TokensToValue(fxnum.ZERO, newSupply)
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("value of supply %s", newSupply)
	}
	total, ok := valueLeft.Sub(backing)
	if !ok || total.IsZero() {
		return nil, xerrors.ErrNoValue.Wrapf("vault B %s backs %s", valueLeft, backing)
	}
	rate, xerr := types.FromBasisPoints(uint32(pool.SellFee))
	if xerr != nil {
		return nil, xerr
	}
	fee, ok := total.Mul(rate)
	if !ok {
		return nil, xerrors.ErrCurveOverflow.Wrapf("sell fee")
	}

	totalRaw, xerr := types.FromNumeric(total, pool.BaseDecimals)
	if xerr != nil {
		return nil, xerr
	}
	feeRaw, xerr := types.FromNumeric(fee, pool.BaseDecimals)
	if xerr != nil {
		return nil, xerr
	}
	outRaw := totalRaw - feeRaw

	if outRaw == 0 {
		return nil, xerrors.ErrNoValue.Wrapf("%d sells for nothing", in)
	}
	if pool.SellFee > 0 && feeRaw == 0 {
		return nil, xerrors.ErrNoFees.Wrapf("%d is too small to pay a fee", in)
	}
	if outRaw < minOut {
		return nil, xerrors.ErrSlippage.Wrapf("%d is less than the minimum %d", outRaw, minOut)
	}
	if totalRaw > pool.VaultB {
		return nil, xerrors.ErrInsufficientVault.Wrapf("need %d, vault B has %d", totalRaw, pool.VaultB)
	}

	return &TradeResult{
		Symbol:    pool.SymbolString(),
		Side:      SideSell,
		InAmount:  in,
		OutAmount: outRaw,
		Fee:       feeRaw,
		Supply:    newSupply,
		SpotPrice: ctrler.spotAt(supplyRaw-in, cur.Decimals),
	}, nil
}

// Buy pays in base value and receives target tokens at time now (unix seconds).
func (ctrler *PoolCtrler) Buy(symbol string, in, minOut uint64, now int64) (*TradeResult, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	var ret *TradeResult
	xerr := ctrler.atomically(func() xerrors.XError {
		cur, pool, xerr := ctrler.getPool(symbol)
		if xerr != nil {
			return xerr
		}
		res, xerr := ctrler.computeBuy(cur, pool, in, minOut, now)
		if xerr != nil {
			return xerr
		}

		pool.VaultA -= res.OutAmount + res.Fee
		pool.VaultB += in
		pool.FeesAccumulated += res.Fee
		if xerr := ctrler.state.Set(pool); xerr != nil {
			return xerr
		}
		ret = res
		return nil
	})
	if xerr != nil {
		ctrler.metrics.rejected(SideBuy, xerr)
		ctrler.logger.Debug("buy rejected", "symbol", symbol, "in", in, "min_out", minOut, "error", xerr.Error())
		return nil, xerr
	}

	ctrler.executed = append(ctrler.executed, ret)
	ctrler.metrics.traded(SideBuy, symbol, ret.SpotPrice)
	ctrler.logger.Info("buy", "symbol", symbol, "in", in, "out", ret.OutAmount, "fee", ret.Fee, "supply", ret.Supply)
	return ret, nil
}

// Sell returns target tokens to the pool and receives base value.
func (ctrler *PoolCtrler) Sell(symbol string, in, minOut uint64, now int64) (*TradeResult, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	var ret *TradeResult
	xerr := ctrler.atomically(func() xerrors.XError {
		cur, pool, xerr := ctrler.getPool(symbol)
		if xerr != nil {
			return xerr
		}
		res, xerr := ctrler.computeSell(cur, pool, in, minOut, now)
		if xerr != nil {
			return xerr
		}

		pool.VaultA += in
		pool.VaultB -= res.OutAmount + res.Fee
		pool.FeesBurned += res.Fee
		if xerr := ctrler.state.Set(pool); xerr != nil {
			return xerr
		}
		ret = res
		return nil
	})
	if xerr != nil {
		ctrler.metrics.rejected(SideSell, xerr)
		ctrler.logger.Debug("sell rejected", "symbol", symbol, "in", in, "min_out", minOut, "error", xerr.Error())
		return nil, xerr
	}

	ctrler.executed = append(ctrler.executed, ret)
	ctrler.metrics.traded(SideSell, symbol, ret.SpotPrice)
	ctrler.logger.Info("sell", "symbol", symbol, "in", in, "out", ret.OutAmount, "fee", ret.Fee, "supply", ret.Supply)
	return ret, nil
}

func (ctrler *PoolCtrler) QuoteBuy(symbol string, in uint64, now int64) (*TradeResult, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	cur, pool, xerr := ctrler.getPool(symbol)
	if xerr != nil {
		return nil, xerr
	}
	return ctrler.computeBuy(cur, pool, in, 0, now)
}

func (ctrler *PoolCtrler) QuoteSell(symbol string, in uint64, now int64) (*TradeResult, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	cur, pool, xerr := ctrler.getPool(symbol)
	if xerr != nil {
		return nil, xerr
	}
	return ctrler.computeSell(cur, pool, in, 0, now)
}

// SpotPrice returns the discrete price at the pool's current supply.
func (ctrler *PoolCtrler) SpotPrice(symbol string) (fxnum.FxNum, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	cur, pool, xerr := ctrler.getPool(symbol)
	if xerr != nil {
		return fxnum.ZERO, xerr
	}
	return ctrler.spotPrice(cur, pool)
}

func (ctrler *PoolCtrler) spotPrice(cur *Currency, pool *Pool) (fxnum.FxNum, xerrors.XError) {
	supplyRaw, xerr := circulating(cur, pool)
	if xerr != nil {
		return fxnum.ZERO, xerr
	}
	supply, xerr := types.ToNumeric(supplyRaw, cur.Decimals)
	if xerr != nil {
		return fxnum.ZERO, xerr
	}
	price, ok := ctrler.curve.SpotPriceAtSupply(supply)
	if !ok {
		return fxnum.ZERO, xerrors.ErrCurveExhausted.Wrapf("supply %s", supply)
	}
	return price, nil
}

// BurnFees clears the accumulated buy fees and returns the cleared amount.
func (ctrler *PoolCtrler) BurnFees(symbol string) (uint64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	var burned uint64
	xerr := ctrler.atomically(func() xerrors.XError {
		_, pool, xerr := ctrler.getPool(symbol)
		if xerr != nil {
			return xerr
		}
		if pool.FeesAccumulated == 0 {
			return xerrors.ErrNoFees.Wrapf("pool %s", symbol)
		}
		burned = pool.FeesAccumulated
		pool.FeesAccumulated = 0
		return ctrler.state.Set(pool)
	})
	if xerr != nil {
		return 0, xerr
	}
	ctrler.logger.Info("fees burned", "symbol", symbol, "amount", burned)
	return burned, nil
}
