package pool

import (
	"github.com/beatoz/beatoz-curve/ledger"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/libs/jsonx"
	"github.com/beatoz/beatoz-curve/types"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
)

const (
	QueryCurrency  = "currency"
	QueryPool      = "pool"
	QueryPools     = "pools"
	QueryQuoteBuy  = "quote_buy"
	QueryQuoteSell = "quote_sell"
	QueryStats     = "stats"
)

// QuoteParams is the request data of quote queries.
type QuoteParams struct {
	Symbol string `json:"symbol"`
	Amount uint64 `json:"amount"`
	Now    int64  `json:"now"`
}

type statsView struct {
	Version   int64        `json:"version"`
	Trades    uint64       `json:"trades"`
	LastTrade *TradeResult `json:"last_trade,omitempty"`
}

type currencyView struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Authority tmbytes.HexBytes `json:"authority"`
	Seed      tmbytes.HexBytes `json:"seed"`
	MaxSupply uint64           `json:"max_supply"`
	Decimals  uint8            `json:"decimals"`
	CurveA    fxnum.FxNum      `json:"curve_a"`
	CurveB    fxnum.FxNum      `json:"curve_b"`
	CurveC    fxnum.FxNum      `json:"curve_c"`
}

type poolView struct {
	Symbol          string           `json:"symbol"`
	Authority       tmbytes.HexBytes `json:"authority"`
	Supply          string           `json:"supply"`
	VaultA          string           `json:"vault_a"`
	VaultB          string           `json:"vault_b"`
	BuyFee          uint16           `json:"buy_fee_bps"`
	SellFee         uint16           `json:"sell_fee_bps"`
	PurchaseCap     uint64           `json:"purchase_cap"`
	SaleCap         uint64           `json:"sale_cap"`
	GoLiveUnixTime  int64            `json:"go_live_unix_time"`
	FeesAccumulated string           `json:"fees_accumulated"`
	FeesBurned      string           `json:"fees_burned"`
	SpotPrice       fxnum.FxNum      `json:"spot_price"`
}

func newCurrencyView(cur *Currency) *currencyView {
	c := cur.Curve.ToCurve()
	return &currencyView{
		Symbol:    cur.SymbolString(),
		Name:      cur.NameString(),
		Authority: cur.Authority[:],
		Seed:      cur.Seed[:],
		MaxSupply: cur.MaxSupply,
		Decimals:  cur.Decimals,
		CurveA:    c.A,
		CurveB:    c.B,
		CurveC:    c.C,
	}
}

func (ctrler *PoolCtrler) newPoolView(cur *Currency, pool *Pool) (*poolView, xerrors.XError) {
	supplyRaw, xerr := circulating(cur, pool)
	if xerr != nil {
		return nil, xerr
	}
	// the spot price is unknown only when the supply is beyond the tables
	price, _ := ctrler.spotPrice(cur, pool)
	return &poolView{
		Symbol:          pool.SymbolString(),
		Authority:       pool.Authority[:],
		Supply:          types.FormattedAmount(supplyRaw, cur.Decimals),
		VaultA:          types.FormattedAmount(pool.VaultA, cur.Decimals),
		VaultB:          types.FormattedAmount(pool.VaultB, pool.BaseDecimals),
		BuyFee:          pool.BuyFee,
		SellFee:         pool.SellFee,
		PurchaseCap:     pool.PurchaseCap,
		SaleCap:         pool.SaleCap,
		GoLiveUnixTime:  pool.GoLiveUnixTime,
		FeesAccumulated: types.FormattedAmount(pool.FeesAccumulated, cur.Decimals),
		FeesBurned:      types.FormattedAmount(pool.FeesBurned, pool.BaseDecimals),
		SpotPrice:       price,
	}, nil
}

// Query answers read only requests. req.Data is a symbol for currency and pool,
// empty for pools and a JSON encoded QuoteParams for quotes.
func (ctrler *PoolCtrler) Query(req abcitypes.RequestQuery) ([]byte, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	var resp interface{}
	switch req.Path {
	case QueryCurrency:
		cur, xerr := ctrler.getCurrency(string(req.Data))
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		resp = newCurrencyView(cur)
	case QueryPool:
		cur, pool, xerr := ctrler.getPool(string(req.Data))
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		view, xerr := ctrler.newPoolView(cur, pool)
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		resp = view
	case QueryPools:
		var views []*poolView
		xerr := ctrler.state.Seek(ledger.KeyPrefixPool, true, func(_ ledger.LedgerKey, item ledger.ILedgerItem) xerrors.XError {
			pool := item.(*Pool)
			cur, xerr := ctrler.getCurrency(pool.SymbolString())
			if xerr != nil {
				return xerr
			}
			view, xerr := ctrler.newPoolView(cur, pool)
			if xerr != nil {
				return xerr
			}
			views = append(views, view)
			return nil
		})
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		resp = views
	case QueryQuoteBuy, QueryQuoteSell:
		params := &QuoteParams{}
		if err := jsonx.Unmarshal(req.Data, params); err != nil {
			return nil, xerrors.ErrInvalidQueryParams.Wrap(err)
		}
		cur, pool, xerr := ctrler.getPool(params.Symbol)
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		var quote *TradeResult
		if req.Path == QueryQuoteBuy {
			quote, xerr = ctrler.computeBuy(cur, pool, params.Amount, 0, params.Now)
		} else {
			quote, xerr = ctrler.computeSell(cur, pool, params.Amount, 0, params.Now)
		}
		if xerr != nil {
			return nil, xerrors.ErrQuery.Wrap(xerr)
		}
		resp = quote
	case QueryStats:
		if ctrler.meta == nil {
			return nil, xerrors.ErrQuery.Wrap(xerrors.ErrNotFoundResult)
		}
		resp = &statsView{
			Version:   ctrler.meta.Version(),
			Trades:    ctrler.meta.Trades(),
			LastTrade: ctrler.meta.LastTrade(),
		}
	default:
		return nil, xerrors.ErrInvalidQueryParams.Wrapf("unknown path %q", req.Path)
	}

	raw, err := jsonx.Marshal(resp)
	if err != nil {
		return nil, xerrors.ErrQuery.Wrap(err)
	}
	return raw, nil
}
