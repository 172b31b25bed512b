package pool

import (
	"fmt"
	"testing"

	"github.com/beatoz/beatoz-curve/libs/jsonx"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/stretchr/testify/require"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

func TestQueryPool(t *testing.T) {
	ctrler := newTestPool(t, 100, 100)
	_, xerr := ctrler.Buy(testSymbol, 1000*oneBase, 0, 0)
	require.NoError(t, xerr)

	raw, xerr := ctrler.Query(abcitypes.RequestQuery{Path: QueryPool, Data: []byte(testSymbol)})
	require.NoError(t, xerr)

	view := make(map[string]interface{})
	require.NoError(t, jsonx.Unmarshal(raw, &view))
	require.Equal(t, testSymbol, view["symbol"])
	require.Equal(t, "95858.863975", view["supply"])
	require.Equal(t, "20904141.136025", view["vaultA"])
	require.Equal(t, "1000.000000", view["vaultB"])
	require.Equal(t, "958.588640", view["feesAccumulated"])
	require.Equal(t, "0.010876652116526920", view["spotPrice"])
	require.Equal(t, float64(100), view["buyFeeBps"])

	_, xerr = ctrler.Query(abcitypes.RequestQuery{Path: QueryPool, Data: []byte("NONE")})
	require.True(t, xerr.Contains(xerrors.ErrNotFoundResult))
}

func TestQueryCurrency(t *testing.T) {
	ctrler := newTestPool(t, 0, 0)

	raw, xerr := ctrler.Query(abcitypes.RequestQuery{Path: QueryCurrency, Data: []byte(testSymbol)})
	require.NoError(t, xerr)

	view := make(map[string]interface{})
	require.NoError(t, jsonx.Unmarshal(raw, &view))
	require.Equal(t, "Curve Token", view["name"])
	require.Equal(t, "21000000", view["maxSupply"])
	require.Equal(t, "11400.230149967394933471", view["curveA"])
	require.Equal(t, "0.000000877175273521", view["curveB"])
}

func TestQueryQuotes(t *testing.T) {
	ctrler := newTestPool(t, 100, 100)

	params, err := jsonx.Marshal(&QuoteParams{Symbol: testSymbol, Amount: 1000 * oneBase})
	require.NoError(t, err)
	raw, xerr := ctrler.Query(abcitypes.RequestQuery{Path: QueryQuoteBuy, Data: params})
	require.NoError(t, xerr)

	quote := &TradeResult{}
	require.NoError(t, jsonx.Unmarshal(raw, quote))
	require.Equal(t, uint64(94_900_275_335), quote.OutAmount)
	require.Equal(t, uint64(958_588_640), quote.Fee)

	// quotes never change the pool
	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw, pool.VaultA)

	params, err = jsonx.Marshal(&QuoteParams{Symbol: testSymbol, Amount: 1})
	require.NoError(t, err)
	_, xerr = ctrler.Query(abcitypes.RequestQuery{Path: QueryQuoteSell, Data: params})
	require.True(t, xerr.Contains(xerrors.ErrInsufficientVault))

	_, xerr = ctrler.Query(abcitypes.RequestQuery{Path: QueryQuoteSell, Data: []byte("{")})
	require.True(t, xerr.Contains(xerrors.ErrInvalidQueryParams))

	_, xerr = ctrler.Query(abcitypes.RequestQuery{Path: "unknown"})
	require.True(t, xerr.Contains(xerrors.ErrInvalidQueryParams))
}

func TestQueryPools(t *testing.T) {
	ctrler := newTestPool(t, 0, 0)
	_, _, xerr := ctrler.Commit()
	require.NoError(t, xerr)

	raw, xerr := ctrler.Query(abcitypes.RequestQuery{Path: QueryPools})
	require.NoError(t, xerr)

	var views []map[string]interface{}
	require.NoError(t, jsonx.Unmarshal(raw, &views))
	require.Len(t, views, 1)
	require.Equal(t, "0.000000", views[0]["supply"])
}

func TestQueryStats(t *testing.T) {
	ctrler := newTestPool(t, 100, 100)
	_, xerr := ctrler.Buy(testSymbol, 1000*oneBase, 0, 0)
	require.NoError(t, xerr)
	_, xerr = ctrler.Buy(testSymbol, 0, 0, 0)
	require.Error(t, xerr)

	stats := func() map[string]interface{} {
		raw, xerr := ctrler.Query(abcitypes.RequestQuery{Path: QueryStats})
		require.NoError(t, xerr)
		view := make(map[string]interface{})
		require.NoError(t, jsonx.Unmarshal(raw, &view))
		return view
	}

	// nothing is recorded before the commit
	view := stats()
	require.Equal(t, "0", view["trades"])
	require.Nil(t, view["lastTrade"])

	_, ver, xerr := ctrler.Commit()
	require.NoError(t, xerr)

	view = stats()
	require.Equal(t, "1", view["trades"])
	require.Equal(t, fmt.Sprint(ver), view["version"])
	last := view["lastTrade"].(map[string]interface{})
	require.Equal(t, SideBuy, last["side"])
	require.Equal(t, "94900275335", last["outAmount"])

	_, xerr = ctrler.Sell(testSymbol, 1_000_000, 0, 0)
	require.NoError(t, xerr)
	_, _, xerr = ctrler.Commit()
	require.NoError(t, xerr)
	require.Equal(t, uint64(2), ctrler.meta.Trades())
	require.Equal(t, SideSell, ctrler.meta.LastTrade().Side)
}
