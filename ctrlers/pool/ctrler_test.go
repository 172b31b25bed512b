package pool

import (
	"os"
	"path/filepath"
	"testing"

	cfg "github.com/beatoz/beatoz-curve/cmd/config"
	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/ledger"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	iavldb "github.com/cosmos/iavl/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
)

const (
	testSymbol = "CURVE"
	maxRaw     = curve.MaxTokenSupply * curve.QuarksPerToken
	oneBase    = uint64(1_000_000)
)

func newTestCtrler(t *testing.T) *PoolCtrler {
	state, xerr := ledger.NewMutableLedgerWithDB(iavldb.NewMemDB(), newItemFor, log.NewNopLogger())
	require.NoError(t, xerr)
	meta, err := NewMetaDBWith(tmdb.NewMemDB())
	require.NoError(t, err)
	return NewPoolCtrlerWith(state, meta, curve.DefaultDiscreteCurve(), NewMetrics(prometheus.NewRegistry()), log.NewNopLogger())
}

func newTestCurrency(t *testing.T, symbol string) *Currency {
	cur, xerr := NewCurrency(Address{0x01}, "Curve Token", symbol, [SeedLen]byte{}, curve.MaxTokenSupply, curve.TokenDecimals, curve.DefaultContinuousCurve())
	require.NoError(t, xerr)
	return cur
}

// newTestPool opens a live pool with the given fees and no caps.
func newTestPool(t *testing.T, buyFee, sellFee uint16) *PoolCtrler {
	ctrler := newTestCtrler(t)
	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, testSymbol)))
	_, xerr := ctrler.CreatePool(testSymbol, PoolParams{
		BaseDecimals: 6,
		BuyFee:       buyFee,
		SellFee:      sellFee,
	})
	require.NoError(t, xerr)
	return ctrler
}

func TestCreateCurrency(t *testing.T) {
	ctrler := newTestCtrler(t)

	cur := newTestCurrency(t, testSymbol)
	require.NoError(t, ctrler.CreateCurrency(cur))
	require.True(t, ctrler.CreateCurrency(cur).Contains(xerrors.ErrDuplicatedKey))

	found, xerr := ctrler.GetCurrency(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, cur, found)

	_, xerr = ctrler.GetCurrency("NONE")
	require.True(t, xerr.Contains(xerrors.ErrNotFoundResult))

	tooBig := newTestCurrency(t, "BIG")
	tooBig.MaxSupply = curve.MaxTokenSupply + 1
	require.True(t, ctrler.CreateCurrency(tooBig).Contains(xerrors.ErrInvalidAmount))

	empty := newTestCurrency(t, "EMPTY")
	empty.MaxSupply = 0
	require.True(t, ctrler.CreateCurrency(empty).Contains(xerrors.ErrInvalidAmount))

	// a curve the tables were not generated from
	other, xerr := curve.Calibrate(fxnum.MustFromString("0.02"), fxnum.FromUint64(1_000_000), fxnum.FromUint64(curve.MaxTokenSupply))
	require.NoError(t, xerr)
	mismatch := newTestCurrency(t, "OTHER")
	mismatch.Curve = curve.RawCurveFrom(other)
	require.True(t, ctrler.CreateCurrency(mismatch).Contains(xerrors.ErrInvalidTable))
}

func TestCreatePool(t *testing.T) {
	ctrler := newTestCtrler(t)

	_, xerr := ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 6})
	require.True(t, xerr.Contains(xerrors.ErrNotFoundResult))

	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, testSymbol)))

	_, xerr = ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 6, SellFee: MaxFeeBps + 1})
	require.True(t, xerr.Contains(xerrors.ErrInvalidFeeRate))
	_, xerr = ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 19})
	require.True(t, xerr.Contains(xerrors.ErrInvalidDecimals))

	pool, xerr := ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 6, BuyFee: 100, GoLiveUnixTime: 1000})
	require.NoError(t, xerr)
	require.Equal(t, maxRaw, pool.VaultA)
	require.Zero(t, pool.VaultB)

	_, xerr = ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 6})
	require.True(t, xerr.Contains(xerrors.ErrDuplicatedKey))

	found, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, pool, found)

	price, xerr := ctrler.SpotPrice(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, "0.010000000000000000", price.String())
}

func TestBuySell(t *testing.T) {
	ctrler := newTestPool(t, 100, 100)

	quote, xerr := ctrler.QuoteBuy(testSymbol, 1000*oneBase, 0)
	require.NoError(t, xerr)

	res, xerr := ctrler.Buy(testSymbol, 1000*oneBase, 94_900_275_335, 0)
	require.NoError(t, xerr)
	require.Equal(t, quote, res)
	require.Equal(t, SideBuy, res.Side)
	require.Equal(t, uint64(94_900_275_335), res.OutAmount)
	require.Equal(t, uint64(958_588_640), res.Fee)
	require.Equal(t, "95858.863975000000000000", res.Supply.String())
	require.Equal(t, "0.010876652116526920", res.SpotPrice.String())

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw-95_858_863_975, pool.VaultA)
	require.Equal(t, 1000*oneBase, pool.VaultB)
	require.Equal(t, uint64(958_588_640), pool.FeesAccumulated)

	price, xerr := ctrler.SpotPrice(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, res.SpotPrice, price)

	// sell half of the circulating supply
	res, xerr = ctrler.Sell(testSymbol, 47_929_431_987, 0, 0)
	require.NoError(t, xerr)
	require.Equal(t, SideSell, res.Side)
	require.Equal(t, uint64(505_403_985), res.OutAmount)
	require.Equal(t, uint64(5_105_091), res.Fee)
	require.Equal(t, "47929.431988000000000000", res.Supply.String())

	pool, xerr = ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw-47_929_431_988, pool.VaultA)
	require.Equal(t, uint64(489_490_924), pool.VaultB)
	require.Equal(t, uint64(5_105_091), pool.FeesBurned)
}

func TestBuySellRoundTrip(t *testing.T) {
	ctrler := newTestPool(t, 0, 0)

	res, xerr := ctrler.Buy(testSymbol, 1000*oneBase, 0, 0)
	require.NoError(t, xerr)
	require.Equal(t, uint64(95_858_863_975), res.OutAmount)
	require.Zero(t, res.Fee)

	// selling everything back empties vault B
	res, xerr = ctrler.Sell(testSymbol, 95_858_863_975, 1000*oneBase, 0)
	require.NoError(t, xerr)
	require.Equal(t, 1000*oneBase, res.OutAmount)
	require.True(t, res.Supply.IsZero())

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw, pool.VaultA)
	require.Zero(t, pool.VaultB)

	_, xerr = ctrler.Sell(testSymbol, 1, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrInsufficientVault))
}

func TestBuyRejections(t *testing.T) {
	ctrler := newTestCtrler(t)
	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, testSymbol)))
	_, xerr := ctrler.CreatePool(testSymbol, PoolParams{
		BaseDecimals:   6,
		BuyFee:         100,
		PurchaseCap:    1000 * oneBase,
		GoLiveUnixTime: 1000,
	})
	require.NoError(t, xerr)

	_, xerr = ctrler.Buy(testSymbol, oneBase, 0, 999)
	require.True(t, xerr.Contains(xerrors.ErrNotLive))
	_, xerr = ctrler.Buy(testSymbol, 0, 0, 1000)
	require.True(t, xerr.Contains(xerrors.ErrInvalidAmount))
	_, xerr = ctrler.Buy(testSymbol, 1000*oneBase+1, 0, 1000)
	require.True(t, xerr.Contains(xerrors.ErrCapExceeded))
	_, xerr = ctrler.Buy(testSymbol, 1000*oneBase, 94_900_275_336, 1000)
	require.True(t, xerr.Contains(xerrors.ErrSlippage))
	_, xerr = ctrler.Buy("NONE", oneBase, 0, 1000)
	require.True(t, xerr.Contains(xerrors.ErrNotFoundResult))

	// nothing was applied
	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw, pool.VaultA)
	require.Zero(t, pool.VaultB)

	m := ctrler.metrics
	require.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues(SideBuy, "not_live")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues(SideBuy, "invalid_amount")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues(SideBuy, "cap_exceeded")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues(SideBuy, "slippage")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues(SideBuy, "not_found")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.Trades.WithLabelValues(SideBuy)))

	_, xerr = ctrler.Buy(testSymbol, 1000*oneBase, 94_900_275_335, 1000)
	require.NoError(t, xerr)
	require.Equal(t, float64(1), testutil.ToFloat64(m.Trades.WithLabelValues(SideBuy)))
	require.InDelta(t, 0.01087665211652692, testutil.ToFloat64(m.SpotPrice.WithLabelValues(testSymbol)), 1e-15)
}

func TestBuyWholeSupply(t *testing.T) {
	ctrler := newTestPool(t, 0, 0)

	// more value than the table holds
	_, xerr := ctrler.Buy(testSymbol, 2_000_000_000_000*oneBase, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrCurveExhausted))

	// one base unit more than the whole supply costs
	_, xerr = ctrler.Buy(testSymbol, 1_139_973_004_316*oneBase, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrInsufficientVault))

	res, xerr := ctrler.Buy(testSymbol, 1_139_973_004_315*oneBase, 0, 0)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw, res.OutAmount)
	expected, _ := ctrler.curve.Tables().Price(curve.DiscretePricingTableLen - 1)
	require.Equal(t, expected, res.SpotPrice)

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Zero(t, pool.VaultA)

	_, xerr = ctrler.Buy(testSymbol, oneBase, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrCurveExhausted))
}

func TestSellRejections(t *testing.T) {
	ctrler := newTestCtrler(t)
	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, testSymbol)))
	_, xerr := ctrler.CreatePool(testSymbol, PoolParams{
		BaseDecimals: 6,
		SellFee:      100,
		SaleCap:      50_000_000,
	})
	require.NoError(t, xerr)

	// 1.0 buys exactly 100 tokens at the first price
	res, xerr := ctrler.Buy(testSymbol, oneBase, 0, 0)
	require.NoError(t, xerr)
	require.Equal(t, uint64(100_000_000), res.OutAmount)

	_, xerr = ctrler.Sell(testSymbol, 50_000_001, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrCapExceeded))
	_, xerr = ctrler.Sell(testSymbol, 1, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrNoValue))
	_, xerr = ctrler.Sell(testSymbol, 100, 0, 0)
	require.True(t, xerr.Contains(xerrors.ErrNoFees))
	_, xerr = ctrler.Sell(testSymbol, 50_000_000, 495_001, 0)
	require.True(t, xerr.Contains(xerrors.ErrSlippage))

	quote, xerr := ctrler.QuoteSell(testSymbol, 50_000_000, 0)
	require.NoError(t, xerr)
	require.Equal(t, uint64(495_000), quote.OutAmount)
	require.Equal(t, uint64(5_000), quote.Fee)

	res, xerr = ctrler.Sell(testSymbol, 50_000_000, 495_000, 0)
	require.NoError(t, xerr)
	require.Equal(t, quote, res)

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw-50_000_000, pool.VaultA)
	require.Equal(t, uint64(500_000), pool.VaultB)
	require.Equal(t, uint64(5_000), pool.FeesBurned)
}

func TestBurnFees(t *testing.T) {
	ctrler := newTestPool(t, 100, 0)

	_, xerr := ctrler.BurnFees(testSymbol)
	require.True(t, xerr.Contains(xerrors.ErrNoFees))

	_, xerr = ctrler.Buy(testSymbol, oneBase, 0, 0)
	require.NoError(t, xerr)

	burned, xerr := ctrler.BurnFees(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, uint64(1_000_000), burned)

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Zero(t, pool.FeesAccumulated)
	require.Equal(t, maxRaw-100_000_000, pool.VaultA)

	_, xerr = ctrler.BurnFees(testSymbol)
	require.True(t, xerr.Contains(xerrors.ErrNoFees))
}

func TestCommitAndPools(t *testing.T) {
	ctrler := newTestPool(t, 0, 0)

	pools, xerr := ctrler.Pools()
	require.NoError(t, xerr)
	require.Empty(t, pools)

	hash, ver, xerr := ctrler.Commit()
	require.NoError(t, xerr)
	require.Equal(t, int64(1), ver)
	require.Len(t, hash, 32)

	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, "ABC")))
	_, xerr = ctrler.CreatePool("ABC", PoolParams{BaseDecimals: 9})
	require.NoError(t, xerr)
	_, _, xerr = ctrler.Commit()
	require.NoError(t, xerr)

	pools, xerr = ctrler.Pools()
	require.NoError(t, xerr)
	require.Len(t, pools, 2)
	require.Equal(t, "ABC", pools[0].SymbolString())
	require.Equal(t, testSymbol, pools[1].SymbolString())
	require.Equal(t, uint8(9), pools[0].BaseDecimals)
}

func TestNewPoolCtrler(t *testing.T) {
	root := filepath.Join(os.TempDir(), "pool-ctrler-test")
	defer os.RemoveAll(root)

	config := cfg.DefaultConfig().SetRoot(root)
	require.NoError(t, cfg.EnsureRoot(config))

	ctrler, xerr := NewPoolCtrler(config, prometheus.NewRegistry(), log.NewNopLogger())
	require.NoError(t, xerr)
	require.NoError(t, ctrler.CreateCurrency(newTestCurrency(t, testSymbol)))
	_, xerr = ctrler.CreatePool(testSymbol, PoolParams{BaseDecimals: 6})
	require.NoError(t, xerr)
	_, xerr = ctrler.Buy(testSymbol, oneBase, 0, 0)
	require.NoError(t, xerr)
	_, _, xerr = ctrler.Commit()
	require.NoError(t, xerr)
	require.NoError(t, ctrler.Close())

	ctrler, xerr = NewPoolCtrler(config, prometheus.NewRegistry(), log.NewNopLogger())
	require.NoError(t, xerr)
	defer ctrler.Close()

	pool, xerr := ctrler.GetPool(testSymbol)
	require.NoError(t, xerr)
	require.Equal(t, maxRaw-100_000_000, pool.VaultA)
	require.Equal(t, oneBase, pool.VaultB)

	config.TablesPath = "missing.bin.gz"
	_, xerr = NewPoolCtrler(config, nil, log.NewNopLogger())
	require.Error(t, xerr)
}

type unclosableLedger struct {
	ledger.IMutable
}

func (unclosableLedger) Close() xerrors.XError {
	return xerrors.NewOrdinary("close failed")
}

func TestCloseError(t *testing.T) {
	ctrler := newTestCtrler(t)
	state := ctrler.state
	defer state.Close()

	ctrler.state = unclosableLedger{state}
	xerr := ctrler.Close()
	require.Error(t, xerr)
	require.Equal(t, "close failed", xerr.Msg())

	// already closed
	require.NoError(t, ctrler.Close())
}
