package commands

import (
	"bytes"
	"io"
	"testing"

	cfg "github.com/beatoz/beatoz-curve/cmd/config"
	"github.com/beatoz/beatoz-curve/ctrlers/pool"
	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/libs/jsonx"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func setupRoot(t *testing.T) {
	conf := cfg.DefaultConfig()
	conf.SetRoot(t.TempDir())

	prevConf, prevLogger, prevReg := rootConfig, logger, metricsRegisterer
	rootConfig, logger, metricsRegisterer = conf, log.NewNopLogger(), nil
	t.Cleanup(func() {
		rootConfig, logger, metricsRegisterer = prevConf, prevLogger, prevReg
	})
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd, buf
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("supply", "21000000")
	require.NoError(t, err)
	require.True(t, v.Equal(fxnum.FromUint64(21_000_000)))

	v, err = parseAmount("value", "0.01")
	require.NoError(t, err)
	require.Equal(t, "0.010000000000000000", v.String())

	_, err = parseAmount("value", "-1")
	require.ErrorContains(t, err, "--value")
	_, err = parseAmount("value", "ten")
	require.ErrorContains(t, err, "--value")
}

func TestParseAmountFixed(t *testing.T) {
	rootConfig.FixedInput = true
	defer func() { rootConfig.FixedInput = false }()

	v, err := parseAmount("value", "0.123456789")
	require.NoError(t, err)
	require.Equal(t, "0.123456700000000000", v.String())

	v, err = parseAmount("supply", "21000000")
	require.NoError(t, err)
	require.True(t, v.Equal(fxnum.FromUint64(21_000_000)))

	_, err = parseAmount("value", "-1")
	require.ErrorContains(t, err, "--value")
	_, err = parseAmount("value", "NaN")
	require.ErrorContains(t, err, "--value")
	_, err = parseAmount("value", "ten")
	require.ErrorContains(t, err, "--value")
}

func TestFormatNum(t *testing.T) {
	v := fxnum.MustFromString("0.0108766521165")
	require.Equal(t, "0.010876652116500000", formatNum(v, false))
	require.Equal(t, "0.0108767", formatNum(v, true))

	// out of the fixed.Fixed range falls back to 18 decimals
	big := fxnum.FromUint64(1_000_000_000_000)
	require.Equal(t, big.String(), formatNum(big, true))
}

func TestSelectCurve(t *testing.T) {
	setupRoot(t)

	c, err := selectCurve(true)
	require.NoError(t, err)
	require.IsType(t, &curve.ContinuousExponentialCurve{}, c)

	c, err = selectCurve(false)
	require.NoError(t, err)
	require.IsType(t, &curve.DiscreteExponentialCurve{}, c)

	rootConfig.TablesPath = "missing.bin.gz"
	_, err = selectCurve(false)
	require.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	setupRoot(t)
	v := &struct {
		Symbol string `json:"symbol"`
	}{"TEST"}

	cmd, buf := newTestCmd()
	require.NoError(t, printResult(cmd, v, func(w io.Writer) {
		_, _ = w.Write([]byte("text\n"))
	}))
	require.Equal(t, "text\n", buf.String())

	rootConfig.JSONOutput = true
	cmd, buf = newTestCmd()
	require.NoError(t, printResult(cmd, v, nil))
	require.JSONEq(t, `{"symbol":"TEST"}`, buf.String())
}

func TestPoolCommands(t *testing.T) {
	setupRoot(t)
	rootConfig.JSONOutput = true

	poolSymbol, poolName, poolBuyFee, poolSellFee = "TEST", "Test", 100, 100
	t.Cleanup(func() {
		poolSymbol, poolName, poolBuyFee, poolSellFee = "", "", 0, 0
		poolAmount, poolMinOut, poolNow = 0, 0, 0
	})

	cmd, _ := newTestCmd()
	require.NoError(t, poolCreate(cmd, nil))
	// the ledger is persisted under the root
	cmd, _ = newTestCmd()
	require.Error(t, poolCreate(cmd, nil))

	poolAmount, poolNow = 1_000_000_000, 1
	cmd, buf := newTestCmd()
	require.NoError(t, poolTrade(pool.SideBuy)(cmd, nil))

	res := &pool.TradeResult{}
	require.NoError(t, jsonx.Unmarshal(buf.Bytes(), res))
	require.Equal(t, uint64(94_900_275_335), res.OutAmount)
	require.Equal(t, uint64(958_588_640), res.Fee)

	cmd, buf = newTestCmd()
	require.NoError(t, poolShow(cmd, nil))
	view := map[string]interface{}{}
	require.NoError(t, jsonx.Unmarshal(buf.Bytes(), &view))
	require.Equal(t, "20904141.136025", view["vaultA"])

	cmd, buf = newTestCmd()
	require.NoError(t, poolStats(cmd, nil))
	view = map[string]interface{}{}
	require.NoError(t, jsonx.Unmarshal(buf.Bytes(), &view))
	require.Equal(t, "1", view["trades"])

	cmd, buf = newTestCmd()
	require.NoError(t, poolBurnFees(cmd, nil))
	require.JSONEq(t, `{"symbol":"TEST","burned":"958588640"}`, buf.String())

	cmd, _ = newTestCmd()
	require.Error(t, poolBurnFees(cmd, nil))

	// more than the circulating supply
	poolAmount = 95_858_863_976
	cmd, _ = newTestCmd()
	require.Error(t, poolTrade(pool.SideSell)(cmd, nil))
}
