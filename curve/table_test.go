package curve

import (
	"bytes"
	"context"
	"testing"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestGenerateTablesMatchEmbedded(t *testing.T) {
	embedded := DefaultTables()

	generated, xerr := GenerateTables(context.Background(), DefaultContinuousCurve(), DiscretePricingStepSize, 1001, 4)
	require.NoError(t, xerr)
	require.Equal(t, 1001, generated.Len())

	for i := 0; i < generated.Len(); i++ {
		require.Equal(t, embedded.prices[i], generated.prices[i], "price[%d]", i)
		require.Equal(t, embedded.cumulative[i], generated.cumulative[i], "cumulative[%d]", i)
	}

	c2, _ := generated.Cumulative(2)
	require.Equal(t, raw("2000087721374646900"), c2)
	p100, _ := generated.Price(100)
	require.Equal(t, raw("10088103372937870"), p100)
}

func TestVerifyEmbeddedTables(t *testing.T) {
	if testing.Short() {
		t.Skip("verifies every step of the embedded tables")
	}
	require.NoError(t, VerifyTables(context.Background(), DefaultTables(), DefaultContinuousCurve(), 0))
}

func TestVerifyTablesMismatch(t *testing.T) {
	tables, xerr := GenerateTables(context.Background(), DefaultContinuousCurve(), DiscretePricingStepSize, 50, 2)
	require.NoError(t, xerr)

	other := &ContinuousExponentialCurve{A: CurveA, B: fxnum.FromRaw64(877175373521), C: CurveC}
	xerr = VerifyTables(context.Background(), tables, other, 2)
	require.Error(t, xerr)
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))
}

func TestGenerateTablesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, xerr := GenerateTables(ctx, DefaultContinuousCurve(), DiscretePricingStepSize, 10_000, 2)
	require.Error(t, xerr)
}

func TestGenerateTablesOverflow(t *testing.T) {
	// prices beyond e^~93 do not fit
	_, xerr := GenerateTables(context.Background(), DefaultContinuousCurve(), 10_000_000, 20, 2)
	require.Error(t, xerr)
	require.True(t, xerr.Contains(xerrors.ErrCurveOverflow))

	_, xerr = GenerateTables(context.Background(), DefaultContinuousCurve(), 0, 20, 2)
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))
}

func TestTablesReadWrite(t *testing.T) {
	tables, xerr := GenerateTables(context.Background(), DefaultContinuousCurve(), 10, 300, 0)
	require.NoError(t, xerr)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTables(buf, tables))

	back, xerr := ReadTables(bytes.NewReader(buf.Bytes()))
	require.NoError(t, xerr)
	require.Equal(t, tables.StepSize(), back.StepSize())
	require.Equal(t, tables.prices, back.prices)
	require.Equal(t, tables.cumulative, back.cumulative)
}

func rewriteTables(t *testing.T, tables *Tables, edit func([]byte)) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTables(buf, tables))

	zr, err := gzip.NewReader(buf)
	require.NoError(t, err)
	plain := &bytes.Buffer{}
	_, err = plain.ReadFrom(zr)
	require.NoError(t, err)

	data := plain.Bytes()
	edit(data)

	out := &bytes.Buffer{}
	zw := gzip.NewWriter(out)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return out.Bytes()
}

func TestReadTablesRejects(t *testing.T) {
	tables, xerr := GenerateTables(context.Background(), DefaultContinuousCurve(), 10, 20, 0)
	require.NoError(t, xerr)

	// a flipped bit in a price
	bz := rewriteTables(t, tables, func(data []byte) {
		data[tablesHeaderLen+3] ^= 0x01
	})
	_, xerr = ReadTables(bytes.NewReader(bz))
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = ReadTables(bytes.NewReader([]byte("not gzip")))
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = ReadTables(bytes.NewReader(rewriteTables(t, tables, func(data []byte) {})[:10]))
	require.Error(t, xerr)
}

func TestNewTablesInvariants(t *testing.T) {
	p := []fxnum.FxNum{fxnum.ONE, fxnum.TWO}

	_, xerr := NewTables(10, p, []fxnum.FxNum{fxnum.ZERO, fxnum.FromUint64(10)})
	require.NoError(t, xerr)

	_, xerr = NewTables(10, p, []fxnum.FxNum{fxnum.ZERO, fxnum.FromUint64(11)})
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = NewTables(10, p, []fxnum.FxNum{fxnum.ONE, fxnum.FromUint64(11)})
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = NewTables(10, []fxnum.FxNum{fxnum.TWO, fxnum.ONE}, []fxnum.FxNum{fxnum.ZERO, fxnum.FromUint64(20)})
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = NewTables(10, []fxnum.FxNum{fxnum.ZERO}, []fxnum.FxNum{fxnum.ZERO})
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = NewTables(10, p, p[:1])
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))

	_, xerr = NewTables(0, p, p)
	require.True(t, xerr.Contains(xerrors.ErrInvalidTable))
}

func TestSearchCumulative(t *testing.T) {
	tables := DefaultTables()
	last := uint64(tables.Len() - 1)

	for _, i := range []uint64{1, 2, 777, 123_456, last} {
		c := tables.cumulative[i]
		require.Equal(t, i, tables.searchCumulative(1, c))

		if i < last {
			below, _ := tables.cumulative[i+1].Sub(fxnum.FromRaw64(1))
			require.Equal(t, i, tables.searchCumulative(1, below))
		}
	}
	huge := fxnum.FromLimbs(0, 0, 1)
	require.Equal(t, last, tables.searchCumulative(1, huge))
}
