package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/beatoz/beatoz-curve/cmd/config"
	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/libs/jsonx"
	"github.com/robaho/fixed"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

// parseAmount reads a non-negative decimal such as "21000000" or "0.01".
// With --fixed the input is truncated to 7 decimal places first.
func parseAmount(name, s string) (fxnum.FxNum, error) {
	if rootConfig.FixedInput {
		f, err := fixed.NewSErr(s)
		if err != nil {
			return fxnum.ZERO, fmt.Errorf("--%s: %w", name, err)
		}
		v, err := fxnum.FromFixed(f)
		if err != nil {
			return fxnum.ZERO, fmt.Errorf("--%s: %w", name, err)
		}
		return v, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fxnum.ZERO, fmt.Errorf("--%s: %w", name, err)
	}
	v, ok := fxnum.FromDecimal(d)
	if !ok {
		return fxnum.ZERO, fmt.Errorf("--%s: %s is negative or too large", name, s)
	}
	return v, nil
}

func loadTables() (*curve.Tables, error) {
	path := rootConfig.TablesFile()
	if path == "" {
		return curve.DefaultTables(), nil
	}
	tables, xerr := curve.LoadTablesFile(path)
	if xerr != nil {
		return nil, xerr
	}
	logger.Debug("pricing tables loaded", "path", path, "steps", tables.Len())
	return tables, nil
}

func selectCurve(continuous bool) (curve.Curve, error) {
	if continuous {
		return curve.DefaultContinuousCurve(), nil
	}
	tables, err := loadTables()
	if err != nil {
		return nil, err
	}
	return curve.NewDiscreteCurve(tables), nil
}

// printResult writes v as indented JSON with --json, otherwise calls text.
func printResult(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if rootConfig.JSONOutput {
		bz, err := jsonx.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(bz))
		return err
	}
	text(w)
	return nil
}

// formatNum renders v with 18 decimals or, with asFixed, as a 7 decimal fixed.Fixed.
func formatNum(v fxnum.FxNum, asFixed bool) string {
	if !asFixed {
		return v.String()
	}
	f, err := v.ToFixed()
	if err != nil {
		return v.String()
	}
	return f.String()
}

// signalContext is cancelled on SIGINT or SIGTERM so that long table jobs stop cleanly.
func signalContext(logger log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-c:
			logger.Info("signal trapped", "msg", log.NewLazySprintf("captured %v, cancelling...", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()
	return ctx, cancel
}

func ensureRoot() error {
	return cfg.EnsureRoot(rootConfig)
}
