package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/spf13/cobra"
)

var (
	calibP0     = "0.01"
	calibPMax   = "1000000"
	calibSupply = "21000000"
)

func NewCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Derive curve parameters from the first and the last price",
		RunE:  calibrate,
	}
	cmd.Flags().StringVar(&calibP0, "p0", calibP0, "price at zero supply")
	cmd.Flags().StringVar(&calibPMax, "pmax", calibPMax, "price at the max supply")
	cmd.Flags().StringVar(&calibSupply, "supply", calibSupply, "max supply in whole tokens")
	return cmd
}

func calibrate(cmd *cobra.Command, args []string) error {
	p0, err := parseAmount("p0", calibP0)
	if err != nil {
		return err
	}
	pMax, err := parseAmount("pmax", calibPMax)
	if err != nil {
		return err
	}
	supply, err := parseAmount("supply", calibSupply)
	if err != nil {
		return err
	}

	c, xerr := curve.Calibrate(p0, pMax, supply)
	if xerr != nil {
		return xerr
	}
	raw := curve.RawCurveFrom(c).Bytes()

	ret := &struct {
		A   fxnum.FxNum `json:"a"`
		B   fxnum.FxNum `json:"b"`
		C   fxnum.FxNum `json:"c"`
		Raw string      `json:"raw"`
	}{c.A, c.B, c.C, hex.EncodeToString(raw[:])}
	return printResult(cmd, ret, func(w io.Writer) {
		fmt.Fprintf(w, "a: %s (raw %s)\nb: %s (raw %s)\nc: %s (raw %s)\nraw curve: %s\n",
			c.A, c.A.Raw().Dec(), c.B, c.B.Raw().Dec(), c.C, c.C.Raw().Dec(), ret.Raw)
	})
}
