package commands

import (
	"fmt"
	"io"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/spf13/cobra"
)

var (
	priceSupply     = "0"
	priceContinuous = false
	priceFixed      = false
)

func NewPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show the spot price at a supply",
		RunE:  spotPrice,
	}
	cmd.Flags().StringVar(&priceSupply, "supply", priceSupply, "token supply in whole tokens (e.g. 1000000.5)")
	cmd.Flags().BoolVar(&priceContinuous, "continuous", priceContinuous, "use the continuous curve instead of the pricing tables")
	cmd.Flags().BoolVar(&priceFixed, "fixed", priceFixed, "print prices with 7 decimals")
	return cmd
}

func spotPrice(cmd *cobra.Command, args []string) error {
	supply, err := parseAmount("supply", priceSupply)
	if err != nil {
		return err
	}
	c, err := selectCurve(priceContinuous)
	if err != nil {
		return err
	}
	price, ok := c.SpotPriceAtSupply(supply)
	if !ok {
		return fmt.Errorf("no price at supply %s", supply)
	}

	ret := &struct {
		Supply fxnum.FxNum `json:"supply"`
		Price  fxnum.FxNum `json:"price"`
	}{supply, price}
	return printResult(cmd, ret, func(w io.Writer) {
		fmt.Fprintf(w, "supply: %s\nprice:  %s\n", formatNum(supply, priceFixed), formatNum(price, priceFixed))
	})
}
