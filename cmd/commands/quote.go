package commands

import (
	"fmt"
	"io"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/spf13/cobra"
)

var (
	quoteSupply     = "0"
	quoteValue      = "0"
	quoteTokens     = "0"
	quoteContinuous = false
)

type quoteResult struct {
	Side         string      `json:"side"`
	Supply       fxnum.FxNum `json:"supply"`
	Tokens       fxnum.FxNum `json:"tokens"`
	Value        fxnum.FxNum `json:"value"`
	AveragePrice fxnum.FxNum `json:"average_price"`
}

func (q *quoteResult) print(w io.Writer) {
	fmt.Fprintf(w, "%s at supply %s\n  tokens:        %s\n  value:         %s\n  average price: %s\n",
		q.Side, q.Supply, q.Tokens, q.Value, q.AveragePrice)
}

func NewQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a purchase or a sale on the curve",
	}
	cmd.PersistentFlags().StringVar(&quoteSupply, "supply", quoteSupply, "token supply before the trade in whole tokens")
	cmd.PersistentFlags().BoolVar(&quoteContinuous, "continuous", quoteContinuous, "use the continuous curve instead of the pricing tables")

	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Tokens bought with --value",
		RunE:  quoteBuy,
	}
	buyCmd.Flags().StringVar(&quoteValue, "value", quoteValue, "value paid")

	sellCmd := &cobra.Command{
		Use:   "sell",
		Short: "Value received for selling --tokens",
		RunE:  quoteSell,
	}
	sellCmd.Flags().StringVar(&quoteTokens, "tokens", quoteTokens, "tokens sold")

	cmd.AddCommand(buyCmd, sellCmd)
	return cmd
}

func averagePrice(value, tokens fxnum.FxNum) fxnum.FxNum {
	if tokens.IsZero() {
		return fxnum.ZERO
	}
	avg, _ := value.Div(tokens)
	return avg
}

func quoteBuy(cmd *cobra.Command, args []string) error {
	supply, err := parseAmount("supply", quoteSupply)
	if err != nil {
		return err
	}
	value, err := parseAmount("value", quoteValue)
	if err != nil {
		return err
	}
	c, err := selectCurve(quoteContinuous)
	if err != nil {
		return err
	}
	tokens, ok := c.ValueToTokens(supply, value)
	if !ok {
		return fmt.Errorf("%s can not be spent at supply %s", value, supply)
	}

	q := &quoteResult{Side: "buy", Supply: supply, Tokens: tokens, Value: value, AveragePrice: averagePrice(value, tokens)}
	return printResult(cmd, q, q.print)
}

// quoteSell prices a sale as the purchase of the same tokens that ends at supply.
func quoteSell(cmd *cobra.Command, args []string) error {
	supply, err := parseAmount("supply", quoteSupply)
	if err != nil {
		return err
	}
	tokens, err := parseAmount("tokens", quoteTokens)
	if err != nil {
		return err
	}
	start, ok := supply.Sub(tokens)
	if !ok {
		return fmt.Errorf("can not sell %s tokens out of %s", tokens, supply)
	}
	c, err := selectCurve(quoteContinuous)
	if err != nil {
		return err
	}
	value, ok := c.TokensToValue(start, tokens)
	if !ok {
		return fmt.Errorf("%s tokens at supply %s are beyond the curve", tokens, supply)
	}

	q := &quoteResult{Side: "sell", Supply: supply, Tokens: tokens, Value: value, AveragePrice: averagePrice(value, tokens)}
	return printResult(cmd, q, q.print)
}
