package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/beatoz/beatoz-curve/ctrlers/pool"
	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

var (
	poolSymbol       = ""
	poolName         = ""
	poolAuthority    = ""
	poolMaxSupply    = curve.MaxTokenSupply
	poolDecimals     = curve.TokenDecimals
	poolBaseDecimals = uint8(6)
	poolBuyFee       = uint16(0)
	poolSellFee      = uint16(0)
	poolPurchaseCap  = uint64(0)
	poolSaleCap      = uint64(0)
	poolGoLive       = int64(0)

	// metricsRegisterer receives the pool metrics; each process opens the pool ledger once.
	metricsRegisterer prometheus.Registerer = prometheus.DefaultRegisterer

	poolAmount = uint64(0)
	poolMinOut = uint64(0)
	poolNow    = int64(0)
)

func NewPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage liquidity pools stored under --home",
	}
	cmd.PersistentFlags().StringVar(&poolSymbol, "symbol", poolSymbol, "currency symbol (A-Z, 0-9, up to 8 bytes)")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a currency on the default curve and its pool",
		RunE:  poolCreate,
	}
	createCmd.Flags().StringVar(&poolName, "name", poolName, "currency name (up to 32 bytes)")
	createCmd.Flags().StringVar(&poolAuthority, "authority", poolAuthority, "hex encoded 32 bytes authority address")
	createCmd.Flags().Uint64Var(&poolMaxSupply, "max_supply", poolMaxSupply, "max supply in whole tokens")
	createCmd.Flags().Uint8Var(&poolDecimals, "decimals", poolDecimals, "decimal places of the currency")
	createCmd.Flags().Uint8Var(&poolBaseDecimals, "base_decimals", poolBaseDecimals, "decimal places of the base value")
	createCmd.Flags().Uint16Var(&poolBuyFee, "buy_fee", poolBuyFee, "buy fee in basis points")
	createCmd.Flags().Uint16Var(&poolSellFee, "sell_fee", poolSellFee, "sell fee in basis points")
	createCmd.Flags().Uint64Var(&poolPurchaseCap, "purchase_cap", poolPurchaseCap, "max base value per purchase, 0 is unlimited")
	createCmd.Flags().Uint64Var(&poolSaleCap, "sale_cap", poolSaleCap, "max tokens per sale, 0 is unlimited")
	createCmd.Flags().Int64Var(&poolGoLive, "go_live", poolGoLive, "unix time from which the pool trades")

	buyCmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy tokens with --amount of base value (smallest unit)",
		RunE:  poolTrade(pool.SideBuy),
	}
	sellCmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell --amount of tokens (smallest unit)",
		RunE:  poolTrade(pool.SideSell),
	}
	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		c.Flags().Uint64Var(&poolAmount, "amount", poolAmount, "input amount in the smallest unit")
		c.Flags().Uint64Var(&poolMinOut, "min_out", poolMinOut, "the minimum output accepted")
		c.Flags().Int64Var(&poolNow, "now", poolNow, "trade time in unix seconds (default: the current time)")
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a pool, or every pool without --symbol",
		RunE:  poolShow,
	}
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the number of committed trades and the last one",
		RunE:  poolStats,
	}
	burnCmd := &cobra.Command{
		Use:   "burn-fees",
		Short: "Clear the fees accumulated by purchases",
		RunE:  poolBurnFees,
	}

	cmd.AddCommand(createCmd, buyCmd, sellCmd, showCmd, statsCmd, burnCmd)
	return cmd
}

func openPoolCtrler() (*pool.PoolCtrler, error) {
	if err := ensureRoot(); err != nil {
		return nil, err
	}
	ctrler, xerr := pool.NewPoolCtrler(rootConfig, metricsRegisterer, logger)
	if xerr != nil {
		return nil, xerr
	}
	return ctrler, nil
}

// withPoolCtrler runs fn and commits its changes.
func withPoolCtrler(fn func(*pool.PoolCtrler) error) (err error) {
	ctrler, err := openPoolCtrler()
	if err != nil {
		return err
	}
	defer func() {
		if xerr := ctrler.Close(); xerr != nil && err == nil {
			err = xerr
		}
	}()

	if err := fn(ctrler); err != nil {
		return err
	}
	hash, ver, xerr := ctrler.Commit()
	if xerr != nil {
		return xerr
	}
	logger.Debug("pool ledger committed", "version", ver, "hash", fmt.Sprintf("%X", hash))
	return nil
}

func poolCreate(cmd *cobra.Command, args []string) error {
	var authority pool.Address
	if poolAuthority != "" {
		bz, err := hex.DecodeString(poolAuthority)
		if err != nil {
			return fmt.Errorf("--authority: %w", err)
		}
		if len(bz) != pool.AddressLen {
			return fmt.Errorf("--authority: %d bytes, expected %d", len(bz), pool.AddressLen)
		}
		copy(authority[:], bz)
	}
	name := poolName
	if name == "" {
		name = poolSymbol
	}

	cur, xerr := pool.NewCurrency(authority, name, poolSymbol, [pool.SeedLen]byte{}, poolMaxSupply, poolDecimals, curve.DefaultContinuousCurve())
	if xerr != nil {
		return xerr
	}

	return withPoolCtrler(func(ctrler *pool.PoolCtrler) error {
		if xerr := ctrler.CreateCurrency(cur); xerr != nil {
			return xerr
		}
		p, xerr := ctrler.CreatePool(poolSymbol, pool.PoolParams{
			Authority:      authority,
			BaseDecimals:   poolBaseDecimals,
			BuyFee:         poolBuyFee,
			SellFee:        poolSellFee,
			PurchaseCap:    poolPurchaseCap,
			SaleCap:        poolSaleCap,
			GoLiveUnixTime: poolGoLive,
		})
		if xerr != nil {
			return xerr
		}
		return printResult(cmd, p, func(w io.Writer) {
			fmt.Fprintf(w, "pool %s created with %s tokens\n", p.SymbolString(), types.FormattedAmount(p.VaultA, cur.Decimals))
		})
	})
}

func poolTrade(side string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		now := poolNow
		if now == 0 {
			now = time.Now().Unix()
		}
		return withPoolCtrler(func(ctrler *pool.PoolCtrler) error {
			var (
				res  *pool.TradeResult
				xerr error
			)
			if side == pool.SideBuy {
				res, xerr = tradeBuy(ctrler, now)
			} else {
				res, xerr = tradeSell(ctrler, now)
			}
			if xerr != nil {
				return xerr
			}
			return printResult(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s: in %d, out %d, fee %d\nsupply: %s\nprice:  %s\n",
					res.Side, res.Symbol, res.InAmount, res.OutAmount, res.Fee, res.Supply, res.SpotPrice)
			})
		})
	}
}

// tradeBuy and tradeSell keep a nil *TradeResult from turning into a non-nil error interface.
func tradeBuy(ctrler *pool.PoolCtrler, now int64) (*pool.TradeResult, error) {
	res, xerr := ctrler.Buy(poolSymbol, poolAmount, poolMinOut, now)
	if xerr != nil {
		return nil, xerr
	}
	return res, nil
}

func tradeSell(ctrler *pool.PoolCtrler, now int64) (*pool.TradeResult, error) {
	res, xerr := ctrler.Sell(poolSymbol, poolAmount, poolMinOut, now)
	if xerr != nil {
		return nil, xerr
	}
	return res, nil
}

func poolShow(cmd *cobra.Command, args []string) error {
	req := abcitypes.RequestQuery{Path: pool.QueryPools}
	if poolSymbol != "" {
		req = abcitypes.RequestQuery{Path: pool.QueryPool, Data: []byte(poolSymbol)}
	}
	return poolQuery(cmd, req)
}

func poolStats(cmd *cobra.Command, args []string) error {
	return poolQuery(cmd, abcitypes.RequestQuery{Path: pool.QueryStats})
}

func poolQuery(cmd *cobra.Command, req abcitypes.RequestQuery) (err error) {
	ctrler, err := openPoolCtrler()
	if err != nil {
		return err
	}
	defer func() {
		if xerr := ctrler.Close(); xerr != nil && err == nil {
			err = xerr
		}
	}()

	raw, xerr := ctrler.Query(req)
	if xerr != nil {
		return xerr
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return err
}

func poolBurnFees(cmd *cobra.Command, args []string) error {
	return withPoolCtrler(func(ctrler *pool.PoolCtrler) error {
		burned, xerr := ctrler.BurnFees(poolSymbol)
		if xerr != nil {
			return xerr
		}
		ret := &struct {
			Symbol string `json:"symbol"`
			Burned uint64 `json:"burned"`
		}{poolSymbol, burned}
		return printResult(cmd, ret, func(w io.Writer) {
			fmt.Fprintf(w, "%d burned from %s\n", burned, poolSymbol)
		})
	})
}
