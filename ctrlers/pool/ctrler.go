package pool

import (
	"bytes"
	"fmt"
	"sync"

	cfg "github.com/beatoz/beatoz-curve/cmd/config"
	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/ledger"
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/prometheus/client_golang/prometheus"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

type PoolCtrler struct {
	state   ledger.IMutable
	meta    *MetaDB
	curve   *curve.DiscreteExponentialCurve
	metrics *Metrics

	// trades executed since the last commit
	executed []*TradeResult

	logger tmlog.Logger
	mtx    sync.RWMutex
}

func newItemFor(key ledger.LedgerKey) ledger.ILedgerItem {
	switch {
	case bytes.HasPrefix(key, ledger.KeyPrefixCurrency):
		return &Currency{}
	case bytes.HasPrefix(key, ledger.KeyPrefixPool):
		return &Pool{}
	default:
		panic(fmt.Sprintf("unknown key prefix: %x", key))
	}
}

func NewPoolCtrler(config *cfg.Config, reg prometheus.Registerer, logger tmlog.Logger) (*PoolCtrler, xerrors.XError) {
	lg := logger.With("module", "curve_PoolCtrler")

	tables := curve.DefaultTables()
	if path := config.TablesFile(); path != "" {
		_tables, xerr := curve.LoadTablesFile(path)
		if xerr != nil {
			return nil, xerr
		}
		lg.Info("pricing tables loaded", "path", path, "steps", _tables.Len())
		tables = _tables
	}

	meta, err := OpenMetaDB("pool_meta", config.DBBackend, config.DBDir())
	if err != nil {
		return nil, xerrors.Wrap(err, "meta db open failed")
	}
	state, xerr := ledger.NewMutableLedger("pools", config.DBDir(), config.DBBackend, newItemFor, lg)
	if xerr != nil {
		_ = meta.Close()
		return nil, xerr
	}
	return NewPoolCtrlerWith(state, meta, curve.NewDiscreteCurve(tables), NewMetrics(reg), lg), nil
}

// NewPoolCtrlerWith builds a controller on an opened ledger. meta may be nil.
func NewPoolCtrlerWith(state ledger.IMutable, meta *MetaDB, dc *curve.DiscreteExponentialCurve, metrics *Metrics, logger tmlog.Logger) *PoolCtrler {
	return &PoolCtrler{
		state:   state,
		meta:    meta,
		curve:   dc,
		metrics: metrics,
		logger:  logger,
	}
}

// atomically reverts every ledger change made by fn when it fails.
func (ctrler *PoolCtrler) atomically(fn func() xerrors.XError) xerrors.XError {
	snap := ctrler.state.Snapshot()
	if xerr := fn(); xerr != nil {
		if rerr := ctrler.state.RevertToSnapshot(snap); rerr != nil {
			ctrler.logger.Error("fail to revert", "snapshot", snap, "error", rerr)
		}
		return xerr
	}
	return nil
}

func (ctrler *PoolCtrler) checkAbsent(key ledger.LedgerKey) xerrors.XError {
	_, xerr := ctrler.state.Get(key)
	if xerr == nil {
		return xerrors.ErrDuplicatedKey.Wrapf("key %x", key)
	}
	if !xerr.Contains(xerrors.ErrNotFoundResult) {
		return xerr
	}
	return nil
}

// checkCurve makes sure the pricing tables were derived from the currency's curve.
func (ctrler *PoolCtrler) checkCurve(cur *Currency) xerrors.XError {
	tables := ctrler.curve.Tables()
	c := cur.Curve.ToCurve()

	for _, i := range []int{0, tables.Len() - 1} {
		expected, _ := tables.Price(i)
		supply := fxnum.FromUint64(uint64(i) * tables.StepSize())
		spot, ok := c.SpotPriceAtSupply(supply)
		if !ok || !spot.Equal(expected) {
			return xerrors.ErrInvalidTable.Wrapf("the curve of %s does not match the pricing table at step %d", cur.SymbolString(), i)
		}
	}
	return nil
}

func (ctrler *PoolCtrler) CreateCurrency(cur *Currency) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if cur.NameString() == "" {
		return xerrors.ErrInvalidName.Wrapf("empty name")
	}
	if xerr := validateSymbol(cur.SymbolString()); xerr != nil {
		return xerr
	}
	if cur.MaxSupply == 0 || cur.MaxSupply > ctrler.curve.Tables().MaxSupply() {
		return xerrors.ErrInvalidAmount.Wrapf("max supply must be 1 to %d", ctrler.curve.Tables().MaxSupply())
	}
	if _, xerr := cur.SupplyRaw(); xerr != nil {
		return xerr
	}
	if xerr := ctrler.checkCurve(cur); xerr != nil {
		return xerr
	}
	if xerr := ctrler.checkAbsent(cur.Key()); xerr != nil {
		return xerr
	}

	return ctrler.atomically(func() xerrors.XError {
		if xerr := ctrler.state.Set(cur); xerr != nil {
			return xerr
		}
		ctrler.logger.Info("currency created", "symbol", cur.SymbolString(), "name", cur.NameString(), "max_supply", cur.MaxSupply, "decimals", cur.Decimals)
		return nil
	})
}

type PoolParams struct {
	Authority      Address
	BaseDecimals   uint8
	BuyFee         uint16
	SellFee        uint16
	PurchaseCap    uint64
	SaleCap        uint64
	GoLiveUnixTime int64
}

// CreatePool opens the pool of an existing currency with the whole supply in vault A.
func (ctrler *PoolCtrler) CreatePool(symbol string, params PoolParams) (*Pool, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	cur, xerr := ctrler.getCurrency(symbol)
	if xerr != nil {
		return nil, xerr
	}
	if params.BuyFee > MaxFeeBps || params.SellFee > MaxFeeBps {
		return nil, xerrors.ErrInvalidFeeRate.Wrapf("buy fee %d, sell fee %d (max %d)", params.BuyFee, params.SellFee, MaxFeeBps)
	}
	if _, xerr := types.UnitOf(params.BaseDecimals); xerr != nil {
		return nil, xerr
	}
	vaultA, xerr := cur.SupplyRaw()
	if xerr != nil {
		return nil, xerr
	}

	pool := &Pool{
		Currency:       cur.Symbol,
		Authority:      params.Authority,
		VaultA:         vaultA,
		BaseDecimals:   params.BaseDecimals,
		BuyFee:         params.BuyFee,
		SellFee:        params.SellFee,
		PurchaseCap:    params.PurchaseCap,
		SaleCap:        params.SaleCap,
		GoLiveUnixTime: params.GoLiveUnixTime,
	}
	if xerr := ctrler.checkAbsent(pool.Key()); xerr != nil {
		return nil, xerr
	}

	xerr = ctrler.atomically(func() xerrors.XError {
		if xerr := ctrler.state.Set(pool); xerr != nil {
			return xerr
		}
		ctrler.logger.Info("pool created", "symbol", symbol, "vault_a", vaultA, "buy_fee", pool.BuyFee, "sell_fee", pool.SellFee, "go_live", pool.GoLiveUnixTime)
		return nil
	})
	if xerr != nil {
		return nil, xerr
	}
	return pool, nil
}

func (ctrler *PoolCtrler) getCurrency(symbol string) (*Currency, xerrors.XError) {
	item, xerr := ctrler.state.Get(ledger.LedgerKeyCurrency(symbol))
	if xerr != nil {
		return nil, xerr.Wrapf("currency %s", symbol)
	}
	return item.(*Currency), nil
}

func (ctrler *PoolCtrler) getPool(symbol string) (*Currency, *Pool, xerrors.XError) {
	cur, xerr := ctrler.getCurrency(symbol)
	if xerr != nil {
		return nil, nil, xerr
	}
	item, xerr := ctrler.state.Get(ledger.LedgerKeyPool(symbol))
	if xerr != nil {
		return nil, nil, xerr.Wrapf("pool %s", symbol)
	}
	return cur, item.(*Pool), nil
}

func (ctrler *PoolCtrler) GetCurrency(symbol string) (*Currency, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	return ctrler.getCurrency(symbol)
}

func (ctrler *PoolCtrler) GetPool(symbol string) (*Pool, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	_, pool, xerr := ctrler.getPool(symbol)
	return pool, xerr
}

// Pools returns the committed pools ordered by symbol.
func (ctrler *PoolCtrler) Pools() ([]*Pool, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	var pools []*Pool
	xerr := ctrler.state.Seek(ledger.KeyPrefixPool, true, func(key ledger.LedgerKey, item ledger.ILedgerItem) xerrors.XError {
		pools = append(pools, item.(*Pool))
		return nil
	})
	return pools, xerr
}

// Commit saves the ledger and then records the trades executed since the last commit in the meta db.
func (ctrler *PoolCtrler) Commit() ([]byte, int64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	hash, ver, xerr := ctrler.state.Commit()
	if xerr != nil {
		return nil, 0, xerr
	}
	if ctrler.meta != nil {
		if err := ctrler.meta.PutCommit(ver, ctrler.executed); err != nil {
			return nil, 0, xerrors.Wrap(err, "meta db write failed")
		}
	}
	ctrler.executed = nil
	return hash, ver, nil
}

func (ctrler *PoolCtrler) Close() xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	var ret xerrors.XError
	if ctrler.meta != nil {
		if err := ctrler.meta.Close(); err != nil {
			ctrler.logger.Error("fail to close pool meta db", "error", err.Error())
			ret = xerrors.Wrap(err, "meta db close failed")
		}
		ctrler.meta = nil
	}
	if ctrler.state != nil {
		if xerr := ctrler.state.Close(); xerr != nil {
			ctrler.logger.Error("fail to close pool ledger", "error", xerr.Error())
			ret = xerr
		}
		ctrler.state = nil
	}
	return ret
}
