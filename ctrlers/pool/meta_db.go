package pool

import (
	"encoding/binary"
	"sync"

	"github.com/beatoz/beatoz-curve/libs/jsonx"
	tmdb "github.com/tendermint/tm-db"
)

const (
	keyTradeCount = "xn"
	keyLastTrade  = "lt"
	keyVersion    = "lv"
)

// MetaDB keeps trade statistics next to the pool ledger.
// It is written only when the ledger commits, so it never counts reverted or uncommitted trades.
type MetaDB struct {
	db tmdb.DB

	trades  uint64
	version int64

	mtx sync.RWMutex
}

func OpenMetaDB(name, backend, dir string) (*MetaDB, error) {
	// The returned 'db' instance is safe in concurrent use.
	db, err := tmdb.NewDB(name, tmdb.BackendType(backend), dir)
	if err != nil {
		return nil, err
	}
	return NewMetaDBWith(db)
}

func NewMetaDBWith(db tmdb.DB) (*MetaDB, error) {
	meta := &MetaDB{db: db}
	if v, err := db.Get([]byte(keyTradeCount)); err != nil {
		return nil, err
	} else if len(v) == 8 {
		meta.trades = binary.BigEndian.Uint64(v)
	}
	if v, err := db.Get([]byte(keyVersion)); err != nil {
		return nil, err
	} else if len(v) == 8 {
		meta.version = int64(binary.BigEndian.Uint64(v))
	}
	return meta, nil
}

func (meta *MetaDB) Close() error {
	meta.mtx.Lock()
	defer meta.mtx.Unlock()

	return meta.db.Close()
}

// Trades is the number of committed trades.
func (meta *MetaDB) Trades() uint64 {
	meta.mtx.RLock()
	defer meta.mtx.RUnlock()

	return meta.trades
}

// Version is the ledger version of the last commit.
func (meta *MetaDB) Version() int64 {
	meta.mtx.RLock()
	defer meta.mtx.RUnlock()

	return meta.version
}

func (meta *MetaDB) LastTrade() *TradeResult {
	meta.mtx.RLock()
	defer meta.mtx.RUnlock()

	bz, err := meta.db.Get([]byte(keyLastTrade))
	if err != nil || bz == nil {
		return nil
	}
	ret := &TradeResult{}
	if err := jsonx.Unmarshal(bz, ret); err != nil {
		return nil
	}
	return ret
}

// PutCommit records the trades executed in ledger version ver.
func (meta *MetaDB) PutCommit(ver int64, trades []*TradeResult) error {
	meta.mtx.Lock()
	defer meta.mtx.Unlock()

	batch := meta.db.NewBatch()
	defer func() {
		_ = batch.Close()
	}()

	count := meta.trades + uint64(len(trades))
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], count)
	if err := batch.Set([]byte(keyTradeCount), bz[:]); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(bz[:], uint64(ver))
	if err := batch.Set([]byte(keyVersion), bz[:]); err != nil {
		return err
	}
	if len(trades) > 0 {
		last, err := jsonx.Marshal(trades[len(trades)-1])
		if err != nil {
			return err
		}
		if err := batch.Set([]byte(keyLastTrade), last); err != nil {
			return err
		}
	}
	if err := batch.WriteSync(); err != nil {
		return err
	}

	meta.trades = count
	meta.version = ver
	return nil
}
