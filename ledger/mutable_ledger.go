package ledger

import (
	"sync"

	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

const (
	GoLevelDBBackend = "goleveldb"
	MemDBBackend     = "memdb"

	defaultCacheSize = 10000
)

// MutableLedger is a versioned store on an iavl tree.
// Set changes the working tree and can be reverted to a snapshot until Commit saves a new version.
type MutableLedger struct {
	db         dbm.DB
	tree       *iavl.MutableTree
	revisions  *revisionList[[]byte]
	newItemFor FuncNewItemFor

	logger tmlog.Logger
	mtx    sync.RWMutex
}

var _ IMutable = (*MutableLedger)(nil)

func openDB(name, backend, dbDir string) (dbm.DB, xerrors.XError) {
	switch backend {
	case GoLevelDBBackend:
		db, err := dbm.NewGoLevelDB(name, dbDir)
		if err != nil {
			return nil, xerrors.Wrap(err, "goleveldb open failed")
		}
		return db, nil
	case MemDBBackend:
		return dbm.NewMemDB(), nil
	default:
		return nil, xerrors.NewOrdinary("unknown db backend: " + backend)
	}
}

// NewMutableLedger opens (or creates) the database `name` under dbDir and loads its latest version.
func NewMutableLedger(name, dbDir, backend string, newItem FuncNewItemFor, lg tmlog.Logger) (*MutableLedger, xerrors.XError) {
	db, xerr := openDB(name, backend, dbDir)
	if xerr != nil {
		return nil, xerr
	}
	return NewMutableLedgerWithDB(db, newItem, lg)
}

func NewMutableLedgerWithDB(db dbm.DB, newItem FuncNewItemFor, lg tmlog.Logger) (*MutableLedger, xerrors.XError) {
	tree := iavl.NewMutableTree(db, defaultCacheSize, false, iavl.NewNopLogger(), iavl.SyncOption(true))
	if _, err := tree.LoadVersion(0); err != nil {
		_ = tree.Close()
		_ = db.Close()
		return nil, xerrors.Wrap(err, "tree's LoadVersion failed")
	}

	return &MutableLedger{
		db:         db,
		tree:       tree,
		revisions:  newRevisionList[[]byte](),
		newItemFor: newItem,
		logger:     lg.With("ledger", "MutableLedger"),
	}, nil
}

// Get reads the working tree, so uncommitted changes are visible.
func (ledger *MutableLedger) Get(key LedgerKey) (ILedgerItem, xerrors.XError) {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	bz, err := ledger.tree.Get(key)
	if err != nil {
		return nil, xerrors.From(err)
	} else if bz == nil {
		return nil, xerrors.ErrNotFoundResult
	}

	item := ledger.newItemFor(key)
	if xerr := item.Decode(bz); xerr != nil {
		return nil, xerr
	}
	return item, nil
}

// Seek travels the elements of the last saved version whose key has the prefix.
// Uncommitted changes are not visited.
func (ledger *MutableLedger) Seek(prefix []byte, ascending bool, cb FuncIterate) xerrors.XError {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	ver := ledger.tree.Version()
	if ver == 0 {
		return nil
	}
	saved, err := ledger.tree.GetImmutable(ver)
	if err != nil {
		return xerrors.From(err)
	}

	var end []byte
	if len(prefix) > 0 {
		end = prefixEnd(prefix)
	}
	iter, err := saved.Iterator(prefix, end, ascending)
	if err != nil {
		return xerrors.From(err)
	}
	defer func() {
		_ = iter.Close()
	}()

	for ; iter.Valid(); iter.Next() {
		key := iter.Key()
		item := ledger.newItemFor(key)
		if xerr := item.Decode(iter.Value()); xerr != nil {
			return xerr
		}
		if xerr := cb(key, item); xerr != nil {
			return xerr
		}
	}
	return xerrors.From(iter.Error())
}

func (ledger *MutableLedger) Set(item ILedgerItem) xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	key := item.Key()
	oldVal, err := ledger.tree.Get(key)
	if err != nil {
		return xerrors.From(err)
	}
	newVal, xerr := item.Encode()
	if xerr != nil {
		return xerr
	}
	if _, err := ledger.tree.Set(key, newVal); err != nil {
		return xerrors.From(err)
	}

	ledger.logger.Debug("set item to tree", "key", key, "size", len(newVal))

	// a nil oldVal means the item is created and is removed in reverting
	ledger.revisions.set(key, oldVal)
	return nil
}

func (ledger *MutableLedger) Snapshot() int {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	return ledger.revisions.snapshot()
}

func (ledger *MutableLedger) RevertToSnapshot(snap int) xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	if snap < 0 || snap > ledger.revisions.snapshot() {
		return xerrors.ErrInvalidQueryParams.Wrapf("snapshot %d", snap)
	}

	restores := ledger.revisions.since(snap)
	for i := len(restores) - 1; i >= 0; i-- {
		kv := restores[i]
		if kv.val != nil {
			if _, err := ledger.tree.Set(kv.key, kv.val); err != nil {
				return xerrors.From(err)
			}
		} else if _, _, err := ledger.tree.Remove(kv.key); err != nil {
			return xerrors.From(err)
		}
	}
	ledger.revisions.revert(snap)
	return nil
}

// Commit saves the working tree as a new version and returns its root hash.
func (ledger *MutableLedger) Commit() ([]byte, int64, xerrors.XError) {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.tree.SetCommitting()
	defer ledger.tree.UnsetCommitting()

	hash, ver, err := ledger.tree.SaveVersion()
	if err != nil {
		return nil, 0, xerrors.From(err)
	}

	ledger.logger.Debug("tree save version", "hash", hash, "version", ver)

	ledger.revisions.reset()
	return hash, ver, nil
}

func (ledger *MutableLedger) Version() int64 {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	return ledger.tree.Version()
}

// Hash returns the root hash of the last saved version.
func (ledger *MutableLedger) Hash() []byte {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	return ledger.tree.Hash()
}

func (ledger *MutableLedger) Close() xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	if ledger.tree != nil {
		if err := ledger.tree.Close(); err != nil {
			return xerrors.From(err)
		}
	}
	ledger.tree = nil

	if ledger.db != nil {
		if err := ledger.db.Close(); err != nil {
			return xerrors.From(err)
		}
	}
	ledger.db = nil

	ledger.revisions.reset()
	return nil
}

// prefixEnd returns the smallest key greater than every key having the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
