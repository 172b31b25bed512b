package ledger

import (
	"github.com/beatoz/beatoz-curve/types/xerrors"
)

type FuncNewItemFor func(LedgerKey) ILedgerItem
type FuncIterate func(LedgerKey, ILedgerItem) xerrors.XError

type IGettable interface {
	Get(LedgerKey) (ILedgerItem, xerrors.XError)
	Seek([]byte, bool, FuncIterate) xerrors.XError
}

type ISettable interface {
	Set(ILedgerItem) xerrors.XError
	Snapshot() int
	RevertToSnapshot(int) xerrors.XError
}

type ICommittable interface {
	Commit() ([]byte, int64, xerrors.XError)
}

type IMutable interface {
	IGettable
	ISettable
	ICommittable
	Version() int64
	Hash() []byte
	Close() xerrors.XError
}

type ILedgerItem interface {
	Key() LedgerKey
	Encode() ([]byte, xerrors.XError)
	Decode([]byte) xerrors.XError
}

type LedgerKey = []byte
