package curve

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/holiman/uint256"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/crypto/sha3"
)

const (
	tablesMagic   = "BCTB"
	tablesVersion = uint16(1)

	tablesHeaderLen = 4 + 2 + 8 + 8
	tablesEntryLen  = 2 * fxnum.BytesLen
	tablesDigestLen = 32
)

//go:embed discrete_tables.bin.gz
var embeddedTables []byte

var (
	defaultTables     *Tables
	defaultTablesOnce sync.Once
)

// Tables holds the discrete price per step and the cumulative cost up to each step boundary.
// It is read-only after construction and safe for concurrent use.
type Tables struct {
	stepSize uint64
	step     fxnum.FxNum
	stepRaw  uint256.Int

	prices     []fxnum.FxNum
	cumulative []fxnum.FxNum
}

// NewTables checks that prices are positive and non-decreasing and that
// cumulative[i+1] == cumulative[i] + prices[i]*step for every i.
func NewTables(stepSize uint64, prices, cumulative []fxnum.FxNum) (*Tables, xerrors.XError) {
	if stepSize == 0 {
		return nil, xerrors.ErrInvalidTable.Wrapf("zero step size")
	}
	if len(prices) == 0 || len(prices) != len(cumulative) {
		return nil, xerrors.ErrInvalidTable.Wrapf("table length mismatch: prices=%d, cumulative=%d", len(prices), len(cumulative))
	}
	if !cumulative[0].IsZero() {
		return nil, xerrors.ErrInvalidTable.Wrapf("cumulative[0] is %s", cumulative[0])
	}

	t := &Tables{
		stepSize:   stepSize,
		step:       fxnum.FromUint64(stepSize),
		prices:     prices,
		cumulative: cumulative,
	}
	t.stepRaw = *t.step.Raw()

	for i := 0; i < len(prices); i++ {
		if prices[i].IsZero() {
			return nil, xerrors.ErrInvalidTable.Wrapf("price[%d] is zero", i)
		}
		if i > 0 && prices[i].LessThan(prices[i-1]) {
			return nil, xerrors.ErrInvalidTable.Wrapf("price[%d] is less than price[%d]", i, i-1)
		}
		if i+1 < len(prices) {
			if xerr := t.checkCumulative(i); xerr != nil {
				return nil, xerr
			}
		}
	}
	return t, nil
}

func (t *Tables) checkCumulative(i int) xerrors.XError {
	stepCost, ok := t.prices[i].Mul(t.step)
	if !ok {
		return xerrors.ErrInvalidTable.Wrapf("price[%d] * step overflows", i)
	}
	expected, ok := t.cumulative[i].Add(stepCost)
	if !ok || !expected.Equal(t.cumulative[i+1]) {
		return xerrors.ErrInvalidTable.Wrapf("cumulative[%d] is %s, expected %s", i+1, t.cumulative[i+1], expected)
	}
	return nil
}

func (t *Tables) StepSize() uint64 {
	return t.stepSize
}

func (t *Tables) Len() int {
	return len(t.prices)
}

// MaxSupply is the supply at the last step boundary.
func (t *Tables) MaxSupply() uint64 {
	return uint64(len(t.prices)-1) * t.stepSize
}

func (t *Tables) Price(i int) (fxnum.FxNum, bool) {
	if i < 0 || i >= len(t.prices) {
		return fxnum.ZERO, false
	}
	return t.prices[i], true
}

func (t *Tables) Cumulative(i int) (fxnum.FxNum, bool) {
	if i < 0 || i >= len(t.cumulative) {
		return fxnum.ZERO, false
	}
	return t.cumulative[i], true
}

// searchCumulative returns the largest index in [low, len-1] whose cumulative value
// is not greater than target. cumulative[low] must not be greater than target.
func (t *Tables) searchCumulative(low uint64, target fxnum.FxNum) uint64 {
	high := uint64(len(t.cumulative) - 1)
	for low < high {
		mid := (low + high + 1) / 2
		if t.cumulative[mid].LessThanOrEqual(target) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// DefaultTables returns the embedded tables for the default curve.
// It panics if the embedded file is corrupted.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		t, xerr := ReadTables(bytes.NewReader(embeddedTables))
		if xerr != nil {
			panic(xerr)
		}
		defaultTables = t
	})
	return defaultTables
}

func LoadTablesFile(path string) (*Tables, xerrors.XError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.From(err)
	}
	defer f.Close()

	return ReadTables(f)
}

// ReadTables decodes a gzip compressed table file:
//
//	"BCTB" | u16 version | u64 step size | u64 count |
//	count * price | count * cumulative | sha3-256 of the preceding bytes
//
// Integers are little endian and every value is 24 bytes of limbs.
func ReadTables(r io.Reader) (*Tables, xerrors.XError) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, xerrors.ErrInvalidTable.Wrap(err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.ErrInvalidTable.Wrap(err)
	}
	if len(data) < tablesHeaderLen+tablesDigestLen {
		return nil, xerrors.ErrInvalidTable.Wrapf("too short: %d bytes", len(data))
	}

	body, digest := data[:len(data)-tablesDigestLen], data[len(data)-tablesDigestLen:]
	if sum := sha3.Sum256(body); !bytes.Equal(sum[:], digest) {
		return nil, xerrors.ErrInvalidTable.Wrapf("checksum mismatch")
	}

	if string(body[:4]) != tablesMagic {
		return nil, xerrors.ErrInvalidTable.Wrapf("wrong magic %q", body[:4])
	}
	if ver := binary.LittleEndian.Uint16(body[4:]); ver != tablesVersion {
		return nil, xerrors.ErrInvalidTable.Wrapf("unsupported version %d", ver)
	}
	stepSize := binary.LittleEndian.Uint64(body[6:])
	count := binary.LittleEndian.Uint64(body[14:])

	entries := body[tablesHeaderLen:]
	if count > uint64(len(entries))/tablesEntryLen || uint64(len(entries)) != count*tablesEntryLen {
		return nil, xerrors.ErrInvalidTable.Wrapf("%d entries do not match %d bytes", count, len(entries))
	}

	prices := make([]fxnum.FxNum, count)
	cumulative := make([]fxnum.FxNum, count)
	for i := range prices {
		prices[i] = readFxNum(entries[i*fxnum.BytesLen:])
	}
	entries = entries[int(count)*fxnum.BytesLen:]
	for i := range cumulative {
		cumulative[i] = readFxNum(entries[i*fxnum.BytesLen:])
	}

	return NewTables(stepSize, prices, cumulative)
}

func readFxNum(bz []byte) fxnum.FxNum {
	var buf [fxnum.BytesLen]byte
	copy(buf[:], bz)
	return fxnum.FromBytes(buf)
}

// WriteTables encodes t in the format read by ReadTables.
func WriteTables(w io.Writer, t *Tables) xerrors.XError {
	n := len(t.prices)
	body := make([]byte, 0, tablesHeaderLen+n*tablesEntryLen)
	body = append(body, tablesMagic...)
	body = binary.LittleEndian.AppendUint16(body, tablesVersion)
	body = binary.LittleEndian.AppendUint64(body, t.stepSize)
	body = binary.LittleEndian.AppendUint64(body, uint64(n))
	for _, p := range t.prices {
		bz := p.Bytes()
		body = append(body, bz[:]...)
	}
	for _, c := range t.cumulative {
		bz := c.Bytes()
		body = append(body, bz[:]...)
	}
	digest := sha3.Sum256(body)

	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return xerrors.From(err)
	}
	if _, err := zw.Write(body); err != nil {
		return xerrors.From(err)
	}
	if _, err := zw.Write(digest[:]); err != nil {
		return xerrors.From(err)
	}
	return xerrors.From(zw.Close())
}
