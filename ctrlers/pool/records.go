package pool

import (
	"bytes"
	"math/bits"

	"github.com/beatoz/beatoz-curve/curve"
	"github.com/beatoz/beatoz-curve/ledger"
	"github.com/beatoz/beatoz-curve/types"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	bin "github.com/gagliardetto/binary"
)

const (
	AddressLen = 32
	NameLen    = 32
	SymbolLen  = 8
	SeedLen    = 32

	MaxFeeBps uint16 = 10_000

	// Borsh sizes of the records below.
	CurrencyRecordLen = AddressLen + NameLen + SymbolLen + SeedLen + 8 + 1 + curve.RawCurveLen
	PoolRecordLen     = SymbolLen + AddressLen + 8 + 8 + 1 + 2 + 2 + 8 + 8 + 8 + 8 + 8
)

type Address [AddressLen]byte

// Currency is a token sold along a bonding curve.
// MaxSupply is counted in whole tokens.
type Currency struct {
	Authority Address
	Name      [NameLen]byte
	Symbol    [SymbolLen]byte
	Seed      [SeedLen]byte
	MaxSupply uint64
	Decimals  uint8
	Curve     curve.RawExponentialCurve
}

func NewCurrency(authority Address, name, symbol string, seed [SeedLen]byte, maxSupply uint64, decimals uint8, c *curve.ContinuousExponentialCurve) (*Currency, xerrors.XError) {
	if len(name) == 0 || len(name) > NameLen {
		return nil, xerrors.ErrInvalidName.Wrapf("name must be 1 to %d bytes", NameLen)
	}
	if xerr := validateSymbol(symbol); xerr != nil {
		return nil, xerr
	}
	cur := &Currency{
		Authority: authority,
		Seed:      seed,
		MaxSupply: maxSupply,
		Decimals:  decimals,
		Curve:     curve.RawCurveFrom(c),
	}
	copy(cur.Name[:], name)
	copy(cur.Symbol[:], symbol)
	return cur, nil
}

func validateSymbol(symbol string) xerrors.XError {
	if len(symbol) == 0 || len(symbol) > SymbolLen {
		return xerrors.ErrInvalidSymbol.Wrapf("symbol must be 1 to %d bytes", SymbolLen)
	}
	for _, r := range symbol {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return xerrors.ErrInvalidSymbol.Wrapf("%q: only A-Z and 0-9 are allowed", symbol)
		}
	}
	return nil
}

func trimPadding(bz []byte) string {
	return string(bytes.TrimRight(bz, "\x00"))
}

func (cur *Currency) NameString() string {
	return trimPadding(cur.Name[:])
}

func (cur *Currency) SymbolString() string {
	return trimPadding(cur.Symbol[:])
}

// SupplyRaw returns MaxSupply in the smallest unit.
func (cur *Currency) SupplyRaw() (uint64, xerrors.XError) {
	unit, xerr := types.UnitOf(cur.Decimals)
	if xerr != nil {
		return 0, xerr
	}
	hi, lo := bits.Mul64(cur.MaxSupply, unit)
	if hi != 0 {
		return 0, xerrors.ErrOverFlow.Wrapf("max supply %d with %d decimals", cur.MaxSupply, cur.Decimals)
	}
	return lo, nil
}

func (cur *Currency) Key() ledger.LedgerKey {
	return ledger.LedgerKeyCurrency(cur.SymbolString())
}

func (cur Currency) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.Encode(cur.Authority); err != nil {
		return err
	}
	if err = encoder.Encode(cur.Name); err != nil {
		return err
	}
	if err = encoder.Encode(cur.Symbol); err != nil {
		return err
	}
	if err = encoder.Encode(cur.Seed); err != nil {
		return err
	}
	if err = encoder.Encode(cur.MaxSupply); err != nil {
		return err
	}
	if err = encoder.Encode(cur.Decimals); err != nil {
		return err
	}
	return encoder.Encode(cur.Curve)
}

func (cur *Currency) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = decoder.Decode(&cur.Authority); err != nil {
		return err
	}
	if err = decoder.Decode(&cur.Name); err != nil {
		return err
	}
	if err = decoder.Decode(&cur.Symbol); err != nil {
		return err
	}
	if err = decoder.Decode(&cur.Seed); err != nil {
		return err
	}
	if err = decoder.Decode(&cur.MaxSupply); err != nil {
		return err
	}
	if err = decoder.Decode(&cur.Decimals); err != nil {
		return err
	}
	return decoder.Decode(&cur.Curve)
}

func (cur *Currency) Encode() ([]byte, xerrors.XError) {
	buf := new(bytes.Buffer)
	if err := cur.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, xerrors.ErrInvalidRecord.Wrap(err)
	}
	return buf.Bytes(), nil
}

func (cur *Currency) Decode(bz []byte) xerrors.XError {
	if len(bz) != CurrencyRecordLen {
		return xerrors.ErrInvalidRecord.Wrapf("currency record is %d bytes, expected %d", len(bz), CurrencyRecordLen)
	}
	if err := cur.UnmarshalWithDecoder(bin.NewBorshDecoder(bz)); err != nil {
		return xerrors.ErrInvalidRecord.Wrap(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*Currency)(nil)

// Pool is the two sided liquidity pool of a currency.
// Vault A holds the unsold target tokens and vault B the base value paid in,
// both in their smallest units. A zero cap means unlimited.
type Pool struct {
	Currency        [SymbolLen]byte
	Authority       Address
	VaultA          uint64
	VaultB          uint64
	BaseDecimals    uint8
	BuyFee          uint16
	SellFee         uint16
	PurchaseCap     uint64
	SaleCap         uint64
	GoLiveUnixTime  int64
	FeesAccumulated uint64
	FeesBurned      uint64
}

func (pool *Pool) SymbolString() string {
	return trimPadding(pool.Currency[:])
}

func (pool *Pool) Key() ledger.LedgerKey {
	return ledger.LedgerKeyPool(pool.SymbolString())
}

func (pool *Pool) IsLive(now int64) bool {
	return now >= pool.GoLiveUnixTime
}

func (pool Pool) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	for _, v := range []interface{}{
		pool.Currency,
		pool.Authority,
		pool.VaultA,
		pool.VaultB,
		pool.BaseDecimals,
		pool.BuyFee,
		pool.SellFee,
		pool.PurchaseCap,
		pool.SaleCap,
		pool.GoLiveUnixTime,
		pool.FeesAccumulated,
		pool.FeesBurned,
	} {
		if err = encoder.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (pool *Pool) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	for _, v := range []interface{}{
		&pool.Currency,
		&pool.Authority,
		&pool.VaultA,
		&pool.VaultB,
		&pool.BaseDecimals,
		&pool.BuyFee,
		&pool.SellFee,
		&pool.PurchaseCap,
		&pool.SaleCap,
		&pool.GoLiveUnixTime,
		&pool.FeesAccumulated,
		&pool.FeesBurned,
	} {
		if err = decoder.Decode(v); err != nil {
			return err
		}
	}
	return nil
}

func (pool *Pool) Encode() ([]byte, xerrors.XError) {
	buf := new(bytes.Buffer)
	if err := pool.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, xerrors.ErrInvalidRecord.Wrap(err)
	}
	return buf.Bytes(), nil
}

func (pool *Pool) Decode(bz []byte) xerrors.XError {
	if len(bz) != PoolRecordLen {
		return xerrors.ErrInvalidRecord.Wrapf("pool record is %d bytes, expected %d", len(bz), PoolRecordLen)
	}
	if err := pool.UnmarshalWithDecoder(bin.NewBorshDecoder(bz)); err != nil {
		return xerrors.ErrInvalidRecord.Wrap(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*Pool)(nil)
