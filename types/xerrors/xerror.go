package xerrors

import (
	"errors"
	"fmt"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

const (
	ErrCodeSuccess uint32 = abcitypes.CodeTypeOK + iota
	ErrCodeOrdinary
	ErrCodeInvalidAmount
	ErrCodeInvalidDecimals
	ErrCodeInvalidFeeRate
	ErrCodeCurveExhausted
	ErrCodeCurveOverflow
	ErrCodeSlippage
	ErrCodeCapExceeded
	ErrCodeNotLive
	ErrCodeInsufficientVault
	ErrCodeNoValue
	ErrCodeNoFees
	ErrCodeInvalidTable
	ErrCodeInvalidRecord
)

const (
	ErrCodeQuery uint32 = 1000 + iota
	ErrCodeInvalidQueryParams
	ErrCodeNotFoundResult
	ErrLast
)

var (
	ErrCommon   = New(ErrCodeOrdinary, "curve error")
	ErrOverFlow = New(ErrCodeOrdinary, "overflow")
	ErrQuery    = New(ErrCodeQuery, "query failed")

	ErrInvalidAmount     = New(ErrCodeInvalidAmount, "invalid amount")
	ErrInvalidDecimals   = New(ErrCodeInvalidDecimals, "invalid decimal places")
	ErrInvalidFeeRate    = New(ErrCodeInvalidFeeRate, "invalid fee rate")
	ErrCurveExhausted    = New(ErrCodeCurveExhausted, "curve exhausted")
	ErrCurveOverflow     = New(ErrCodeCurveOverflow, "curve computation overflow")
	ErrSlippage          = New(ErrCodeSlippage, "slippage exceeded")
	ErrCapExceeded       = New(ErrCodeCapExceeded, "amount exceeds cap")
	ErrNotLive           = New(ErrCodeNotLive, "pool is not yet live")
	ErrInsufficientVault = New(ErrCodeInsufficientVault, "insufficient vault balance")
	ErrNoValue           = New(ErrCodeNoValue, "no value received")
	ErrNoFees            = New(ErrCodeNoFees, "no fees generated")
	ErrInvalidTable      = New(ErrCodeInvalidTable, "invalid pricing table")
	ErrInvalidRecord     = New(ErrCodeInvalidRecord, "invalid record")

	ErrInvalidQueryParams = New(ErrCodeInvalidQueryParams, "invalid query parameters")

	ErrNotFoundResult = New(ErrCodeNotFoundResult, "not found result")

	// new style errors
	ErrDuplicatedKey = NewOrdinary("already existed key")
	ErrInvalidName   = NewOrdinary("invalid name")
	ErrInvalidSymbol = NewOrdinary("invalid symbol")
)

type XError interface {
	Code() uint32
	Cause() error
	Error() string
	Msg() string
	Wrap(error) XError
	Wrapf(string, ...any) XError
	Contains(XError) bool
	Equal(XError) bool
}

type xerror struct {
	code  uint32
	msg   string
	cause error
}

func New(code uint32, msg string) XError {
	return &xerror{
		code: code,
		msg:  msg,
	}
}

func NewOrdinary(msg string) XError {
	return &xerror{
		code: ErrCodeOrdinary,
		msg:  msg,
	}
}

func From(err error) XError {
	if err == nil {
		return nil
	}
	return NewOrdinary(err.Error())
}

func Wrap(err error, msg string) XError {
	return &xerror{
		code:  ErrCodeOrdinary,
		msg:   msg,
		cause: err,
	}
}

func (xerr *xerror) Code() uint32 {
	return xerr.code
}

func (xerr *xerror) Error() string {
	msg := xerr.msg

	if xerr.cause != nil {
		msg += "\n\t" + xerr.cause.Error()
	}

	return msg

}

func (xerr *xerror) Msg() string {
	return xerr.msg
}

func (xerr *xerror) Cause() error {
	return xerr.cause
}

func (xerr *xerror) Wrap(err error) XError {
	if xerr.cause != nil {
		if cerr, ok := xerr.cause.(*xerror); ok {
			return &xerror{
				code:  xerr.code,
				msg:   xerr.msg,
				cause: cerr.Wrap(err),
			}
		}
	}
	return &xerror{
		code:  xerr.code,
		msg:   xerr.msg,
		cause: err,
	}
}

func (xerr *xerror) Wrapf(format string, args ...any) XError {
	return xerr.Wrap(New(ErrCodeOrdinary, fmt.Sprintf(format, args...)))
}

func (xerr *xerror) Contains(other XError) bool {
	if xerr.code == other.Code() && xerr.msg == other.Msg() {
		return true
	} else if xerr.cause != nil {
		if _xerr, ok := xerr.cause.(*xerror); ok {
			return _xerr.Contains(other)
		} else {
			return errors.Is(xerr.cause, other)
		}
	}
	return false
}

func (xerr *xerror) Equal(other XError) bool {
	return xerr.code == other.Code()
}

// Unwrap lets errors.Is and errors.As see the cause.
func (xerr *xerror) Unwrap() error {
	return xerr.cause
}

// Is matches another XError by code and message.
func (xerr *xerror) Is(target error) bool {
	other, ok := target.(XError)
	if !ok {
		return false
	}
	return xerr.code == other.Code() && xerr.msg == other.Msg()
}
