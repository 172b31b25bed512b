package jsonx

import (
	"unsafe"

	"github.com/beatoz/beatoz-curve/libs/fxnum"
	jsoniter "github.com/json-iterator/go"
)

// FxNum values travel as decimal strings with all 18 fractional digits,
// e.g. "0.010000000000000000". A bare JSON number is accepted on input.
func registerFxNumCodecs() {
	jsoniter.RegisterTypeEncoderFunc("fxnum.FxNum", encodeFxNum, isZeroFxNum)
	jsoniter.RegisterTypeDecoderFunc("fxnum.FxNum", decodeFxNum)
	jsoniter.RegisterTypeEncoderFunc("fxnum.SignedFxNum", encodeSignedFxNum, isZeroSignedFxNum)
	jsoniter.RegisterTypeDecoderFunc("fxnum.SignedFxNum", decodeSignedFxNum)
}

func encodeFxNum(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*fxnum.FxNum)(ptr).String())
}

func isZeroFxNum(ptr unsafe.Pointer) bool {
	return (*fxnum.FxNum)(ptr).IsZero()
}

func decodeFxNum(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	s, ok := readNumeric(iter)
	if !ok {
		return
	}
	v, err := fxnum.FromString(s)
	if err != nil {
		iter.ReportError("decode fxnum.FxNum", err.Error())
		return
	}
	*(*fxnum.FxNum)(ptr) = v
}

func encodeSignedFxNum(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*fxnum.SignedFxNum)(ptr).String())
}

func isZeroSignedFxNum(ptr unsafe.Pointer) bool {
	return (*fxnum.SignedFxNum)(ptr).IsZero()
}

func decodeSignedFxNum(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	s, ok := readNumeric(iter)
	if !ok {
		return
	}
	negative := len(s) > 0 && s[0] == '-'
	if negative {
		s = s[1:]
	}
	v, err := fxnum.FromString(s)
	if err != nil {
		iter.ReportError("decode fxnum.SignedFxNum", err.Error())
		return
	}
	*(*fxnum.SignedFxNum)(ptr) = fxnum.NewSigned(v, negative)
}

func readNumeric(iter *jsoniter.Iterator) (string, bool) {
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		return iter.ReadString(), true
	case jsoniter.NumberValue:
		return string(iter.ReadNumber()), true
	default:
		iter.Skip()
		return "", false
	}
}
