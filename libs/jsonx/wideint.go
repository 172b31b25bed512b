package jsonx

import (
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

// wideIntExtension writes int64 and uint64 struct fields as decimal strings,
// so raw token amounts above 2^53 survive JavaScript clients.
// Fields tagged ",string" are left to json-iterator.
type wideIntExtension struct {
	jsoniter.DummyExtension
}

func (e *wideIntExtension) UpdateStructDescriptor(desc *jsoniter.StructDescriptor) {
	for _, binding := range desc.Fields {
		if hasStringOption(binding.Field.Tag().Get("json")) {
			continue
		}
		var codec jsoniter.ValDecoder
		switch binding.Field.Type().Kind() {
		case reflect.Int64:
			codec = int64Codec{}
		case reflect.Uint64:
			codec = uint64Codec{}
		default:
			continue
		}
		binding.Decoder = codec
		binding.Encoder = codec.(jsoniter.ValEncoder)
	}
}

func hasStringOption(tag string) bool {
	if tag == "" {
		return false
	}
	for _, opt := range strings.Split(tag, ",")[1:] {
		if opt == "string" {
			return true
		}
	}
	return false
}

type int64Codec struct{}

func (int64Codec) IsEmpty(ptr unsafe.Pointer) bool {
	return *(*int64)(ptr) == 0
}

func (int64Codec) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString(strconv.FormatInt(*(*int64)(ptr), 10))
}

func (int64Codec) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	s, ok := readNumeric(iter)
	if !ok {
		return
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		iter.ReportError("decode int64", err.Error())
		return
	}
	*(*int64)(ptr) = v
}

type uint64Codec struct{}

func (uint64Codec) IsEmpty(ptr unsafe.Pointer) bool {
	return *(*uint64)(ptr) == 0
}

func (uint64Codec) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString(strconv.FormatUint(*(*uint64)(ptr), 10))
}

func (uint64Codec) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	s, ok := readNumeric(iter)
	if !ok {
		return
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		iter.ReportError("decode uint64", err.Error())
		return
	}
	*(*uint64)(ptr) = v
}

var (
	_ jsoniter.ValEncoder = int64Codec{}
	_ jsoniter.ValDecoder = int64Codec{}
	_ jsoniter.ValEncoder = uint64Codec{}
	_ jsoniter.ValDecoder = uint64Codec{}
)
