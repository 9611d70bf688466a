package dtc

import (
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Append helpers skip zero values, matching proto3 field presence. Doubles
// are fixed64 so float fields survive a round trip bit for bit.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	// Negative int32 widens to int64 first, like generated code does.
	return appendVarint(b, num, uint64(int64(v)))
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

// Consume helpers validate the observed wire type so a malformed payload
// surfaces as an error instead of a silently misread field.

func wireVarint(b []byte, typ protowire.Type) (uint64, []byte, error) {
	if typ != protowire.VarintType {
		return 0, nil, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func wireInt32(b []byte, typ protowire.Type) (int32, []byte, error) {
	v, rest, err := wireVarint(b, typ)
	return int32(v), rest, err
}

func wireUint32(b []byte, typ protowire.Type) (uint32, []byte, error) {
	v, rest, err := wireVarint(b, typ)
	return uint32(v), rest, err
}

func wireInt64(b []byte, typ protowire.Type) (int64, []byte, error) {
	v, rest, err := wireVarint(b, typ)
	return int64(v), rest, err
}

func wireBool(b []byte, typ protowire.Type) (bool, []byte, error) {
	v, rest, err := wireVarint(b, typ)
	return v != 0, rest, err
}

func wireDouble(b []byte, typ protowire.Type) (float64, []byte, error) {
	if typ != protowire.Fixed64Type {
		return 0, nil, errWireType
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return math.Float64frombits(v), b[n:], nil
}

func wireString(b []byte, typ protowire.Type) (string, []byte, error) {
	if typ != protowire.BytesType {
		return "", nil, errWireType
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func wireSkip(b []byte, num protowire.Number, typ protowire.Type) ([]byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return b[n:], nil
}

// UnixSeconds renders a timestamp the way float-seconds date-time fields
// carry it on the wire.
func UnixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}
