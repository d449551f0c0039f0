package wiremsg

import (
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

// MaxBigSizeLen is the widest BigSize encoding: a prefix byte and a uint64.
const MaxBigSizeLen = 9

// BigSize prefixes. Values below bigSize16 are stored in a single byte.
const (
	bigSize16 = 0xfd
	bigSize32 = 0xfe
	bigSize64 = 0xff
)

// BigSizeLen returns the number of bytes v occupies as a BigSize.
func BigSizeLen(v uint64) int {
	switch {
	case v < bigSize16:
		return 1
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// bigSizeLen returns the full width announced by a BigSize prefix byte.
func bigSizeLen(prefix byte) int {
	switch prefix {
	case bigSize16:
		return 3
	case bigSize32:
		return 5
	case bigSize64:
		return 9
	default:
		return 1
	}
}

// putBigSize writes v into b, which must hold BigSizeLen(v) bytes.
func putBigSize(b []byte, v uint64) int {
	switch n := BigSizeLen(v); n {
	case 1:
		b[0] = byte(v)
		return n
	case 3:
		b[0] = bigSize16
		Order.PutUint16(b[1:], uint16(v))
		return n
	case 5:
		b[0] = bigSize32
		Order.PutUint32(b[1:], uint32(v))
		return n
	default:
		b[0] = bigSize64
		Order.PutUint64(b[1:], v)
		return n
	}
}

// decodeBigSize decodes a complete BigSize from b and rejects encodings that
// are wider than the value needs.
func decodeBigSize(b []byte) (uint64, error) {
	var v, floor uint64
	switch b[0] {
	case bigSize16:
		v, floor = uint64(Order.Uint16(b[1:3])), bigSize16
	case bigSize32:
		v, floor = uint64(Order.Uint32(b[1:5])), math.MaxUint16+1
	case bigSize64:
		v, floor = Order.Uint64(b[1:9]), math.MaxUint32+1
	default:
		return uint64(b[0]), nil
	}
	if v < floor {
		return 0, fmt.Errorf("%w: bigsize 0x%x in %d bytes", ErrNonCanonical, v, len(b))
	}
	return v, nil
}

// malformedEOF reports a record header cut short by the end of the stream.
func malformedEOF(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short tlv record: %w", ErrMalformed, io.ErrUnexpectedEOF)
	}
	return err
}

// fitUnsigned converts v to T, failing with ErrMalformed if it does not fit.
func fitUnsigned[T constraints.Unsigned](v uint64) (T, error) {
	t := T(v)
	if uint64(t) != v {
		return 0, fmt.Errorf("%w: value %d overflows %T", ErrMalformed, v, t)
	}
	return t, nil
}
