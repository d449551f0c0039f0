package wiremsg

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"golang.org/x/exp/constraints"
)

// MaxVarBytes is the longest slice a u16 length prefix can describe.
const MaxVarBytes = math.MaxUint16

// FieldFunc adapts a pair of functions to the Field interface.
type FieldFunc struct {
	Encode func(w *Writer)
	Decode func(r *Reader)
}

func (f FieldFunc) EncodeField(w *Writer) { f.Encode(w) }
func (f FieldFunc) DecodeField(r *Reader) { f.Decode(r) }

func Uint8(p *uint8) Field {
	return FieldFunc{func(w *Writer) { w.WriteUint8(*p) }, func(r *Reader) { r.ReadUint8(p) }}
}

func Uint16(p *uint16) Field {
	return FieldFunc{func(w *Writer) { w.WriteUint16(*p) }, func(r *Reader) { r.ReadUint16(p) }}
}

func Uint32(p *uint32) Field {
	return FieldFunc{func(w *Writer) { w.WriteUint32(*p) }, func(r *Reader) { r.ReadUint32(p) }}
}

func Uint64(p *uint64) Field {
	return FieldFunc{func(w *Writer) { w.WriteUint64(*p) }, func(r *Reader) { r.ReadUint64(p) }}
}

func Int8(p *int8) Field {
	return FieldFunc{func(w *Writer) { w.WriteInt8(*p) }, func(r *Reader) { r.ReadInt8(p) }}
}

func Int16(p *int16) Field {
	return FieldFunc{func(w *Writer) { w.WriteInt16(*p) }, func(r *Reader) { r.ReadInt16(p) }}
}

func Int32(p *int32) Field {
	return FieldFunc{func(w *Writer) { w.WriteInt32(*p) }, func(r *Reader) { r.ReadInt32(p) }}
}

func Int64(p *int64) Field {
	return FieldFunc{func(w *Writer) { w.WriteInt64(*p) }, func(r *Reader) { r.ReadInt64(p) }}
}

// Bool is a single byte, 0 or 1. Any other byte is malformed.
func Bool(p *bool) Field {
	return FieldFunc{func(w *Writer) { w.WriteBool(*p) }, func(r *Reader) { r.ReadBool(p) }}
}

// Array binds a fixed-size byte array, passed as a slice of it:
//
//	wiremsg.Array(m.ChannelID[:])
func Array(b []byte) Field {
	return FieldFunc{func(w *Writer) { w.WriteBytes(b) }, func(r *Reader) { r.ReadBytesTo(b) }}
}

// Bytes is a u16 length followed by that many bytes.
func Bytes(p *[]byte) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			if len(*p) > MaxVarBytes {
				w.Failf("%d bytes exceed u16 length prefix", len(*p))
				return
			}
			w.WriteUint16(uint16(len(*p)))
			w.WriteBytes(*p)
		},
		Decode: func(r *Reader) {
			var n uint16
			r.ReadUint16(&n)
			b := r.ReadBytes(int(n))
			if r.Err() == nil {
				*p = b
			}
		},
	}
}

// Rest takes every remaining byte of the source. It is meant for the last
// field of a TLV payload, whose end the record length defines.
func Rest(p *[]byte) Field {
	return FieldFunc{
		Encode: func(w *Writer) { w.WriteBytes(*p) },
		Decode: func(r *Reader) {
			b := r.ReadRest()
			if r.Err() == nil {
				*p = b
			}
		},
	}
}

// BigSize stores an unsigned integer as a BigSize varint. A decoded value
// that does not fit T is malformed.
func BigSize[T constraints.Unsigned](p *T) Field {
	return FieldFunc{
		Encode: func(w *Writer) { w.WriteBigSize(uint64(*p)) },
		Decode: func(r *Reader) {
			var v uint64
			r.ReadBigSize(&v)
			if r.Err() != nil {
				return
			}
			t, err := fitUnsigned[T](v)
			if err != nil {
				r.Fail(err)
				return
			}
			*p = t
		},
	}
}

// Truncated stores an unsigned integer big-endian with its leading zero bytes
// removed, so zero takes no bytes at all. Like Rest, it consumes the source
// to its end and belongs at the end of a TLV payload.
func Truncated[T constraints.Unsigned](p *T) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			var buf [8]byte
			v := uint64(*p)
			Order.PutUint64(buf[:], v)
			w.WriteBytes(buf[8-(bits.Len64(v)+7)/8:])
		},
		Decode: func(r *Reader) {
			b := r.ReadRest()
			if r.Err() != nil {
				return
			}
			if len(b) > 8 {
				r.Failf("truncated integer of %d bytes", len(b))
				return
			}
			if len(b) > 0 && b[0] == 0 {
				r.Fail(fmt.Errorf("%w: truncated integer with leading zero", ErrNonCanonical))
				return
			}
			var v uint64
			for _, c := range b {
				v = v<<8 | uint64(c)
			}
			t, err := fitUnsigned[T](v)
			if err != nil {
				r.Fail(err)
				return
			}
			*p = t
		},
	}
}

// Enum stores an integer enumeration in its natural width. Values outside
// known are rejected on both encode and decode.
func Enum[E ~uint8 | ~uint16 | ~uint32](p *E, known ...E) Field {
	size := binary.Size(E(0))
	return FieldFunc{
		Encode: func(w *Writer) {
			if !slices.Contains(known, *p) {
				w.Failf("unknown %T value %d", *p, *p)
				return
			}
			switch size {
			case 1:
				w.WriteUint8(uint8(*p))
			case 2:
				w.WriteUint16(uint16(*p))
			default:
				w.WriteUint32(uint32(*p))
			}
		},
		Decode: func(r *Reader) {
			var v E
			switch size {
			case 1:
				var u uint8
				r.ReadUint8(&u)
				v = E(u)
			case 2:
				var u uint16
				r.ReadUint16(&u)
				v = E(u)
			default:
				var u uint32
				r.ReadUint32(&u)
				v = E(u)
			}
			if r.Err() != nil {
				return
			}
			if !slices.Contains(known, v) {
				r.Failf("unknown %T value %d", v, v)
				return
			}
			*p = v
		},
	}
}

// Struct groups fields into one composite field, encoded in order with no
// framing of its own.
func Struct(fields ...Field) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			for _, f := range fields {
				f.EncodeField(w)
			}
		},
		Decode: func(r *Reader) {
			for _, f := range fields {
				if r.Err() != nil {
					return
				}
				f.DecodeField(r)
			}
		},
	}
}
