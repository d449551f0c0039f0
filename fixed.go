package wiremsg

import (
	"encoding/binary"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in `binary.Size`
// on every call. Using a concurrent map makes it safe to share between
// goroutines decoding independent streams.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed binds a value of any fixed-size type (integers, byte arrays and
// structs of them) through encoding/binary in wire order.
//
// Constraint: T MUST NOT contain variable-size fields like slices, maps or
// strings. Such a T fails every encode and decode with ErrSchema.
func Fixed[T any](p *T) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			if FixedSize[T]() < 0 {
				w.Fail(fixedSchemaError[T]())
				return
			}
			if w.Err() != nil {
				return
			}
			w.setError(binary.Write(w, Order, p))
		},
		Decode: func(r *Reader) {
			size := FixedSize[T]()
			if size < 0 {
				r.Fail(fixedSchemaError[T]())
				return
			}
			buf := r.ReadBytes(size)
			if r.Err() != nil {
				return
			}
			var v T
			if _, err := binary.Decode(buf, Order, &v); err != nil {
				r.Fail(truncated(err))
				return
			}
			*p = v
		},
	}
}

// FixedSize returns the encoded size of T, or -1 if T is not fixed-size.
// The result is cached to avoid reflection overhead on subsequent calls.
func FixedSize[T any]() int {
	typ := reflect.TypeFor[T]()

	// Attempt to load from the concurrent-safe cache first for performance.
	if size, ok := sizeCache.Load(typ); ok {
		return size
	}

	// If not cached, perform the expensive reflection-based calculation.
	var zero T
	size := binary.Size(&zero)

	// Store the result for subsequent calls.
	sizeCache.Store(typ, size)
	return size
}

func fixedSchemaError[T any]() error {
	return schemaErrorf("%s is not fixed-size", reflect.TypeFor[T]())
}
