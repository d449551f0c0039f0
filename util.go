package wiremsg

import (
	"encoding/binary"
	"io"
)

var (
	BE = binary.BigEndian
	// Order is the wire byte order. Every multi-byte integer is big-endian.
	Order = BE
)

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making optional fields cleaner.

// Discard reads and drops exactly n bytes from r. It never reads past them.
func Discard(r io.Reader, n int64) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	skipped, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return skipped, err
}
