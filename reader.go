package wiremsg

import (
	"fmt"
	"io"
)

// Reader decodes wire fields from a stream. It sits on a Lookahead instead of
// a bufio.Reader so it never takes bytes from the source that decoding does
// not need: the next message on a stream is left where it was.
//
// The first error is latched. Later reads are no-ops that leave their
// destination untouched, and Err reports the error.
type Reader struct {
	r       *Lookahead
	count   int64
	err     error
	scratch [8]byte
}

var (
	_ io.Reader     = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
)

// NewReader returns a Reader over r. A *Reader or *Lookahead source shares
// its peek window with the new Reader, so bytes peeked through one are
// visible through the other.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if reader, ok := r.(*Reader); ok {
		return &Reader{r: reader.r}, nil
	}
	return &Reader{r: NewLookahead(r)}, nil
}

// Lookahead exposes the peek window the Reader reads through.
func (r *Reader) Lookahead() *Lookahead { return r.r }

func (r *Reader) Close() error { return r.r.Close() }

// Read implements io.Reader. Unlike the field reads, an io.EOF from the
// source is latched as is.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }
func (r *Reader) IsEOF() bool  { return r.err == io.EOF }

func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Fail records err unless an error is already latched. Field decoders use it
// for values that fail validation.
func (r *Reader) Fail(err error) {
	r.setError(err)
}

// Failf records an ErrMalformed error with a formatted reason.
func (r *Reader) Failf(format string, args ...any) {
	r.setError(fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)))
}

// Result returns the bytes read and the latched error.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// More reports whether at least one more byte can be read. A clean end of
// stream is not an error.
func (r *Reader) More() bool {
	if r.err != nil {
		return false
	}
	b, err := r.r.Peek(1)
	if len(b) > 0 {
		return true
	}
	if err != io.EOF {
		r.setError(err)
	}
	return false
}

// fill reads exactly len(dest) bytes. A source that ends first is a
// truncation, whether it ended cleanly or not.
func (r *Reader) fill(dest []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, dest)
	r.count += int64(n)
	if err != nil {
		r.err = truncated(err)
		return false
	}
	return true
}

// ReadBytes reads n bytes into a new slice. n <= 0 reads nothing and
// returns nil.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 || r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if !r.fill(buf) {
		return nil
	}
	return buf
}

// ReadBytesTo fills dest.
func (r *Reader) ReadBytesTo(dest []byte) {
	if len(dest) > 0 {
		r.fill(dest)
	}
}

// ReadRest reads until the source ends. Inside a TLV payload that is the end
// of the record.
func (r *Reader) ReadRest() []byte {
	if r.err != nil {
		return nil
	}
	buf, err := io.ReadAll(r.r)
	r.count += int64(len(buf))
	r.setError(err)
	if len(buf) == 0 {
		return nil
	}
	return buf
}

// Discard skips n bytes.
func (r *Reader) Discard(n int64) {
	if r.err != nil || n == 0 {
		return
	}
	skipped, err := Discard(r.r, n)
	r.count += skipped
	if err != nil {
		r.err = truncated(err)
	}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = truncated(err)
		return 0, r.err
	}
	r.count++
	return b, nil
}

// ReadBool reads one byte that must be 0 or 1.
func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	if b > 1 {
		r.Failf("bool byte 0x%02x", b)
		return
	}
	*dest = b == 1
}

func (r *Reader) ReadUint8(dest *uint8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	if r.fill(r.scratch[:2]) {
		*dest = Order.Uint16(r.scratch[:2])
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if r.fill(r.scratch[:4]) {
		*dest = Order.Uint32(r.scratch[:4])
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if r.fill(r.scratch[:8]) {
		*dest = Order.Uint64(r.scratch[:8])
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	var v uint16
	if r.ReadUint16(&v); r.err == nil {
		*dest = int16(v)
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	var v uint32
	if r.ReadUint32(&v); r.err == nil {
		*dest = int32(v)
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	var v uint64
	if r.ReadUint64(&v); r.err == nil {
		*dest = int64(v)
	}
}

// ReadBigSize reads a BigSize varint, rejecting non-minimal encodings.
func (r *Reader) ReadBigSize(dest *uint64) {
	if r.err != nil {
		return
	}
	b, err := r.r.Peek(1)
	if len(b) == 0 {
		r.err = truncated(err)
		return
	}
	var buf [MaxBigSizeLen]byte
	n := bigSizeLen(b[0])
	if !r.fill(buf[:n]) {
		return
	}
	v, err := decodeBigSize(buf[:n])
	if err != nil {
		r.err = err
		return
	}
	*dest = v
}
