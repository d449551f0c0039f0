package wiremsg

import "io"

// BytesReader reads a message that is already in memory. Unmarshal and the
// TLV payload decoder use it so that the end of the slice is the end of the
// message.
type BytesReader struct {
	data []byte
	off  int
}

func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{data: b}
}

func (r *BytesReader) Read(p []byte) (int, error) {
	if r.off == len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}

func (r *BytesReader) ReadByte() (byte, error) {
	if r.off == len(r.data) {
		return 0, io.EOF
	}
	c := r.data[r.off]
	r.off++
	return c, nil
}

// Remaining returns the number of unread bytes.
func (r *BytesReader) Remaining() int { return len(r.data) - r.off }

// Reset rewinds r over b.
func (r *BytesReader) Reset(b []byte) { r.data, r.off = b, 0 }

func (r *BytesReader) Close() error { return nil }

// BytesWriter writes into a caller-provided slice and never grows it. A write
// that does not fit stores what it can and fails with io.ErrShortWrite.
type BytesWriter struct {
	buf []byte
	n   int
}

// NewBytesWriter writes into the full capacity of p.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{buf: p[:cap(p)]}
}

func (w *BytesWriter) Write(p []byte) (int, error) {
	n := copy(w.buf[w.n:], p)
	w.n += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (w *BytesWriter) WriteString(s string) (int, error) {
	n := copy(w.buf[w.n:], s)
	w.n += n
	if n < len(s) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (w *BytesWriter) WriteByte(c byte) error {
	if w.n == len(w.buf) {
		return io.ErrShortWrite
	}
	w.buf[w.n] = c
	w.n++
	return nil
}

// ReadFrom copies r into the free space until r ends. If the space runs out
// first it fails with io.ErrShortWrite.
func (w *BytesWriter) ReadFrom(r io.Reader) (int64, error) {
	start := w.n
	for w.n < len(w.buf) {
		n, err := r.Read(w.buf[w.n:])
		if n < 0 || n > len(w.buf)-w.n {
			return int64(w.n - start), ErrInvalidRead
		}
		w.n += n
		if err == io.EOF {
			return int64(w.n - start), nil
		}
		if err != nil {
			return int64(w.n - start), err
		}
	}
	var peek [1]byte
	if n, err := r.Read(peek[:]); n == 0 && err == io.EOF {
		return int64(w.n - start), nil
	}
	return int64(w.n - start), io.ErrShortWrite
}

func (w *BytesWriter) Flush() error { return nil }
func (w *BytesWriter) Close() error { return nil }

// Reset discards what was written so the slice can be reused.
func (w *BytesWriter) Reset() { w.n = 0 }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return w.n }

// Size returns the capacity of the destination slice.
func (w *BytesWriter) Size() int { return len(w.buf) }

// Bytes returns the written part of the destination slice.
func (w *BytesWriter) Bytes() []byte { return w.buf[:w.n] }
