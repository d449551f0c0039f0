package wiremsg

import (
	"io"
)

// PeekWindow is the most bytes a Lookahead can hold without consuming them.
// It is wide enough for the largest BigSize value, which is all a TLV
// decoder needs to learn the type of the next record.
const PeekWindow = MaxBigSizeLen

// maxEmptyReads bounds consecutive (0, nil) reads, as bufio does.
const maxEmptyReads = 100

// Lookahead is a reader that allows peeking a few bytes ahead of the
// underlying stream. Peeked bytes that are not consumed stay available to
// the next read, byte-for-byte, and it never reads more from the underlying
// reader than a Peek or Read asked for.
type Lookahead struct {
	R   io.Reader        // The underlying reader.
	buf [PeekWindow]byte // The window for peeked data.
	off int              // start of unread peeked bytes
	end int              // end of peeked bytes
}

// NewLookahead returns a Lookahead. If the given reader is already a
// Lookahead, it is returned directly.
func NewLookahead(r io.Reader) *Lookahead {
	if la, ok := r.(*Lookahead); ok {
		return la
	}
	return &Lookahead{R: r}
}

// Buffered returns the number of peeked bytes not yet consumed.
func (r *Lookahead) Buffered() int { return r.end - r.off }

// Peek returns the next n bytes without advancing the reader. If the stream
// ends first, the bytes that could be read are returned with the error.
// The returned slice is only valid until the next call on r.
func (r *Lookahead) Peek(n int) ([]byte, error) {
	if n > PeekWindow {
		return nil, ErrPeekTooLarge
	}
	if r.end-r.off >= n {
		return r.buf[r.off : r.off+n], nil
	}

	// Compact so the window always has room for n bytes.
	if r.off > 0 {
		r.end = copy(r.buf[:], r.buf[r.off:r.end])
		r.off = 0
	}

	var err error
	for empty := 0; r.end < n; {
		read, er := r.R.Read(r.buf[r.end:n])
		if read < 0 || read > n-r.end {
			err = ErrInvalidRead
			break
		}
		r.end += read
		if er != nil {
			err = er
			break
		}
		if read == 0 {
			if empty++; empty >= maxEmptyReads {
				err = io.ErrNoProgress
				break
			}
		}
	}
	return r.buf[:r.end], err
}

// Read reads data into p. Peeked bytes are returned first; the underlying
// reader is only consulted once they are exhausted.
func (r *Lookahead) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.off < r.end {
		n := copy(p, r.buf[r.off:r.end])
		r.off += n
		if r.off == r.end {
			r.off, r.end = 0, 0
		}
		return n, nil
	}
	return r.R.Read(p)
}

// ReadByte implements io.ByteReader.
func (r *Lookahead) ReadByte() (byte, error) {
	b, err := r.Peek(1)
	if len(b) == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		return 0, err
	}
	c := b[0]
	r.off++
	if r.off == r.end {
		r.off, r.end = 0, 0
	}
	return c, nil
}

// Close closes the underlying reader if it implements io.Closer.
func (r *Lookahead) Close() error {
	if c, ok := r.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// PeekType reports the type of the next TLV record without consuming it.
// ok is false when the stream ended cleanly before the record.
func (r *Lookahead) PeekType() (typ uint64, ok bool, err error) {
	b, err := r.Peek(1)
	if len(b) == 0 {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, err
	}
	width := bigSizeLen(b[0])
	b, err = r.Peek(width)
	if len(b) < width {
		return 0, false, malformedEOF(err)
	}
	typ, err = decodeBigSize(b)
	if err != nil {
		return 0, false, err
	}
	return typ, true, nil
}

// ReadRecord consumes the next TLV record.
func (r *Lookahead) ReadRecord() (Record, error) {
	return readRecord(r)
}
