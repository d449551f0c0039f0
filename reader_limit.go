package wiremsg

import "io"

// LimitedReader bounds a stream to one frame, so a message with a TLV tail
// sees the end of the frame as its end of stream.
type LimitedReader struct {
	*io.LimitedReader
}

func LimitReader(r io.Reader, n int64) *LimitedReader {
	return &LimitedReader{&io.LimitedReader{R: r, N: n}}
}

// Remaining returns the number of bytes left in the frame.
func (r *LimitedReader) Remaining() int64 { return r.N }

// Skip discards the rest of the frame and returns how many bytes it dropped.
func (r *LimitedReader) Skip() (int64, error) {
	return Discard(r.LimitedReader, r.N)
}

// Close closes the underlying reader if it implements io.Closer.
func (r *LimitedReader) Close() error {
	if c, ok := r.R.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
