package wiremsg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// WriterPro is the buffered sink a Writer encodes into.
type WriterPro interface {
	io.Writer
	io.ReaderFrom
	io.Closer
	io.ByteWriter
	io.StringWriter
	Size() int
	Flush() error
}

// flusher is implemented by sinks with their own buffering.
type flusher interface {
	Flush() error
}

// Writer encodes wire fields into a buffered sink. The first error is
// latched: every later write is a no-op and Result reports it.
type Writer struct {
	w       WriterPro
	sink    flusher // flushed after w when the sink buffers on its own
	count   int64
	err     error
	depth   int // > 0 for a Writer sharing the buffer of an outer one
	scratch [MaxBigSizeLen]byte
}

var _ WriterPro = (*Writer)(nil)

// NewWriterSize returns a Writer over w with a buffer of at least size bytes.
// Sinks that already buffer are used as they are: an outer *Writer shares its
// buffer and leaves flushing to the outer one, a *bufio.Writer smaller than
// size is refused with ErrAlreadyBuffered, and in-memory sinks get no buffer.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	case *Writer:
		if bw.w.Size() >= size {
			return &Writer{w: bw.w, depth: bw.depth + 1}, nil
		}
	case *bufio.Writer:
		if bw.Size() < size {
			return nil, ErrAlreadyBuffered
		}
		// The caller's buffer still gets flushed once the message is complete.
		return &Writer{w: &bufioWriterAdapter{bw}}, nil
	case *BytesWriter:
		return &Writer{w: bw}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{bw}}, nil
	}

	nw := &Writer{w: &bufioWriterAdapter{bufio.NewWriterSize(w, size)}}
	if f, ok := w.(flusher); ok {
		nw.sink = f
	}
	return nw, nil
}

// NewWriter returns a Writer with the default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

func (w *Writer) Close() error { return w.w.Close() }

func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		w.setError(ErrInvalidWrite)
		return 0, w.err
	}
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if r == nil || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.ReadFrom(r)
	w.count += n
	w.setError(err)
	return n, w.err
}

func (w *Writer) Size() int    { return w.w.Size() }
func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Fail records err unless an error is already latched. Field encoders use it
// for values that cannot be represented on the wire.
func (w *Writer) Fail(err error) {
	w.setError(err)
}

// Failf records an ErrMalformed error with a formatted reason.
func (w *Writer) Failf(format string, args ...any) {
	w.setError(fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)))
}

// Result flushes and returns the bytes written and the latched error.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes the buffer out, then flushes the sink if it buffers too.
// A Writer nested in another one leaves this to the outermost.
func (w *Writer) Flush() error {
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	if w.sink != nil {
		w.setError(w.sink.Flush())
	}
	return w.err
}

func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.WriteByte(v); err != nil {
		w.err = err
		return err
	}
	w.count++
	return nil
}

func (w *Writer) WriteBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	_ = w.WriteByte(b)
}

func (w *Writer) WriteUint8(v uint8) { _ = w.WriteByte(v) }

func (w *Writer) WriteUint16(v uint16) {
	Order.PutUint16(w.scratch[:2], v)
	w.WriteBytes(w.scratch[:2])
}

func (w *Writer) WriteUint32(v uint32) {
	Order.PutUint32(w.scratch[:4], v)
	w.WriteBytes(w.scratch[:4])
}

func (w *Writer) WriteUint64(v uint64) {
	Order.PutUint64(w.scratch[:8], v)
	w.WriteBytes(w.scratch[:8])
}

func (w *Writer) WriteInt8(v int8)   { _ = w.WriteByte(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteBigSize writes v in its minimal BigSize encoding.
func (w *Writer) WriteBigSize(v uint64) {
	n := putBigSize(w.scratch[:], v)
	w.WriteBytes(w.scratch[:n])
}
