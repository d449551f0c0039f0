package wiremsg

import (
	"bufio"
	"bytes"
)

type (
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bufioWriterAdapter       struct{ *bufio.Writer }
)

func (w *bufioWriterAdapter) Close() error       { return nil }
func (w *bytesBufferWriterAdapter) Close() error { return nil }
func (w *bytesBufferWriterAdapter) Flush() error { return nil }
func (w *bytesBufferWriterAdapter) Size() int    { return w.Available() }
