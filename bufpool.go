package wiremsg

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for staging TLV payloads while their length is
// unknown, and for reading payloads back before they are decoded.
var bytesBufPool = sync.Pool{
	New: func() any {
		// 4KB covers most records; LN messages never exceed 64KB.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// maxPooledBuffer keeps one oversized payload from pinning memory in the pool.
const maxPooledBuffer = 64 * 1024

func getBuffer() *bytes.Buffer {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bytesBufPool.Put(buf)
}
