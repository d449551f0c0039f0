package wiremsg

import (
	"bytes"
	"fmt"
	"io"
)

// ErrTrailingData is returned by Unmarshal when bytes follow a message that
// do not form a valid TLV stream.
var ErrTrailingData = fmt.Errorf("%w: trailing data after message", ErrMalformed)

// Marshal returns the encoding of m.
// Note: This allocates a new byte slice. For performance-critical paths,
// use MarshalTo or Encode instead.
func Marshal(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo encodes m into p without allocating. It returns io.ErrShortWrite
// if p is too small; bytes past len(p) are never touched, whatever its
// capacity.
func MarshalTo(m Message, p []byte) (int, error) {
	n, err := Encode(NewBytesWriter(p[:len(p):len(p)]), m)
	return int(n), err
}

// Size returns the encoded size of m.
func Size(m Message) (int, error) {
	n, err := Encode(io.Discard, m)
	return int(n), err
}

// Unmarshal decodes one complete message from data, checking its tag. Since
// data bounds the message, whatever follows the required fields is read as
// the TLV tail even for messages that declare no extensions, and must be a
// well-formed, ordered TLV stream.
func Unmarshal(data []byte, m Message) error {
	s, err := SchemaOf(m)
	if err != nil {
		return err
	}
	if isNil(m) {
		return fmt.Errorf("%w: %s", ErrNilMessage, s.Name)
	}
	r, _ := NewReader(NewBytesReader(data))
	return unmarshalBody(r, m, s, true)
}

func unmarshalBody(r *Reader, m Message, s *Schema, checkType bool) error {
	if checkType {
		typ, err := readMsgType(r)
		if err != nil {
			return truncated(err)
		}
		if typ != s.Type {
			return fmt.Errorf("%w: got 0x%04x, want 0x%04x (%s)", ErrTypeMismatch, typ, s.Type, s.Name)
		}
	}
	if s.HasTLV() {
		return decodeBody(r, m, s, true)
	}
	if err := decodeBody(r, m, s, false); err != nil {
		return err
	}
	t := tail{r: r}
	if err := t.drain(); err != nil {
		return fmt.Errorf("%w: %w", ErrTrailingData, err)
	}
	return nil
}
