package wiremsg

import (
	"fmt"
	"io"
)

// Encode writes m to w: the 2-byte type tag, the required fields in order,
// then each present extension as a TLV record. w is flushed once the whole
// message is written. It returns the number of bytes written.
func Encode(w io.Writer, m Message) (int64, error) {
	s, err := SchemaOf(m)
	if err != nil {
		return 0, err
	}
	if isNil(m) {
		return 0, fmt.Errorf("%w: %s", ErrNilMessage, s.Name)
	}
	wr, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	encodeMessage(wr, m, s)
	return wr.Result()
}

func encodeMessage(w *Writer, m Message, s *Schema) {
	fields, err := boundFields(m, s)
	if err != nil {
		w.Fail(err)
		return
	}
	w.WriteUint16(s.Type)
	for _, f := range fields[:s.Required] {
		if w.Err() != nil {
			return
		}
		f.EncodeField(w)
	}
	for _, f := range fields[s.Required:] {
		ext := f.(Extension)
		if ext.Present() {
			WriteRecord(w, ext.ExtType(), ext)
		}
	}
}

// Decode reads m from r. With checkType the leading tag is read and must
// match m's; callers that already consumed the tag pass false.
//
// Required fields are read in order. If m declares a TLV tail, records are
// then read until r ends, so r must end with the message (an outer framing
// layer knows where). Messages without a tail stop right after their last
// field and leave r at the next byte.
//
// A clean end of r before the tag is io.EOF.
func Decode(r io.Reader, m Message, checkType bool) (int64, error) {
	s, err := SchemaOf(m)
	if err != nil {
		return 0, err
	}
	if isNil(m) {
		return 0, fmt.Errorf("%w: %s", ErrNilMessage, s.Name)
	}
	rd, err := NewReader(r)
	if err != nil {
		return 0, err
	}
	if checkType {
		typ, err := readMsgType(rd)
		if err != nil {
			return rd.Count(), err
		}
		if typ != s.Type {
			return rd.Count(), fmt.Errorf("%w: got 0x%04x, want 0x%04x (%s)", ErrTypeMismatch, typ, s.Type, s.Name)
		}
	}
	err = decodeBody(rd, m, s, s.HasTLV())
	return rd.Count(), err
}

// readMsgType reads a message tag, reporting io.EOF if r ended before it.
func readMsgType(r *Reader) (uint16, error) {
	if !r.More() {
		if err := r.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	var typ uint16
	r.ReadUint16(&typ)
	return typ, r.Err()
}

// decodeBody reads everything after the tag. withTail makes it consume the
// TLV stream to the end of r even when m declares no extensions.
func decodeBody(r *Reader, m Message, s *Schema, withTail bool) error {
	fields, err := boundFields(m, s)
	if err != nil {
		return err
	}
	for _, f := range fields[:s.Required] {
		f.DecodeField(r)
		if err := r.Err(); err != nil {
			return err
		}
	}
	if !withTail {
		return nil
	}

	t := tail{r: r}
	for _, f := range fields[s.Required:] {
		ext := f.(Extension)
		ext.Clear()
		if err := t.decode(ext); err != nil {
			return err
		}
	}
	return t.drain()
}

// boundFields returns m's fields after checking they still match s.
func boundFields(m Message, s *Schema) ([]Field, error) {
	fields := m.Fields()
	if len(fields) != s.Required+len(s.Extensions) {
		return nil, schemaErrorf("%s: %d fields bound, schema has %d", s.Name, len(fields), s.Required+len(s.Extensions))
	}
	for i, f := range fields[s.Required:] {
		ext, ok := f.(Extension)
		if !ok || ext.ExtType() != s.Extensions[i] {
			return nil, schemaErrorf("%s: field %d does not match tlv type %d", s.Name, s.Required+i, s.Extensions[i])
		}
	}
	return fields, nil
}

// tail walks the TLV stream of one message. It only lives for one decode.
type tail struct {
	r    *Reader
	last uint64
	seen bool
}

// peek returns the type of the next record without consuming it. ok is false
// at the end of the stream.
func (t *tail) peek() (typ uint64, ok bool, err error) {
	typ, ok, err = t.r.Lookahead().PeekType()
	if err != nil || !ok {
		return 0, false, err
	}
	if t.seen && typ <= t.last {
		return 0, false, outOfOrder(typ, t.last)
	}
	return typ, true, nil
}

// decode fills ext from the stream. Records with smaller types are not
// declared by the message and are skipped. A larger type means ext is absent;
// that record stays unread for the extensions after ext.
func (t *tail) decode(ext Extension) error {
	want := ext.ExtType()
	for {
		typ, ok, err := t.peek()
		if err != nil || !ok || typ > want {
			return err
		}
		if typ < want {
			if err := t.consume(nil); err != nil {
				return err
			}
			continue
		}
		return t.consume(ext)
	}
}

// drain skips the records after the last declared extension.
func (t *tail) drain() error {
	for {
		_, ok, err := t.peek()
		if err != nil || !ok {
			return err
		}
		if err := t.consume(nil); err != nil {
			return err
		}
	}
}

// consume reads the next record and decodes its payload into f, or discards
// the payload when f is nil.
func (t *tail) consume(f Field) error {
	typ, length, err := readRecordHeader(t.r)
	if err != nil {
		return err
	}
	t.last, t.seen = typ, true

	if f == nil {
		t.r.Discard(int64(length))
		if err := t.r.Err(); err != nil {
			return fmt.Errorf("%w: type %d declares %d bytes: %w", ErrLengthMismatch, typ, length, err)
		}
		return nil
	}

	buf, err := readPayload(t.r, typ, length)
	if err != nil {
		return err
	}
	defer putBuffer(buf)
	return decodePayload(typ, buf.Bytes(), f)
}
