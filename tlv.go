package wiremsg

import (
	"bytes"
	"fmt"
	"io"
)

// MaxRecordSize bounds the declared length of a TLV record. A message never
// exceeds 65535 bytes, so neither can one of its records.
const MaxRecordSize = 1<<16 - 1

// Record is one raw TLV record.
type Record struct {
	Type  uint64
	Value []byte
}

// TLV binds an optional field carried as the TLV record of type typ. A nil
// *p means the field is absent. bind returns the codec of the payload:
//
//	wiremsg.TLV(1, &m.QueryOption, wiremsg.BigSize[uint64])
func TLV[T any](typ uint64, p **T, bind func(*T) Field) Extension {
	return &tlvField[T]{typ: typ, p: p, bind: bind}
}

type tlvField[T any] struct {
	typ  uint64
	p    **T
	bind func(*T) Field
}

func (f *tlvField[T]) ExtType() uint64 { return f.typ }
func (f *tlvField[T]) Present() bool   { return *f.p != nil }
func (f *tlvField[T]) Clear()          { *f.p = nil }

func (f *tlvField[T]) EncodeField(w *Writer) {
	if *f.p != nil {
		f.bind(*f.p).EncodeField(w)
	}
}

func (f *tlvField[T]) DecodeField(r *Reader) {
	v := new(T)
	f.bind(v).DecodeField(r)
	if r.Err() == nil {
		*f.p = v
	}
}

// WriteRecord writes f as the TLV record of type typ. The payload is staged
// in a pooled buffer first, since its length precedes it on the wire.
func WriteRecord(w *Writer, typ uint64, f Field) {
	if w.Err() != nil {
		return
	}
	buf := getBuffer()
	defer putBuffer(buf)

	pw, _ := NewWriter(buf)
	f.EncodeField(pw)
	if _, err := pw.Result(); err != nil {
		w.Fail(fmt.Errorf("tlv type %d: %w", typ, err))
		return
	}
	if buf.Len() > MaxRecordSize {
		w.Failf("tlv type %d: payload of %d bytes", typ, buf.Len())
		return
	}
	w.WriteBigSize(typ)
	w.WriteBigSize(uint64(buf.Len()))
	w.WriteBytes(buf.Bytes())
}

// DecodeRecord decodes rec's payload into f. The field must consume the
// payload exactly.
func DecodeRecord(rec Record, f Field) error {
	return decodePayload(rec.Type, rec.Value, f)
}

func decodePayload(typ uint64, payload []byte, f Field) error {
	src := NewBytesReader(payload)
	r, _ := NewReader(src)
	f.DecodeField(r)
	if err := r.Err(); err != nil {
		if KindOf(err) == KindTruncated {
			return fmt.Errorf("%w: type %d payload of %d bytes is too short", ErrLengthMismatch, typ, len(payload))
		}
		return fmt.Errorf("tlv type %d: %w", typ, err)
	}
	if left := src.Remaining() + r.Lookahead().Buffered(); left > 0 {
		return fmt.Errorf("%w: type %d left %d of %d bytes", ErrLengthMismatch, typ, left, len(payload))
	}
	return nil
}

// readRecordHeader consumes a record's type and length.
func readRecordHeader(r *Reader) (typ, length uint64, err error) {
	r.ReadBigSize(&typ)
	r.ReadBigSize(&length)
	if err = r.Err(); err != nil {
		if KindOf(err) == KindTruncated {
			return 0, 0, malformedEOF(err)
		}
		return 0, 0, err
	}
	if length > MaxRecordSize {
		return 0, 0, fmt.Errorf("%w: tlv type %d declares %d bytes", ErrMalformed, typ, length)
	}
	return typ, length, nil
}

// readPayload reads exactly length bytes into a pooled buffer. The caller
// returns the buffer with putBuffer.
func readPayload(r io.Reader, typ, length uint64) (*bytes.Buffer, error) {
	buf := getBuffer()
	if _, err := io.CopyN(buf, r, int64(length)); err != nil {
		putBuffer(buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: type %d declares %d bytes: %w", ErrLengthMismatch, typ, length, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	return buf, nil
}

func readRecord(r io.Reader) (Record, error) {
	rd, err := NewReader(r)
	if err != nil {
		return Record{}, err
	}
	typ, length, err := readRecordHeader(rd)
	if err != nil {
		return Record{}, err
	}
	buf, err := readPayload(rd, typ, length)
	if err != nil {
		return Record{}, err
	}
	defer putBuffer(buf)
	rec := Record{Type: typ}
	if buf.Len() > 0 {
		rec.Value = append([]byte(nil), buf.Bytes()...)
	}
	return rec, nil
}

// ReadRecords reads a whole TLV stream until the source ends, enforcing
// strictly increasing types.
func ReadRecords(r io.Reader) ([]Record, error) {
	la := NewLookahead(r)
	var (
		recs []Record
		last uint64
	)
	for {
		typ, ok, err := la.PeekType()
		if err != nil {
			return recs, err
		}
		if !ok {
			return recs, nil
		}
		if len(recs) > 0 && typ <= last {
			return recs, outOfOrder(typ, last)
		}
		rec, err := la.ReadRecord()
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
		last = typ
	}
}

func outOfOrder(typ, last uint64) error {
	return fmt.Errorf("%w: type %d after %d", ErrOutOfOrder, typ, last)
}
