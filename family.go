package wiremsg

import (
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/rs/zerolog"
)

// Family is a closed set of message kinds decoded through one entry point.
// M is usually a sealed interface implemented by every member, so a decoded
// value holds exactly one concrete message. A Family is read-only once built
// and safe for concurrent use.
type Family[M Message] struct {
	name    string
	members map[uint16]member[M]
	types   []uint16
	log     zerolog.Logger
}

type member[M Message] struct {
	schema *Schema
	typ    reflect.Type
	new    func() M
}

// NewFamily builds a family from one constructor per member. Each member's
// schema is validated, and two members sharing a tag is an error.
func NewFamily[M Message](name string, ctors ...func() M) (*Family[M], error) {
	f := &Family[M]{
		name:    name,
		members: make(map[uint16]member[M], len(ctors)),
		log:     zerolog.Nop(),
	}
	for _, ctor := range ctors {
		proto := ctor()
		s, err := SchemaOf(proto)
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", name, err)
		}
		if prev, ok := f.members[s.Type]; ok {
			return nil, schemaErrorf("family %s: tag 0x%04x used by %s and %s", name, s.Type, prev.schema.Name, s.Name)
		}
		f.members[s.Type] = member[M]{schema: s, typ: reflect.TypeOf(proto), new: ctor}
		f.types = append(f.types, s.Type)
	}
	slices.Sort(f.types)
	return f, nil
}

// MustFamily is like NewFamily but panics on error. It is intended for
// package-level family declarations.
func MustFamily[M Message](name string, ctors ...func() M) *Family[M] {
	f, err := NewFamily(name, ctors...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithLogger returns a copy of f that reports unknown tags and decode
// failures to logger.
func (f *Family[M]) WithLogger(logger zerolog.Logger) *Family[M] {
	c := *f
	c.log = logger.With().Str("family", f.name).Logger()
	return &c
}

func (f *Family[M]) Name() string { return f.name }

// Types returns the member tags in increasing order.
func (f *Family[M]) Types() []uint16 { return slices.Clone(f.types) }

// Lookup returns the schema of the member with the given tag.
func (f *Family[M]) Lookup(tag uint16) (*Schema, bool) {
	m, ok := f.members[tag]
	return m.schema, ok
}

// New returns a zero value of the member with the given tag.
func (f *Family[M]) New(tag uint16) (M, bool) {
	m, ok := f.members[tag]
	if !ok {
		var zero M
		return zero, false
	}
	return m.new(), true
}

// Encode writes msg through its own message codec. The family adds no header:
// the member's tag is the first thing on the wire.
func (f *Family[M]) Encode(w io.Writer, msg M) (int64, error) {
	mem, err := f.memberOf(msg)
	if err != nil {
		return 0, err
	}
	wr, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	encodeMessage(wr, msg, mem.schema)
	return wr.Result()
}

func (f *Family[M]) memberOf(msg M) (member[M], error) {
	if isNil(msg) {
		return member[M]{}, fmt.Errorf("%w: nil %s message", ErrNotMember, f.name)
	}
	mem, ok := f.members[msg.MsgType()]
	if !ok || mem.typ != reflect.TypeOf(msg) {
		return member[M]{}, fmt.Errorf("%w: %T in %s", ErrNotMember, msg, f.name)
	}
	return mem, nil
}

// Decode reads the tag once and decodes the rest into the member declared
// with it. An unknown tag fails with ErrUnknownType after consuming exactly
// the two tag bytes, so the caller can skip the message and carry on. A clean
// end of r before the tag is io.EOF. Decode follows the stream rules of
// Decode for the member.
func (f *Family[M]) Decode(r io.Reader) (M, int64, error) {
	rd, err := NewReader(r)
	if err != nil {
		var zero M
		return zero, 0, err
	}
	msg, err := f.decode(rd, func(r *Reader, m M, s *Schema) error {
		return decodeBody(r, m, s, s.HasTLV())
	})
	return msg, rd.Count(), err
}

// Unmarshal decodes one complete member from data, under the rules of
// Unmarshal.
func (f *Family[M]) Unmarshal(data []byte) (M, error) {
	rd, _ := NewReader(NewBytesReader(data))
	msg, err := f.decode(rd, func(r *Reader, m M, s *Schema) error {
		return unmarshalBody(r, m, s, false)
	})
	if err == io.EOF {
		err = truncated(err)
	}
	return msg, err
}

func (f *Family[M]) decode(r *Reader, body func(*Reader, M, *Schema) error) (M, error) {
	var zero M
	tag, err := readMsgType(r)
	if err != nil {
		return zero, err
	}
	mem, ok := f.members[tag]
	if !ok {
		f.log.Debug().Uint16("type", tag).Msg("unknown message type")
		return zero, fmt.Errorf("%w: 0x%04x in %s", ErrUnknownType, tag, f.name)
	}
	msg := mem.new()
	if err := body(r, msg, mem.schema); err != nil {
		f.log.Debug().Err(err).Str("msg", mem.schema.Name).Uint16("type", tag).
			Stringer("kind", KindOf(err)).Msg("decode failed")
		return zero, err
	}
	return msg, nil
}
