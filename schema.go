package wiremsg

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// Schema is the static layout of one message type: its tag, how many
// required fields lead the message, and the TLV types of its extensions.
// It is derived once per type and never mutated afterwards.
type Schema struct {
	Name       string
	Type       uint16
	Required   int
	Extensions []uint64
}

// HasTLV reports whether the message declares a TLV tail.
func (s *Schema) HasTLV() bool { return len(s.Extensions) > 0 }

func (s *Schema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(0x%04x) required=%d", s.Name, s.Type, s.Required)
	if s.HasTLV() {
		fmt.Fprintf(&b, " tlv=%v", s.Extensions)
	}
	return b.String()
}

type schemaEntry struct {
	schema *Schema
	err    error
}

// schemaCache holds the outcome of validating each concrete message type,
// failures included, so a bad declaration costs one check.
var schemaCache = xsync.NewMap[reflect.Type, schemaEntry]()

func schemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// SchemaOf returns the validated schema of m's concrete type, building it on
// first use. m is only used as a prototype: its field values are ignored, and
// a nil pointer of a message type is enough.
func SchemaOf(m Message) (*Schema, error) {
	if m == nil {
		return nil, schemaErrorf("nil message")
	}
	typ := reflect.TypeOf(m)
	entry, _ := schemaCache.LoadOrCompute(typ, func() (schemaEntry, bool) {
		proto := m
		if isNil(m) {
			proto = reflect.New(typ.Elem()).Interface().(Message)
		}
		s, err := buildSchema(typ, proto)
		return schemaEntry{schema: s, err: err}, false
	})
	return entry.schema, entry.err
}

// Register validates the schema of each prototype, for callers that want
// layout mistakes reported at startup rather than on first use.
func Register(protos ...Message) error {
	for _, m := range protos {
		if _, err := SchemaOf(m); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error. It is intended for
// package initialization.
func MustRegister(protos ...Message) {
	if err := Register(protos...); err != nil {
		panic(err)
	}
}

// isNil reports whether m is nil or a nil pointer, which has no fields to
// bind.
func isNil(m Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func buildSchema(typ reflect.Type, m Message) (*Schema, error) {
	name := typ.String()
	s := &Schema{Name: name, Type: m.MsgType()}
	for i, f := range m.Fields() {
		if f == nil {
			return nil, schemaErrorf("%s: field %d is nil", name, i)
		}
		ext, ok := f.(Extension)
		if !ok {
			if len(s.Extensions) > 0 {
				return nil, schemaErrorf("%s: required field %d after the tlv stream", name, i)
			}
			s.Required++
			continue
		}
		if n := len(s.Extensions); n > 0 && ext.ExtType() <= s.Extensions[n-1] {
			return nil, schemaErrorf("%s: tlv type %d after %d, types must be strictly increasing",
				name, ext.ExtType(), s.Extensions[n-1])
		}
		s.Extensions = append(s.Extensions, ext.ExtType())
	}
	return s, nil
}
