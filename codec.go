// Package wiremsg implements the runtime of a binary wire-message format:
// a 16-bit big-endian type tag, a fixed sequence of fields, and an optional
// tail of TLV (type/length/value) records in strictly increasing type order.
//
// Message types describe themselves by returning their fields, bound to the
// receiver, in declaration order:
//
//	type Ping struct {
//		NumPongBytes uint16
//		Ignored      []byte
//	}
//
//	func (*Ping) MsgType() uint16 { return 18 }
//
//	func (m *Ping) Fields() []wiremsg.Field {
//		return []wiremsg.Field{
//			wiremsg.Uint16(&m.NumPongBytes),
//			wiremsg.Bytes(&m.Ignored),
//		}
//	}
//
// Optional fields are TLV extensions and come last:
//
//	wiremsg.TLV(1, &m.Networks, func(v *[]ChainHash) wiremsg.Field { ... })
//
// The layout is checked once per type (see SchemaOf); Encode, Decode and
// Family then run without reflection over the bound fields.
package wiremsg

// Field encodes and decodes one value with a fixed serialization: no tag and
// no length prefix beyond what the value's own type defines. Errors are
// latched on the Writer/Reader.
type Field interface {
	EncodeField(w *Writer)
	DecodeField(r *Reader)
}

// Extension is an optional Field that lives in the TLV tail of a message.
// EncodeField and DecodeField handle the record payload only.
type Extension interface {
	Field
	// ExtType is the TLV type assigned to the field.
	ExtType() uint64
	// Present reports whether the field holds a value.
	Present() bool
	// Clear marks the field absent.
	Clear()
}

// Message is a tagged wire message.
type Message interface {
	// MsgType returns the 16-bit tag of the message kind. It must not
	// depend on the receiver's contents.
	MsgType() uint16
	// Fields returns the message's fields bound to the receiver: required
	// fields first, then Extensions in increasing TLV type order.
	Fields() []Field
}
