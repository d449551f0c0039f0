package lnmsg

import (
	"io"

	"github.com/oy3o/wiremsg"
)

// Any is one message of the family. It is sealed: only the message types of
// this package implement it.
type Any interface {
	wiremsg.Message
	lnmsg()
}

func (*Init) lnmsg()                  {}
func (*Error) lnmsg()                 {}
func (*Warning) lnmsg()               {}
func (*Ping) lnmsg()                  {}
func (*Pong) lnmsg()                  {}
func (*QueryChannelRange) lnmsg()     {}
func (*GossipTimestampFilter) lnmsg() {}

// Family dispatches every message kind of the package by its tag.
var Family = wiremsg.MustFamily("lightning",
	func() Any { return new(Warning) },
	func() Any { return new(Init) },
	func() Any { return new(Error) },
	func() Any { return new(Ping) },
	func() Any { return new(Pong) },
	func() Any { return new(QueryChannelRange) },
	func() Any { return new(GossipTimestampFilter) },
)

// TypeOf returns the tag of m as a MsgType.
func TypeOf(m Any) MsgType { return MsgType(m.MsgType()) }

// Decode reads one message from r. See wiremsg.Family.Decode.
func Decode(r io.Reader) (Any, error) {
	m, _, err := Family.Decode(r)
	return m, err
}

// Encode writes m to w.
func Encode(w io.Writer, m Any) (int64, error) {
	return Family.Encode(w, m)
}

// Unmarshal decodes one complete message from data.
func Unmarshal(data []byte) (Any, error) {
	return Family.Unmarshal(data)
}

// Marshal returns the encoding of m.
func Marshal(m Any) ([]byte, error) {
	return wiremsg.Marshal(m)
}
