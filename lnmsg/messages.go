package lnmsg

import (
	"github.com/oy3o/wiremsg"
)

// MaxPongBytes is the largest num_pong_bytes that still asks for a reply.
const MaxPongBytes = 65531

func chainHash(h *ChainHash) wiremsg.Field { return wiremsg.Array(h[:]) }

// Init is the first message sent on a connection.
type Init struct {
	GlobalFeatures []byte
	Features       []byte

	Networks   *[]ChainHash // tlv 1
	RemoteAddr *[]byte      // tlv 3
}

func (*Init) MsgType() uint16 { return uint16(TypeInit) }

func (m *Init) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		wiremsg.Bytes(&m.GlobalFeatures),
		wiremsg.Bytes(&m.Features),
		wiremsg.TLV(1, &m.Networks, func(v *[]ChainHash) wiremsg.Field {
			return wiremsg.ListRest(v, chainHash)
		}),
		wiremsg.TLV(3, &m.RemoteAddr, wiremsg.Rest),
	}
}

// Error tells the peer that something went wrong with a channel, or with
// every channel when ChannelID is all zero.
type Error struct {
	ChannelID ChannelID
	Data      []byte
}

func (*Error) MsgType() uint16 { return uint16(TypeError) }

func (m *Error) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		wiremsg.Array(m.ChannelID[:]),
		wiremsg.Bytes(&m.Data),
	}
}

// Warning has the layout of Error but does not fail the channel.
type Warning struct {
	ChannelID ChannelID
	Data      []byte
}

func (*Warning) MsgType() uint16 { return uint16(TypeWarning) }

func (m *Warning) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		wiremsg.Array(m.ChannelID[:]),
		wiremsg.Bytes(&m.Data),
	}
}

type Ping struct {
	NumPongBytes uint16
	Ignored      []byte
}

func (*Ping) MsgType() uint16 { return uint16(TypePing) }

func (m *Ping) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		wiremsg.Uint16(&m.NumPongBytes),
		wiremsg.Bytes(&m.Ignored),
	}
}

// Reply returns the pong answering m. ok is false when m asks for more than
// MaxPongBytes, in which case no pong is sent.
func (m *Ping) Reply() (pong *Pong, ok bool) {
	if m.NumPongBytes > MaxPongBytes {
		return nil, false
	}
	return &Pong{Ignored: make([]byte, m.NumPongBytes)}, true
}

type Pong struct {
	Ignored []byte
}

func (*Pong) MsgType() uint16 { return uint16(TypePong) }

func (m *Pong) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		wiremsg.Bytes(&m.Ignored),
	}
}

// QueryChannelRange asks for the channels opened in a range of blocks.
type QueryChannelRange struct {
	ChainHash      ChainHash
	FirstBlocknum  uint32
	NumberOfBlocks uint32

	QueryOption *QueryOption // tlv 1
}

func (*QueryChannelRange) MsgType() uint16 { return uint16(TypeQueryChannelRange) }

func (m *QueryChannelRange) Fields() []wiremsg.Field {
	return []wiremsg.Field{
		chainHash(&m.ChainHash),
		wiremsg.Uint32(&m.FirstBlocknum),
		wiremsg.Uint32(&m.NumberOfBlocks),
		wiremsg.TLV(1, &m.QueryOption, wiremsg.BigSize[QueryOption]),
	}
}

// GossipTimestampFilter limits the gossip a peer relays to a time window.
// Its layout is fixed, so it is bound as a single field.
type GossipTimestampFilter struct {
	ChainHash      ChainHash
	FirstTimestamp uint32
	TimestampRange uint32
}

func (*GossipTimestampFilter) MsgType() uint16 { return uint16(TypeGossipTimestampFilter) }

func (m *GossipTimestampFilter) Fields() []wiremsg.Field {
	return []wiremsg.Field{wiremsg.Fixed(m)}
}
