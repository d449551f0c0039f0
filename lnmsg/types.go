// Package lnmsg declares a family of Lightning-style peer messages on top of
// wiremsg: the bindings a schema generator would emit, written by hand.
package lnmsg

import (
	"encoding/hex"
	"fmt"
)

// MsgType is the tag of a message kind in the family.
type MsgType uint16

const (
	TypeWarning               MsgType = 1
	TypeInit                  MsgType = 16
	TypeError                 MsgType = 17
	TypePing                  MsgType = 18
	TypePong                  MsgType = 19
	TypeQueryChannelRange     MsgType = 263
	TypeGossipTimestampFilter MsgType = 265
)

var typeNames = map[MsgType]string{
	TypeWarning:               "warning",
	TypeInit:                  "init",
	TypeError:                 "error",
	TypePing:                  "ping",
	TypePong:                  "pong",
	TypeQueryChannelRange:     "query_channel_range",
	TypeGossipTimestampFilter: "gossip_timestamp_filter",
}

func (t MsgType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint16(t))
}

// ParseMsgType converts a raw tag into a MsgType, reporting whether the tag
// names a message of this family.
func ParseMsgType(v uint16) (MsgType, bool) {
	t := MsgType(v)
	_, ok := typeNames[t]
	return t, ok
}

// ChainHash identifies a chain by the hash of its genesis block.
type ChainHash [32]byte

func (h ChainHash) String() string { return hex.EncodeToString(h[:]) }

func (h ChainHash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// ChannelID identifies a channel. The all-zero ID refers to every channel.
type ChannelID [32]byte

func (c ChannelID) String() string { return hex.EncodeToString(c[:]) }

func (c ChannelID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// IsAll reports whether c is the all-zero ID.
func (c ChannelID) IsAll() bool { return c == ChannelID{} }

// QueryOption is the query_option bitfield of query_channel_range.
type QueryOption uint64

const (
	QueryTimestamps QueryOption = 1 << 0
	QueryChecksums  QueryOption = 1 << 1
)
