package wiremsg

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type testPing struct {
	NumPongBytes uint16
	Ignored      []byte
}

func (*testPing) MsgType() uint16 { return 0x0012 }

func (m *testPing) Fields() []Field {
	return []Field{Uint16(&m.NumPongBytes), Bytes(&m.Ignored)}
}

// optMsg carries two optional fields, tlv 1 and tlv 3.
type optMsg struct {
	ID    uint32
	Count *uint64
	Note  *[]byte
}

func (*optMsg) MsgType() uint16 { return 0x0100 }

func (m *optMsg) Fields() []Field {
	return []Field{
		Uint32(&m.ID),
		TLV(1, &m.Count, BigSize[uint64]),
		TLV(3, &m.Note, Rest),
	}
}

type badOrderMsg struct{ A, B *uint8 }

func (*badOrderMsg) MsgType() uint16 { return 0x0200 }

func (m *badOrderMsg) Fields() []Field {
	return []Field{TLV(3, &m.A, Uint8), TLV(1, &m.B, Uint8)}
}

type dupTLVMsg struct{ A, B *uint8 }

func (*dupTLVMsg) MsgType() uint16 { return 0x0201 }

func (m *dupTLVMsg) Fields() []Field {
	return []Field{TLV(1, &m.A, Uint8), TLV(1, &m.B, Uint8)}
}

type lateRequiredMsg struct {
	A *uint8
	B uint8
}

func (*lateRequiredMsg) MsgType() uint16 { return 0x0202 }

func (m *lateRequiredMsg) Fields() []Field {
	return []Field{TLV(1, &m.A, Uint8), Uint8(&m.B)}
}

type nilFieldMsg struct{}

func (*nilFieldMsg) MsgType() uint16 { return 0x0203 }
func (*nilFieldMsg) Fields() []Field { return []Field{nil} }

var (
	pingWire = []byte{0x00, 0x12, 0x00, 0x0A, 0x00, 0x00}
	optHead  = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x07}
)

func withTail(head []byte, tail ...byte) []byte {
	return append(append([]byte(nil), head...), tail...)
}

// --- Message Test Suite ---

type MessageTestSuite struct {
	suite.Suite
}

func (s *MessageTestSuite) TestPingWire() {
	data, err := Marshal(&testPing{NumPongBytes: 10})
	s.Require().NoError(err)
	s.Assert().Equal(pingWire, data)

	var got testPing
	s.Require().NoError(Unmarshal(pingWire, &got))
	s.Assert().Equal(testPing{NumPongBytes: 10}, got)

	size, err := Size(&testPing{NumPongBytes: 10, Ignored: []byte{1, 2}})
	s.Require().NoError(err)
	s.Assert().Equal(8, size)
}

func (s *MessageTestSuite) TestRoundTripWithExtensions() {
	in := &optMsg{ID: 7, Count: Ptr[uint64](5), Note: &[]byte{0xAA, 0xBB}}
	data, err := Marshal(in)
	s.Require().NoError(err)
	s.Assert().Equal(withTail(optHead, 0x01, 0x01, 0x05, 0x03, 0x02, 0xAA, 0xBB), data)

	var out optMsg
	s.Require().NoError(Unmarshal(data, &out))
	s.Assert().Equal(in, &out)
}

func (s *MessageTestSuite) TestAbsentExtensionsAreNotWritten() {
	data, err := Marshal(&optMsg{ID: 7})
	s.Require().NoError(err)
	s.Assert().Equal(optHead, data)

	out := optMsg{Count: Ptr[uint64](9)}
	s.Require().NoError(Unmarshal(data, &out))
	s.Assert().Nil(out.Count, "decoding clears stale extensions")
	s.Assert().Nil(out.Note)
}

func (s *MessageTestSuite) TestSkipsToLaterExtension() {
	var out optMsg
	s.Require().NoError(Unmarshal(withTail(optHead, 0x03, 0x01, 0xEE), &out))
	s.Assert().Nil(out.Count)
	s.Require().NotNil(out.Note)
	s.Assert().Equal([]byte{0xEE}, *out.Note)
}

func (s *MessageTestSuite) TestUndeclaredRecordsAreSkipped() {
	var out optMsg
	data := withTail(optHead, 0x00, 0x01, 0xFF, 0x02, 0x00, 0x03, 0x00, 0x07, 0x02, 0x01, 0x02)
	s.Require().NoError(Unmarshal(data, &out))
	s.Assert().Nil(out.Count)
	s.Require().NotNil(out.Note)
	s.Assert().Empty(*out.Note)
}

func (s *MessageTestSuite) TestOutOfOrder() {
	cases := map[string][]byte{
		"Repeated":   withTail(optHead, 0x02, 0x00, 0x05, 0x00, 0x05, 0x00),
		"Decreasing": withTail(optHead, 0x03, 0x00, 0x01, 0x00),
		"Declared":   withTail(optHead, 0x01, 0x01, 0x05, 0x01, 0x01, 0x06),
	}
	for name, data := range cases {
		s.Run(name, func() {
			var out optMsg
			err := Unmarshal(data, &out)
			s.Require().ErrorIs(err, ErrOutOfOrder)
			s.Assert().Equal(KindOutOfOrder, KindOf(err))
		})
	}
}

func (s *MessageTestSuite) TestMalformedTail() {
	cases := map[string][]byte{
		"ShortHeader":    withTail(optHead, 0x01),
		"ShortPayload":   withTail(optHead, 0x01, 0x02, 0x05),
		"PayloadLeft":    withTail(optHead, 0x01, 0x02, 0x05, 0x06),
		"NonCanonical":   withTail(optHead, 0xfd, 0x00, 0x01, 0x00),
		"LengthTooLarge": withTail(optHead, 0x05, 0xfe, 0x00, 0x01, 0x00, 0x00),
	}
	for name, data := range cases {
		s.Run(name, func() {
			var out optMsg
			err := Unmarshal(data, &out)
			s.Require().ErrorIs(err, ErrMalformed)
			s.Assert().Equal(KindMalformed, KindOf(err))
		})
	}
}

func (s *MessageTestSuite) TestTruncatedRequiredFields() {
	full, err := Marshal(&testPing{NumPongBytes: 10, Ignored: []byte{1, 2, 3}})
	s.Require().NoError(err)

	for cut := 1; cut < len(full); cut++ {
		var out testPing
		_, err := Decode(bytes.NewReader(full[:cut]), &out, true)
		s.Require().Error(err, "cut at %d", cut)
		s.Assert().ErrorIs(err, ErrTruncated, "cut at %d", cut)
		s.Assert().ErrorIs(err, io.ErrUnexpectedEOF, "cut at %d", cut)

		s.Assert().ErrorIs(Unmarshal(full[:cut], &out), ErrTruncated, "cut at %d", cut)
	}

	var out testPing
	_, err = Decode(bytes.NewReader(nil), &out, true)
	s.Assert().Equal(io.EOF, err, "nothing at all is a clean end of stream")
	s.Assert().Equal(KindIOFailure, KindOf(err))
	s.Assert().ErrorIs(Unmarshal(nil, &out), ErrTruncated)
}

func (s *MessageTestSuite) TestTypeMismatch() {
	var out optMsg
	_, err := Decode(bytes.NewReader(pingWire), &out, true)
	s.Require().ErrorIs(err, ErrTypeMismatch)
	s.Assert().Equal(KindInvalidData, KindOf(err))

	s.Assert().ErrorIs(Unmarshal(pingWire, &out), ErrTypeMismatch)
}

func (s *MessageTestSuite) TestDecodeWithoutTag() {
	var out testPing
	n, err := Decode(bytes.NewReader(pingWire[2:]), &out, false)
	s.Require().NoError(err)
	s.Assert().EqualValues(4, n)
	s.Assert().EqualValues(10, out.NumPongBytes)
}

func (s *MessageTestSuite) TestStreamStopsAfterRequiredFields() {
	stream := append(append([]byte(nil), pingWire...), 0x00, 0x12, 0x00, 0x01, 0x00, 0x01, 0x09)
	src := bytes.NewReader(stream)

	var first, second testPing
	n, err := Decode(src, &first, true)
	s.Require().NoError(err)
	s.Assert().EqualValues(len(pingWire), n)
	s.Assert().Equal(7, src.Len(), "the next message is left unread")

	_, err = Decode(src, &second, true)
	s.Require().NoError(err)
	s.Assert().Equal(testPing{NumPongBytes: 1, Ignored: []byte{9}}, second)

	_, err = Decode(src, &second, true)
	s.Assert().Equal(io.EOF, err)
}

func (s *MessageTestSuite) TestTrailingData() {
	var out testPing
	s.Require().NoError(Unmarshal(withTail(pingWire, 0x01, 0x01, 0xFF), &out),
		"a well-formed tail is accepted and ignored")

	err := Unmarshal(withTail(pingWire, 0x01), &out)
	s.Require().ErrorIs(err, ErrTrailingData)
	s.Assert().Equal(KindMalformed, KindOf(err))

	err = Unmarshal(withTail(pingWire, 0x03, 0x00, 0x01, 0x00), &out)
	s.Require().ErrorIs(err, ErrTrailingData)
	s.Assert().ErrorIs(err, ErrOutOfOrder)
}

func (s *MessageTestSuite) TestMarshalTo() {
	buf := make([]byte, 6)
	n, err := MarshalTo(&testPing{NumPongBytes: 10}, buf)
	s.Require().NoError(err)
	s.Assert().Equal(6, n)
	s.Assert().Equal(pingWire, buf)

	_, err = MarshalTo(&testPing{NumPongBytes: 10}, buf[:5])
	s.Assert().ErrorIs(err, io.ErrShortWrite)

	// Spare capacity beyond len(p) is not written to.
	backing := []byte{0, 0, 0, 0, 0, 0xEE}
	n, err = MarshalTo(&testPing{NumPongBytes: 10}, backing[:5])
	s.Assert().ErrorIs(err, io.ErrShortWrite)
	s.Assert().LessOrEqual(n, 5)
	s.Assert().Equal(byte(0xEE), backing[5])
}

func (s *MessageTestSuite) TestNilMessage() {
	var ping *testPing

	schema, err := SchemaOf(ping)
	s.Require().NoError(err, "a nil pointer still names its type")
	s.Assert().EqualValues(0x0012, schema.Type)

	_, err = Marshal(ping)
	s.Assert().ErrorIs(err, ErrNilMessage)
	s.Assert().Equal(KindInvalidData, KindOf(err))

	_, err = Decode(bytes.NewReader(pingWire), ping, true)
	s.Assert().ErrorIs(err, ErrNilMessage)

	s.Assert().ErrorIs(Unmarshal(pingWire, ping), ErrNilMessage)
}

// TestMessage runs the MessageTestSuite.
func TestMessage(t *testing.T) {
	suite.Run(t, new(MessageTestSuite))
}

// --- Schema ---

func TestSchemaOf(t *testing.T) {
	s, err := SchemaOf(&optMsg{})
	require.NoError(t, err)
	assert.EqualValues(t, 0x0100, s.Type)
	assert.Equal(t, 1, s.Required)
	assert.Equal(t, []uint64{1, 3}, s.Extensions)
	assert.True(t, s.HasTLV())
	assert.Contains(t, s.String(), "tlv=[1 3]")

	again, err := SchemaOf(&optMsg{ID: 1})
	require.NoError(t, err)
	assert.Same(t, s, again, "schemas are built once per type")

	ping, err := SchemaOf(&testPing{})
	require.NoError(t, err)
	assert.False(t, ping.HasTLV())
}

func TestSchemaViolations(t *testing.T) {
	for name, m := range map[string]Message{
		"Decreasing":   &badOrderMsg{},
		"Duplicate":    &dupTLVMsg{},
		"LateRequired": &lateRequiredMsg{},
		"NilField":     &nilFieldMsg{},
		"NilMessage":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := SchemaOf(m)
			assert.ErrorIs(t, err, ErrSchema)
			if m == nil {
				return
			}
			_, err = Marshal(m)
			assert.ErrorIs(t, err, ErrSchema)
			_, err = Decode(bytes.NewReader([]byte{0x02, 0x00}), m, true)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}

	assert.ErrorIs(t, Register(&testPing{}, &badOrderMsg{}), ErrSchema)
	assert.NotPanics(t, func() { MustRegister(&testPing{}, &optMsg{}) })
	assert.Panics(t, func() { MustRegister(&lateRequiredMsg{}) })
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{nil, KindNone},
		{ErrTruncated, KindTruncated},
		{truncated(io.EOF), KindTruncated},
		{ErrNonCanonical, KindMalformed},
		{ErrLengthMismatch, KindMalformed},
		{ErrTrailingData, KindMalformed},
		{outOfOrder(5, 5), KindOutOfOrder},
		{ErrUnknownType, KindInvalidData},
		{ErrTypeMismatch, KindInvalidData},
		{io.ErrClosedPipe, KindIOFailure},
		{io.EOF, KindIOFailure},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), "%v", tc.err)
	}
	assert.Equal(t, "out-of-order", KindOutOfOrder.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
