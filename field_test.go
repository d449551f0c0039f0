package wiremsg

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeField(t *testing.T, f Field) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	f.EncodeField(w)
	_, err = w.Result()
	require.NoError(t, err)
	return buf.Bytes()
}

func encodeFieldErr(f Field) error {
	w, _ := NewWriter(&bytes.Buffer{})
	f.EncodeField(w)
	_, err := w.Result()
	return err
}

func decodeField(data []byte, f Field) error {
	r, _ := NewReader(bytes.NewReader(data))
	f.DecodeField(r)
	return r.Err()
}

func TestBigSize_Encoding(t *testing.T) {
	cases := []struct {
		value uint64
		wire  []byte
	}{
		{0, []byte{0x00}},
		{252, []byte{0xfc}},
		{253, []byte{0xfd, 0x00, 0xfd}},
		{0xffff, []byte{0xfd, 0xff, 0xff}},
		{0x10000, []byte{0xfe, 0x00, 0x01, 0x00, 0x00}},
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tc := range cases {
		v := tc.value
		assert.Equal(t, tc.wire, encodeField(t, BigSize(&v)), "encode %d", tc.value)
		assert.Equal(t, len(tc.wire), BigSizeLen(tc.value))

		var got uint64
		require.NoError(t, decodeField(tc.wire, BigSize(&got)))
		assert.Equal(t, tc.value, got)
	}
}

func TestBigSize_NonCanonical(t *testing.T) {
	for _, wire := range [][]byte{
		{0xfd, 0x00, 0xfc},
		{0xfe, 0x00, 0x00, 0xff, 0xff},
		{0xff, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff},
	} {
		var v uint64
		err := decodeField(wire, BigSize(&v))
		assert.ErrorIs(t, err, ErrNonCanonical, "% x", wire)
		assert.Equal(t, KindMalformed, KindOf(err))
	}
}

func TestBigSize_Overflow(t *testing.T) {
	var v uint8
	err := decodeField([]byte{0xfd, 0x01, 0x00}, BigSize(&v))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Zero(t, v)
}

func TestBigSize_Truncated(t *testing.T) {
	var v uint64
	err := decodeField([]byte{0xfe, 0x00}, BigSize(&v))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestTruncated(t *testing.T) {
	cases := []struct {
		value uint32
		wire  []byte
	}{
		{0, nil},
		{1, []byte{0x01}},
		{0x0100, []byte{0x01, 0x00}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff}},
	}
	for _, tc := range cases {
		v := tc.value
		wire := encodeField(t, Truncated(&v))
		assert.Equal(t, len(tc.wire), len(wire))
		if len(tc.wire) > 0 {
			assert.Equal(t, tc.wire, wire)
		}

		got := uint32(0xdead)
		require.NoError(t, decodeField(tc.wire, Truncated(&got)))
		assert.Equal(t, tc.value, got)
	}

	t.Run("LeadingZero", func(t *testing.T) {
		var v uint32
		assert.ErrorIs(t, decodeField([]byte{0x00, 0x01}, Truncated(&v)), ErrNonCanonical)
	})

	t.Run("TooWide", func(t *testing.T) {
		var v uint16
		assert.ErrorIs(t, decodeField([]byte{0x01, 0x00, 0x00}, Truncated(&v)), ErrMalformed)
	})
}

func TestBool(t *testing.T) {
	v := true
	assert.Equal(t, []byte{0x01}, encodeField(t, Bool(&v)))
	assert.ErrorIs(t, decodeField([]byte{0x02}, Bool(&v)), ErrMalformed)
}

type color uint16

const (
	colorRed  color = 1
	colorBlue color = 2
)

func TestEnum(t *testing.T) {
	c := colorBlue
	assert.Equal(t, []byte{0x00, 0x02}, encodeField(t, Enum(&c, colorRed, colorBlue)))

	var got color
	require.NoError(t, decodeField([]byte{0x00, 0x01}, Enum(&got, colorRed, colorBlue)))
	assert.Equal(t, colorRed, got)

	assert.ErrorIs(t, decodeField([]byte{0x00, 0x03}, Enum(&got, colorRed, colorBlue)), ErrMalformed)
	assert.Equal(t, colorRed, got, "rejected value leaves the field unchanged")

	bad := color(7)
	assert.ErrorIs(t, encodeFieldErr(Enum(&bad, colorRed, colorBlue)), ErrMalformed)
}

func TestBytes(t *testing.T) {
	b := []byte{0xAA, 0xBB}
	assert.Equal(t, []byte{0x00, 0x02, 0xAA, 0xBB}, encodeField(t, Bytes(&b)))

	var got []byte
	require.NoError(t, decodeField([]byte{0x00, 0x00}, Bytes(&got)))
	assert.Nil(t, got)

	assert.ErrorIs(t, decodeField([]byte{0x00, 0x03, 0x01}, Bytes(&got)), ErrTruncated)

	big := make([]byte, MaxVarBytes+1)
	assert.ErrorIs(t, encodeFieldErr(Bytes(&big)), ErrMalformed)
}

func TestArray(t *testing.T) {
	var id [4]byte
	require.NoError(t, decodeField([]byte{1, 2, 3, 4, 5}, Array(id[:])))
	assert.Equal(t, [4]byte{1, 2, 3, 4}, id)
	assert.ErrorIs(t, decodeField([]byte{1, 2}, Array(id[:])), ErrTruncated)
}

func TestList(t *testing.T) {
	items := []uint16{1, 2}
	wire := encodeField(t, List(&items, Uint16))
	assert.Equal(t, []byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x02}, wire)

	var got []uint16
	require.NoError(t, decodeField(wire, List(&got, Uint16)))
	assert.Equal(t, items, got)

	got = []uint16{9}
	require.NoError(t, decodeField([]byte{0x00, 0x00}, List(&got, Uint16)))
	assert.Nil(t, got)

	assert.ErrorIs(t, decodeField([]byte{0x00, 0x02, 0x00, 0x01}, List(&got, Uint16)), ErrTruncated)
}

func TestListRest(t *testing.T) {
	var got []uint16
	require.NoError(t, decodeField([]byte{0x00, 0x01, 0x00, 0x02}, ListRest(&got, Uint16)))
	assert.Equal(t, []uint16{1, 2}, got)

	got = nil
	assert.ErrorIs(t, decodeField([]byte{0x00, 0x01, 0x00}, ListRest(&got, Uint16)), ErrTruncated)
	assert.Nil(t, got)
}

func TestStruct(t *testing.T) {
	var (
		a uint8  = 1
		b uint32 = 2
	)
	wire := encodeField(t, Struct(Uint8(&a), Uint32(&b)))
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x02}, wire)

	var x uint8
	var y uint32
	require.NoError(t, decodeField(wire, Struct(Uint8(&x), Uint32(&y))))
	assert.Equal(t, a, x)
	assert.Equal(t, b, y)
}

// A simple fixed-size struct for testing Fixed.
type mockPayload struct {
	ID   uint32
	Data [4]byte
}

type mockVariable struct {
	Data []byte
}

func TestFixed(t *testing.T) {
	p := mockPayload{ID: 0xDEADBEEF, Data: [4]byte{1, 2, 3, 4}}
	wire := encodeField(t, Fixed(&p))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 1, 2, 3, 4}, wire)

	var got mockPayload
	require.NoError(t, decodeField(wire, Fixed(&got)))
	assert.Equal(t, p, got)

	assert.ErrorIs(t, decodeField(wire[:7], Fixed(&got)), ErrTruncated)
}

func TestFixed_Variable(t *testing.T) {
	v := mockVariable{Data: []byte{1}}
	assert.Equal(t, -1, FixedSize[mockVariable]())
	assert.ErrorIs(t, encodeFieldErr(Fixed(&v)), ErrSchema)
	assert.ErrorIs(t, decodeField([]byte{1}, Fixed(&v)), ErrSchema)
}

func TestFixedSize_Cache(t *testing.T) {
	expectedSize := 8 // uint32(4) + [4]byte(4)
	assert.Equal(t, expectedSize, FixedSize[mockPayload]())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, expectedSize, FixedSize[mockPayload]())
		}()
	}
	wg.Wait()
}
