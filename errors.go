package wiremsg

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("wiremsg: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrAlreadyBuffered indicates that NewWriterSize was called with an already-buffered
	// writer whose buffer is smaller than requested.
	ErrAlreadyBuffered = errors.New("wiremsg: writer is already buffered")

	// ErrPeekTooLarge indicates a Peek larger than the lookahead window.
	ErrPeekTooLarge = errors.New("wiremsg: peek exceeds lookahead window")

	// ErrInvalidRead indicates that an io.Reader returned an invalid (negative or outbound) count from Read.
	ErrInvalidRead = errors.New("wiremsg: reader returned invalid count from Read")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("wiremsg: writer returned invalid count from Write")

	// ErrDiscardNegative indicates a Discard operation was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("wiremsg: cannot discard negative number of bytes")

	// ErrTruncated indicates that the source ended before all bytes a field
	// requires could be read.
	ErrTruncated = errors.New("wiremsg: truncated data")

	// ErrMalformed indicates a value that fails domain validation, or a TLV
	// record whose declared length does not match its payload.
	ErrMalformed = errors.New("wiremsg: malformed data")

	// ErrOutOfOrder indicates a TLV record whose type is not strictly greater
	// than the type of the record before it.
	ErrOutOfOrder = errors.New("wiremsg: tlv records out of order")

	// ErrInvalidData indicates a message type tag that cannot be accepted.
	ErrInvalidData = errors.New("wiremsg: invalid data")

	// ErrSchema indicates a message or family declaration that violates the
	// layout rules. It is reported when the schema is built, never per call.
	ErrSchema = errors.New("wiremsg: invalid schema")
)

var (
	ErrUnknownType    = fmt.Errorf("%w: unknown message type", ErrInvalidData)
	ErrTypeMismatch   = fmt.Errorf("%w: message type mismatch", ErrInvalidData)
	ErrNotMember      = fmt.Errorf("%w: message is not a family member", ErrInvalidData)
	ErrNilMessage     = fmt.Errorf("%w: nil message", ErrInvalidData)
	ErrNonCanonical   = fmt.Errorf("%w: non-canonical encoding", ErrMalformed)
	ErrLengthMismatch = fmt.Errorf("%w: tlv length mismatch", ErrMalformed)
)

// Kind classifies a codec error.
type Kind uint8

const (
	KindNone Kind = iota
	KindTruncated
	KindMalformed
	KindOutOfOrder
	KindInvalidData
	KindIOFailure
)

var kindNames = [...]string{"none", "truncated", "malformed", "out-of-order", "invalid-data", "io-failure"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindOf reports which kind err belongs to. Errors produced outside the codec
// (transport failures, io.EOF at a message boundary) are KindIOFailure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrOutOfOrder):
		return KindOutOfOrder
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrTruncated):
		return KindTruncated
	case errors.Is(err, ErrInvalidData):
		return KindInvalidData
	default:
		return KindIOFailure
	}
}

// truncated turns a short read into ErrTruncated while keeping
// io.ErrUnexpectedEOF in the chain. Other errors pass through unchanged.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %w", ErrTruncated, io.ErrUnexpectedEOF)
	}
	return err
}
