package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oy3o/wiremsg"
	"github.com/oy3o/wiremsg/internal/config"
	"github.com/oy3o/wiremsg/lnmsg"
)

// Stats counts what a dump saw.
type Stats struct {
	Messages int
	Skipped  int
}

type dumper struct {
	cfg    config.Config
	log    zerolog.Logger
	family *wiremsg.Family[lnmsg.Any]
}

func newDumper(cfg config.Config, logger zerolog.Logger) *dumper {
	return &dumper{
		cfg:    cfg,
		log:    logger,
		family: lnmsg.Family.WithLogger(logger),
	}
}

// openInput returns the capture as raw bytes.
func openInput(cfg config.Config) (io.Reader, func() error, error) {
	var (
		src     io.Reader = os.Stdin
		closeFn           = func() error { return nil }
	)
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		src, closeFn = f, f.Close
	}
	if cfg.Format == config.FormatRaw {
		return src, closeFn, nil
	}

	text, err := io.ReadAll(src)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	raw, err := decodeHex(string(text))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return bytes.NewReader(raw), closeFn, nil
}

// decodeHex accepts hex with any whitespace between digits.
func decodeHex(text string) ([]byte, error) {
	compact := strings.Join(strings.Fields(text), "")
	raw, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return raw, nil
}

func (d *dumper) dump(src io.Reader) (Stats, error) {
	if d.cfg.Framing == config.FramingU16 {
		return d.dumpFrames(src)
	}
	return d.dumpStream(src)
}

// errTLVNotLast marks a failed decode of a message with a tlv stream in
// unframed input. Its tail runs to the end of the input, so it can only be
// the final message; whatever follows it is read as tlv records.
var errTLVNotLast = errors.New("message with a tlv stream must be last in unframed input")

// dumpStream decodes back-to-back messages with no framing. An unknown tag
// stops the dump since the size of its body cannot be known. A member with
// a tlv stream is only supported as the final message.
func (d *dumper) dumpStream(src io.Reader) (Stats, error) {
	var stats Stats
	rd, err := wiremsg.NewReader(src)
	if err != nil {
		return stats, err
	}
	for {
		var schema *wiremsg.Schema
		if head, err := rd.Lookahead().Peek(2); err == nil {
			schema, _ = d.family.Lookup(wiremsg.Order.Uint16(head))
		}

		msg, n, err := d.family.Decode(rd)
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			index := stats.Messages + stats.Skipped
			if schema != nil && schema.HasTLV() {
				return stats, fmt.Errorf("message %d: %s: %w: %w", index, schema.Name, errTLVNotLast, err)
			}
			return stats, fmt.Errorf("message %d: %w", index, err)
		}
		d.logMessage(msg, n)
		stats.Messages++
	}
}

// dumpFrames decodes messages each preceded by a u16 length.
func (d *dumper) dumpFrames(src io.Reader) (Stats, error) {
	var stats Stats
	rd, err := wiremsg.NewReader(src)
	if err != nil {
		return stats, err
	}
	for index := 0; ; index++ {
		if !rd.More() {
			return stats, rd.Err()
		}
		var size uint16
		rd.ReadUint16(&size)
		if err := rd.Err(); err != nil {
			return stats, fmt.Errorf("frame %d header: %w", index, err)
		}
		if int(size) > d.cfg.MaxFrame {
			return stats, fmt.Errorf("frame %d: %d bytes exceed max_frame %d", index, size, d.cfg.MaxFrame)
		}

		frame := wiremsg.LimitReader(rd, int64(size))
		msg, n, err := d.family.Decode(frame)
		switch {
		case err == nil:
			d.logMessage(msg, n)
			stats.Messages++
		case errors.Is(err, wiremsg.ErrUnknownType) && d.cfg.SkipUnknown:
			d.log.Warn().Int("frame", index).Int("size", int(size)).Err(err).Msg("skipping message")
			stats.Skipped++
		default:
			return stats, fmt.Errorf("frame %d: %s: %w", index, wiremsg.KindOf(err), err)
		}

		if left := frame.Remaining(); left > 0 {
			d.log.Debug().Int("frame", index).Int64("bytes", left).Msg("discarding rest of frame")
			if _, err := frame.Skip(); err != nil {
				return stats, fmt.Errorf("frame %d: %w", index, err)
			}
		}
	}
}

func (d *dumper) logMessage(msg lnmsg.Any, n int64) {
	d.log.Info().
		Stringer("type", lnmsg.TypeOf(msg)).
		Uint16("tag", msg.MsgType()).
		Int64("bytes", n).
		Interface("msg", msg).
		Msg("message")
}
