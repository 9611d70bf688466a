package dtc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	headerSize = 4
	// maxFrameSize is the largest encodable frame, bounded by the u16
	// length prefix.
	maxFrameSize = 1<<16 - 1
	// encodingFrameSize is the fixed on-wire size of the encoding
	// negotiation record, header included.
	encodingFrameSize = 16
)

var (
	// ErrBadFrame reports a length prefix smaller than the header itself.
	ErrBadFrame = errors.New("dtc: frame length below header size")
	// ErrBadHandshake reports a malformed encoding negotiation record.
	ErrBadHandshake = errors.New("dtc: malformed encoding request")

	errWireType = errors.New("dtc: unexpected wire type for field")
)

// Message is a protobuf payload that knows its framed type id.
type Message interface {
	Type() MessageType
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Frame is one decoded wire message. Payload aliases the decoder's buffer
// and is only valid until the next Write.
type Frame struct {
	Type    MessageType
	Payload []byte
}

// EncodeFrame frames msg for the wire: u16 little-endian total length
// (header included), u16 little-endian type id, payload. The result is
// written in a single call so no interleaving can occur between header and
// payload.
func EncodeFrame(msg Message) ([]byte, error) {
	return encodeFrame(msg.Type(), msg.Marshal())
}

func encodeFrame(typ MessageType, payload []byte) ([]byte, error) {
	total := headerSize + len(payload)
	if total > maxFrameSize {
		return nil, fmt.Errorf("dtc: message type %d payload of %d bytes exceeds frame limit", typ, len(payload))
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(typ))
	copy(buf[headerSize:], payload)
	return buf, nil
}

// Decoder reassembles frames from a TCP byte stream. One buffer is reused
// across chunks; several frames arriving in a single chunk are yielded one
// by one without copying.
type Decoder struct {
	buf []byte
	off int
}

// Write appends a received chunk to the pending buffer. Consumed bytes from
// earlier frames are reclaimed before appending so the buffer stays bounded
// by the largest partial frame.
func (d *Decoder) Write(p []byte) {
	if d.off > 0 {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
}

// Need reports how many buffered bytes the pending frame requires. Zero
// means even the length prefix is incomplete.
func (d *Decoder) Need() int {
	if len(d.buf)-d.off < 2 {
		return 0
	}
	return int(binary.LittleEndian.Uint16(d.buf[d.off:]))
}

// Next yields the next complete frame, with ok=false when more bytes are
// required. A length prefix below the header size poisons the stream and
// returns ErrBadFrame.
func (d *Decoder) Next() (Frame, bool, error) {
	avail := len(d.buf) - d.off
	if avail < 2 {
		return Frame{}, false, nil
	}
	total := int(binary.LittleEndian.Uint16(d.buf[d.off:]))
	if total < headerSize {
		return Frame{}, false, ErrBadFrame
	}
	if avail < total {
		return Frame{}, false, nil
	}
	start := d.off
	d.off += total
	return Frame{
		Type:    MessageType(binary.LittleEndian.Uint16(d.buf[start+2:])),
		Payload: d.buf[start+headerSize : start+total],
	}, true, nil
}

// EncodingRequest is the raw (non protobuf) negotiation record sent first by
// clients. On the wire it is exactly 16 bytes including the frame header:
// int32 protocol version, int32 encoding, 4 byte protocol type tag.
type EncodingRequest struct {
	ProtocolVersion int32
	Encoding        Encoding
}

// ParseEncodingRequest decodes the handshake payload (frame header already
// stripped).
func ParseEncodingRequest(payload []byte) (EncodingRequest, error) {
	if len(payload) != encodingFrameSize-headerSize {
		return EncodingRequest{}, ErrBadHandshake
	}
	return EncodingRequest{
		ProtocolVersion: int32(binary.LittleEndian.Uint32(payload[0:4])),
		Encoding:        Encoding(binary.LittleEndian.Uint32(payload[4:8])),
	}, nil
}

// EncodingResponseFrame is the complete framed handshake reply. The server
// only ever answers protocol version 7 with protobuf encoding.
func EncodingResponseFrame() []byte {
	buf := make([]byte, encodingFrameSize)
	binary.LittleEndian.PutUint16(buf[0:2], encodingFrameSize)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(TypeEncodingResponse))
	binary.LittleEndian.PutUint32(buf[4:8], ProtocolVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(EncodingProtobuf))
	copy(buf[12:16], "DTC\x00")
	return buf
}
