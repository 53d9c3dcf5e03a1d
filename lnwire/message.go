// Package lnwire implements bit-exact encode/decode for the peer wire
// messages exchanged during channel negotiation (BOLT #2's open_channel /
// accept_channel / funding_created / funding_signed subset) and for the
// control messages exchanged between the subsystem and its parent process.
//
// Envelope grounded on the teacher's own lnwire/message.go (the
// MessageType / ReadMessage / WriteMessage framing), re-pointed at the new
// message set; field layout grounded on the BOLT #2 examples carried in
// the retrieval pack (lnwire-accept_channel.go from joe-nano-lnd and
// peterzen-dcrlnd).
package lnwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessagePayload is the maximum bytes a single peer message may occupy,
// mirroring the teacher's framing limit.
const MaxMessagePayload = 65535

// MessageType is the 2-byte big-endian type prefix on every peer message
// (spec.md §6).
type MessageType uint16

// Peer message types, matching BOLT #2's assigned codepoints (spec.md §6).
const (
	MsgOpenChannel     MessageType = 32
	MsgAcceptChannel   MessageType = 33
	MsgFundingCreated  MessageType = 34
	MsgFundingSigned   MessageType = 35
)

// Message is a peer wire protocol message.
type Message interface {
	Decode(r io.Reader) error
	Encode(w io.Writer) error
	MsgType() MessageType
}

// UnknownMessage indicates a message type this codec doesn't recognize.
type UnknownMessage struct {
	Type MessageType
}

func (u *UnknownMessage) Error() string {
	return fmt.Sprintf("unknown peer message type: %d", u.Type)
}

func makeEmptyMessage(msgType MessageType) (Message, error) {
	switch msgType {
	case MsgOpenChannel:
		return &OpenChannel{}, nil
	case MsgAcceptChannel:
		return &AcceptChannel{}, nil
	case MsgFundingCreated:
		return &FundingCreated{}, nil
	case MsgFundingSigned:
		return &FundingSigned{}, nil
	default:
		return nil, &UnknownMessage{Type: msgType}
	}
}

// PeekType reads the 2-byte message type prefix without consuming the rest
// of the message (the "peek_kind" operation of spec.md §4.2). The caller
// must arrange to still read the full message afterwards (typically by
// peeking on a buffered copy).
func PeekType(b []byte) (MessageType, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("buffer too short to contain a message type")
	}
	return MessageType(binary.BigEndian.Uint16(b)), nil
}

// WriteMessage serializes msg with its 2-byte type prefix onto w.
func WriteMessage(w io.Writer, msg Message) error {
	payload, err := Encode(msg)
	if err != nil {
		return err
	}

	if len(payload) > MaxMessagePayload {
		return fmt.Errorf("message payload too large: %d bytes", len(payload))
	}

	var mType [2]byte
	binary.BigEndian.PutUint16(mType[:], uint16(msg.MsgType()))
	if _, err := w.Write(mType[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadMessage reads the next full peer message (type prefix + body) from r.
func ReadMessage(r io.Reader) (Message, error) {
	var mType [2]byte
	if _, err := io.ReadFull(r, mType[:]); err != nil {
		return nil, err
	}

	msgType := MessageType(binary.BigEndian.Uint16(mType[:]))
	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(r); err != nil {
		return nil, err
	}
	log.Tracef("read peer message, type=%d", msgType)
	return msg, nil
}

// Encode serializes msg's body (without the type prefix) to a byte slice —
// the "encode" operation of spec.md §4.2.
func Encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
