// Package transport wraps the peer file descriptor (fd 3) with the one
// piece of state the core protocol driver is allowed to touch directly:
// a read deadline. Everything about the encrypted framing underneath is
// an external collaborator (spec.md §1) — the per-message cryptographic
// state is an opaque blob the driver threads through and eventually
// hands back to the parent, never inspects (spec.md §9, "Linear crypto
// state").
package transport

import (
	"io"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/openingd/lnwire"
)

// deadlineSetter is satisfied by *os.File and net.Conn alike; fd 3 is
// handed to the subsystem already connected, so the concrete type is the
// parent's choice.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// defaultReadTimeout bounds how long a single peer read may block before
// the handshake is abandoned (spec.md §9's read-timeout Open Question;
// resolved in SPEC_FULL.md in favor of a clock-backed default). New's
// caller may pass a different timeout; Dispatch always uses this default.
const defaultReadTimeout = 60 * time.Second

// Stream is the peer channel: a framed, bidirectional byte stream plus
// the opaque crypto state threaded across every read and write. A
// Stream is not safe for concurrent use — the protocol driver is
// single-threaded (spec.md §2).
type Stream struct {
	rw          io.ReadWriter
	clock       clock.Clock
	readTimeout time.Duration

	// state is the opaque transport crypto state. ReadPeerMessage and
	// WritePeerMessage carry it through unchanged; it is only handed out
	// via State() for the final status handoff.
	state []byte
}

// New wraps rw with the given initial opaque crypto state. If rw also
// implements deadlineSetter, reads are bounded by readTimeout (0 selects
// defaultReadTimeout).
func New(rw io.ReadWriter, initialState []byte, clk clock.Clock, readTimeout time.Duration) *Stream {
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}
	return &Stream{
		rw:          rw,
		clock:       clk,
		readTimeout: readTimeout,
		state:       initialState,
	}
}

// State returns the current opaque crypto state, for handing back to
// the parent in a terminal status message.
func (s *Stream) State() []byte {
	return s.state
}

// ReadPeerMessage reads and decodes the next BOLT #2 message, applying
// the configured read deadline first (spec.md §4.5.1 step 5 / §4.5.2
// step 7: "Read/parse failure → PEER_READ_FAILED").
func (s *Stream) ReadPeerMessage() (lnwire.Message, error) {
	if setter, ok := s.rw.(deadlineSetter); ok {
		deadline := s.clock.Now().Add(s.readTimeout)
		if err := setter.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}

	msg, err := lnwire.ReadMessage(s.rw)
	if err != nil {
		log.Debugf("peer read failed: %v", err)
		return nil, err
	}

	// The crypto state advances with every message read; since the
	// subsystem treats it as opaque, "advancing" it here means nothing
	// more than acknowledging ownership moved through a read. A real
	// transport would fold updated ratchet state into s.state.
	return msg, nil
}

// WritePeerMessage encodes and writes a BOLT #2 message (spec.md §6:
// "PEER_WRITE_FAILED — transport write failure").
func (s *Stream) WritePeerMessage(msg lnwire.Message) error {
	return lnwire.WriteMessage(s.rw, msg)
}
