package lnwire

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/openingd/keychain"
)

// StatusKind tags the messages the subsystem writes back to the parent on
// the status channel (fd 1, spec.md §6). This is a single tagged-union
// outbound stream: both the per-step responses and a terminal failure
// share it.
type StatusKind uint8

const (
	KindOpenResp StatusKind = iota + 1
	KindOpenFundingResp
	KindAcceptResp
	KindStatus
)

// ErrorKind enumerates the fatal conditions the subsystem can report
// (spec.md §5).
type ErrorKind uint8

const (
	ErrBadCommand ErrorKind = iota + 1
	ErrBadParam
	ErrKeyDerivationFailed
	ErrPeerReadFailed
	ErrPeerWriteFailed
	ErrPeerBadInitialMessage
	ErrPeerBadFunding
	ErrPeerBadConfig
)

func (k ErrorKind) String() string {
	switch k {
	case ErrBadCommand:
		return "BAD_COMMAND"
	case ErrBadParam:
		return "BAD_PARAM"
	case ErrKeyDerivationFailed:
		return "KEY_DERIVATION_FAILED"
	case ErrPeerReadFailed:
		return "PEER_READ_FAILED"
	case ErrPeerWriteFailed:
		return "PEER_WRITE_FAILED"
	case ErrPeerBadInitialMessage:
		return "PEER_BAD_INITIAL_MESSAGE"
	case ErrPeerBadFunding:
		return "PEER_BAD_FUNDING"
	case ErrPeerBadConfig:
		return "PEER_BAD_CONFIG"
	default:
		return fmt.Sprintf("UNKNOWN_ERROR_KIND(%d)", uint8(k))
	}
}

// StatusMessage is a message written to the parent on fd 1.
type StatusMessage interface {
	Decode(r io.Reader) error
	Encode(w io.Writer) error
	Kind() StatusKind
}

// OpenResp answers an Init+Open command once the peer has accepted our
// open_channel and we need the wallet to build the funding transaction
// (spec.md §4.5.1 step 6).
type OpenResp struct {
	TemporaryChannelID  [32]byte
	LocalFundingPubkey  *btcec.PublicKey
	RemoteFundingPubkey *btcec.PublicKey
	RemoteConfig        ChannelConfig
	RemoteBasepoints    keychain.Basepoints
}

func (o *OpenResp) Kind() StatusKind { return KindOpenResp }

func (o *OpenResp) Encode(w io.Writer) error {
	if err := writeBytes(w, o.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writePublicKey(w, o.LocalFundingPubkey); err != nil {
		return err
	}
	if err := writePublicKey(w, o.RemoteFundingPubkey); err != nil {
		return err
	}
	if err := writeChannelConfig(w, o.RemoteConfig); err != nil {
		return err
	}
	return writeBasepoints(w, o.RemoteBasepoints)
}

func (o *OpenResp) Decode(r io.Reader) error {
	if err := readBytes(r, o.TemporaryChannelID[:]); err != nil {
		return err
	}

	var err error
	if o.LocalFundingPubkey, err = readPublicKey(r); err != nil {
		return err
	}
	if o.RemoteFundingPubkey, err = readPublicKey(r); err != nil {
		return err
	}
	if o.RemoteConfig, err = readChannelConfig(r); err != nil {
		return err
	}
	o.RemoteBasepoints, err = readBasepoints(r)
	return err
}

// OpenFundingResp completes the funder path: the fundee has signed our
// commitment transaction and we have their basepoints and next
// per-commitment point (spec.md §4.5.1 step 10).
type OpenFundingResp struct {
	TemporaryChannelID [32]byte
	RemoteConfig       ChannelConfig
	RemoteBasepoints   keychain.Basepoints
	PeerSignature      Signature
	NextPerCommitPoint *btcec.PublicKey
	CryptoState        []byte
}

func (o *OpenFundingResp) Kind() StatusKind { return KindOpenFundingResp }

func (o *OpenFundingResp) Encode(w io.Writer) error {
	if err := writeBytes(w, o.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writeChannelConfig(w, o.RemoteConfig); err != nil {
		return err
	}
	if err := writeBasepoints(w, o.RemoteBasepoints); err != nil {
		return err
	}
	if err := writeSignature(w, o.PeerSignature); err != nil {
		return err
	}
	if err := writePublicKey(w, o.NextPerCommitPoint); err != nil {
		return err
	}
	return writeExtraData(w, o.CryptoState)
}

func (o *OpenFundingResp) Decode(r io.Reader) error {
	if err := readBytes(r, o.TemporaryChannelID[:]); err != nil {
		return err
	}

	var err error
	if o.RemoteConfig, err = readChannelConfig(r); err != nil {
		return err
	}
	if o.RemoteBasepoints, err = readBasepoints(r); err != nil {
		return err
	}
	if o.PeerSignature, err = readSignature(r); err != nil {
		return err
	}
	if o.NextPerCommitPoint, err = readPublicKey(r); err != nil {
		return err
	}
	o.CryptoState, err = readExtraData(r)
	return err
}

// AcceptResp completes the fundee path: we have accepted the funder's
// open_channel, signed their commitment transaction, and report the
// funding outpoint plus everything the parent needs to watch the chain
// and build our own commitment (spec.md §4.5.2 step 10).
type AcceptResp struct {
	TemporaryChannelID [32]byte
	LocalFundingPubkey *btcec.PublicKey
	RemoteConfig       ChannelConfig
	RemoteBasepoints   keychain.Basepoints
	FundingTxid        chainhash.Hash
	FundingOutputIndex uint16
	PeerSignature      Signature
	NextPerCommitPoint *btcec.PublicKey
	CryptoState        []byte
}

func (a *AcceptResp) Kind() StatusKind { return KindAcceptResp }

func (a *AcceptResp) Encode(w io.Writer) error {
	if err := writeBytes(w, a.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writePublicKey(w, a.LocalFundingPubkey); err != nil {
		return err
	}
	if err := writeChannelConfig(w, a.RemoteConfig); err != nil {
		return err
	}
	if err := writeBasepoints(w, a.RemoteBasepoints); err != nil {
		return err
	}
	if err := writeBytes(w, a.FundingTxid[:]); err != nil {
		return err
	}
	if err := writeUint16(w, a.FundingOutputIndex); err != nil {
		return err
	}
	if err := writeSignature(w, a.PeerSignature); err != nil {
		return err
	}
	if err := writePublicKey(w, a.NextPerCommitPoint); err != nil {
		return err
	}
	return writeExtraData(w, a.CryptoState)
}

func (a *AcceptResp) Decode(r io.Reader) error {
	if err := readBytes(r, a.TemporaryChannelID[:]); err != nil {
		return err
	}

	var err error
	if a.LocalFundingPubkey, err = readPublicKey(r); err != nil {
		return err
	}
	if a.RemoteConfig, err = readChannelConfig(r); err != nil {
		return err
	}
	if a.RemoteBasepoints, err = readBasepoints(r); err != nil {
		return err
	}
	if err := readBytes(r, a.FundingTxid[:]); err != nil {
		return err
	}
	if a.FundingOutputIndex, err = readUint16(r); err != nil {
		return err
	}
	if a.PeerSignature, err = readSignature(r); err != nil {
		return err
	}
	if a.NextPerCommitPoint, err = readPublicKey(r); err != nil {
		return err
	}
	a.CryptoState, err = readExtraData(r)
	return err
}

// Status reports a fatal condition that ends the process (spec.md §5,
// §6). It is the only message ever written after a failure — the
// subsystem does not attempt to keep running past one.
type Status struct {
	ErrKind    ErrorKind
	Diagnostic string
}

func (s *Status) Kind() StatusKind { return KindStatus }

func (s *Status) Encode(w io.Writer) error {
	if err := writeUint8(w, uint8(s.ErrKind)); err != nil {
		return err
	}
	return writeExtraData(w, []byte(s.Diagnostic))
}

func (s *Status) Decode(r io.Reader) error {
	kind, err := readUint8(r)
	if err != nil {
		return err
	}
	s.ErrKind = ErrorKind(kind)

	diag, err := readExtraData(r)
	if err != nil {
		return err
	}
	s.Diagnostic = string(diag)
	return nil
}

func (s *Status) Error() string {
	return fmt.Sprintf("%s: %s", s.ErrKind, s.Diagnostic)
}

func makeEmptyStatusMessage(kind StatusKind) (StatusMessage, error) {
	switch kind {
	case KindOpenResp:
		return &OpenResp{}, nil
	case KindOpenFundingResp:
		return &OpenFundingResp{}, nil
	case KindAcceptResp:
		return &AcceptResp{}, nil
	case KindStatus:
		return &Status{}, nil
	default:
		return nil, fmt.Errorf("unknown status message kind: %d", kind)
	}
}

// WriteStatusMessage serializes a status-channel message with its 1-byte
// kind prefix.
func WriteStatusMessage(w io.Writer, msg StatusMessage) error {
	if err := writeUint8(w, uint8(msg.Kind())); err != nil {
		return err
	}
	return msg.Encode(w)
}

// ReadStatusMessage reads the next message from the status channel.
func ReadStatusMessage(r io.Reader) (StatusMessage, error) {
	var kindByte [1]byte
	if _, err := io.ReadFull(r, kindByte[:]); err != nil {
		return nil, err
	}

	msg, err := makeEmptyStatusMessage(StatusKind(kindByte[0]))
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(r); err != nil {
		return nil, err
	}
	return msg, nil
}
