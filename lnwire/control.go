package lnwire

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/openingd/keychain"
)

// ControlKind tags the commands the parent sends down the control channel
// (fd 0, spec.md §6).
type ControlKind uint8

const (
	KindInit ControlKind = iota + 1
	KindOpen
	KindAccept
	KindOpenFunding
	KindExitReq
)

// ControlMessage is a command read from the parent process.
type ControlMessage interface {
	Decode(r io.Reader) error
	Encode(w io.Writer) error
	Kind() ControlKind
}

// Init carries everything the dispatcher needs before it can derive keys
// or read the first role-selecting command (spec.md §4.2).
type Init struct {
	ChainHash                    chainhash.Hash
	LocalConfig                  ChannelConfig
	MaxToSelfDelay               uint16
	MinEffectiveHTLCCapacityMSat MilliSatoshi
	MinFundingSatoshis           btcutil.Amount
	InitialCryptoState           []byte
	RootSeed                     [keychain.SeedSize]byte
}

func (i *Init) Kind() ControlKind { return KindInit }

func (i *Init) Encode(w io.Writer) error {
	if err := writeBytes(w, i.ChainHash[:]); err != nil {
		return err
	}
	if err := writeChannelConfig(w, i.LocalConfig); err != nil {
		return err
	}
	if err := writeUint16(w, i.MaxToSelfDelay); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, i.MinEffectiveHTLCCapacityMSat); err != nil {
		return err
	}
	if err := writeSatoshi(w, i.MinFundingSatoshis); err != nil {
		return err
	}
	if err := writeExtraData(w, i.InitialCryptoState); err != nil {
		return err
	}
	return writeBytes(w, i.RootSeed[:])
}

func (i *Init) Decode(r io.Reader) error {
	if err := readBytes(r, i.ChainHash[:]); err != nil {
		return err
	}

	var err error
	if i.LocalConfig, err = readChannelConfig(r); err != nil {
		return err
	}
	if i.MaxToSelfDelay, err = readUint16(r); err != nil {
		return err
	}
	if i.MinEffectiveHTLCCapacityMSat, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if i.MinFundingSatoshis, err = readSatoshi(r); err != nil {
		return err
	}
	if i.InitialCryptoState, err = readExtraData(r); err != nil {
		return err
	}
	return readBytes(r, i.RootSeed[:])
}

// Open instructs the subsystem to act as funder (spec.md §4.5.1).
type Open struct {
	FundingSatoshis btcutil.Amount
	PushMSat        MilliSatoshi
	FeeratePerKw    uint32
	MaxMinimumDepth uint32
}

func (o *Open) Kind() ControlKind { return KindOpen }

func (o *Open) Encode(w io.Writer) error {
	if err := writeSatoshi(w, o.FundingSatoshis); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, o.PushMSat); err != nil {
		return err
	}
	if err := writeUint32(w, o.FeeratePerKw); err != nil {
		return err
	}
	return writeUint32(w, o.MaxMinimumDepth)
}

func (o *Open) Decode(r io.Reader) error {
	var err error
	if o.FundingSatoshis, err = readSatoshi(r); err != nil {
		return err
	}
	if o.PushMSat, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if o.FeeratePerKw, err = readUint32(r); err != nil {
		return err
	}
	o.MaxMinimumDepth, err = readUint32(r)
	return err
}

// Accept instructs the subsystem to act as fundee (spec.md §4.5.2). It
// carries the already-received open_channel bytes verbatim, since the
// parent is the one who first demultiplexed the peer connection and
// recognized the message kind (spec.md §4.6: "distinguished by message
// kind — not by content").
type Accept struct {
	MinFeerate       uint32
	MaxFeerate       uint32
	InitialPeerMsg   []byte
}

func (a *Accept) Kind() ControlKind { return KindAccept }

func (a *Accept) Encode(w io.Writer) error {
	if err := writeUint32(w, a.MinFeerate); err != nil {
		return err
	}
	if err := writeUint32(w, a.MaxFeerate); err != nil {
		return err
	}
	return writeExtraData(w, a.InitialPeerMsg)
}

func (a *Accept) Decode(r io.Reader) error {
	var err error
	if a.MinFeerate, err = readUint32(r); err != nil {
		return err
	}
	if a.MaxFeerate, err = readUint32(r); err != nil {
		return err
	}
	a.InitialPeerMsg, err = readExtraData(r)
	return err
}

// OpenFunding is the parent's reply to OpenResp, once the wallet has
// constructed the funding transaction (spec.md §4.2).
type OpenFunding struct {
	FundingTxid        [32]byte
	FundingTxoutIndex  uint16
}

func (o *OpenFunding) Kind() ControlKind { return KindOpenFunding }

func (o *OpenFunding) Encode(w io.Writer) error {
	if err := writeBytes(w, o.FundingTxid[:]); err != nil {
		return err
	}
	return writeUint16(w, o.FundingTxoutIndex)
}

func (o *OpenFunding) Decode(r io.Reader) error {
	if err := readBytes(r, o.FundingTxid[:]); err != nil {
		return err
	}
	var err error
	o.FundingTxoutIndex, err = readUint16(r)
	return err
}

// ExitReq is the parent's shutdown command (spec.md §4.5, §6).
type ExitReq struct{}

func (e *ExitReq) Kind() ControlKind       { return KindExitReq }
func (e *ExitReq) Encode(w io.Writer) error { return nil }
func (e *ExitReq) Decode(r io.Reader) error { return nil }

func makeEmptyControlMessage(kind ControlKind) (ControlMessage, error) {
	switch kind {
	case KindInit:
		return &Init{}, nil
	case KindOpen:
		return &Open{}, nil
	case KindAccept:
		return &Accept{}, nil
	case KindOpenFunding:
		return &OpenFunding{}, nil
	case KindExitReq:
		return &ExitReq{}, nil
	default:
		return nil, fmt.Errorf("unknown control message kind: %d", kind)
	}
}

// WriteControlMessage serializes a command with its 1-byte kind prefix.
func WriteControlMessage(w io.Writer, msg ControlMessage) error {
	if err := writeUint8(w, uint8(msg.Kind())); err != nil {
		return err
	}
	return msg.Encode(w)
}

// ReadControlMessage reads the next command from the control channel.
func ReadControlMessage(r io.Reader) (ControlMessage, error) {
	var kindByte [1]byte
	if _, err := io.ReadFull(r, kindByte[:]); err != nil {
		return nil, err
	}

	msg, err := makeEmptyControlMessage(ControlKind(kindByte[0]))
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(r); err != nil {
		return nil, err
	}
	return msg, nil
}
