package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OpenChannel is the funder's opening message, sent once at the start of
// the funder handshake (spec.md §4.5.1 step 4). Field order and encoding
// follow BOLT #2.
type OpenChannel struct {
	ChainHash            chainhash.Hash
	TemporaryChannelID   [32]byte
	FundingSatoshis      btcutil.Amount
	PushMSat             MilliSatoshi
	DustLimitSatoshis    btcutil.Amount
	MaxHTLCValueInFlight MilliSatoshi
	ChannelReserve       btcutil.Amount
	HTLCMinimumMSat      MilliSatoshi
	FeeratePerKw         uint32
	ToSelfDelay          uint16
	MaxAcceptedHTLCs     uint16

	FundingKey              *btcec.PublicKey
	RevocationBasePoint     *btcec.PublicKey
	PaymentBasePoint        *btcec.PublicKey
	DelayedPaymentBasePoint *btcec.PublicKey
	HTLCBasePoint           *btcec.PublicKey
	FirstPerCommitPoint     *btcec.PublicKey

	// ChannelFlags carries BOLT #2's single-byte announce flag. Not
	// named in spec.md's Channel Config list; supplemented from
	// original_source/opening.c, see SPEC_FULL.md.
	ChannelFlags uint8

	ExtraData []byte
}

func (o *OpenChannel) MsgType() MessageType { return MsgOpenChannel }

func (o *OpenChannel) Encode(w io.Writer) error {
	if err := writeBytes(w, o.ChainHash[:]); err != nil {
		return err
	}
	if err := writeBytes(w, o.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writeSatoshi(w, o.FundingSatoshis); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, o.PushMSat); err != nil {
		return err
	}
	if err := writeSatoshi(w, o.DustLimitSatoshis); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, o.MaxHTLCValueInFlight); err != nil {
		return err
	}
	if err := writeSatoshi(w, o.ChannelReserve); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, o.HTLCMinimumMSat); err != nil {
		return err
	}
	if err := writeUint32(w, o.FeeratePerKw); err != nil {
		return err
	}
	if err := writeUint16(w, o.ToSelfDelay); err != nil {
		return err
	}
	if err := writeUint16(w, o.MaxAcceptedHTLCs); err != nil {
		return err
	}
	for _, pub := range []*btcec.PublicKey{
		o.FundingKey, o.RevocationBasePoint, o.PaymentBasePoint,
		o.DelayedPaymentBasePoint, o.HTLCBasePoint, o.FirstPerCommitPoint,
	} {
		if err := writePublicKey(w, pub); err != nil {
			return err
		}
	}
	if err := writeUint8(w, o.ChannelFlags); err != nil {
		return err
	}
	return writeExtraData(w, o.ExtraData)
}

func (o *OpenChannel) Decode(r io.Reader) error {
	if err := readBytes(r, o.ChainHash[:]); err != nil {
		return err
	}
	if err := readBytes(r, o.TemporaryChannelID[:]); err != nil {
		return err
	}

	var err error
	if o.FundingSatoshis, err = readSatoshi(r); err != nil {
		return err
	}
	if o.PushMSat, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if o.DustLimitSatoshis, err = readSatoshi(r); err != nil {
		return err
	}
	if o.MaxHTLCValueInFlight, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if o.ChannelReserve, err = readSatoshi(r); err != nil {
		return err
	}
	if o.HTLCMinimumMSat, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if o.FeeratePerKw, err = readUint32(r); err != nil {
		return err
	}
	if o.ToSelfDelay, err = readUint16(r); err != nil {
		return err
	}
	if o.MaxAcceptedHTLCs, err = readUint16(r); err != nil {
		return err
	}

	keys := make([]**btcec.PublicKey, 6)
	keys[0] = &o.FundingKey
	keys[1] = &o.RevocationBasePoint
	keys[2] = &o.PaymentBasePoint
	keys[3] = &o.DelayedPaymentBasePoint
	keys[4] = &o.HTLCBasePoint
	keys[5] = &o.FirstPerCommitPoint
	for _, k := range keys {
		if *k, err = readPublicKey(r); err != nil {
			return err
		}
	}

	if o.ChannelFlags, err = readUint8(r); err != nil {
		return err
	}
	o.ExtraData, err = readExtraData(r)
	return err
}
