package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// AcceptChannel is the fundee's response to OpenChannel (spec.md §4.5.2
// step 4).
type AcceptChannel struct {
	TemporaryChannelID   [32]byte
	DustLimitSatoshis    btcutil.Amount
	MaxHTLCValueInFlight MilliSatoshi
	ChannelReserve       btcutil.Amount
	HTLCMinimumMSat      MilliSatoshi
	MinimumDepth         uint32
	ToSelfDelay          uint16
	MaxAcceptedHTLCs     uint16

	FundingKey              *btcec.PublicKey
	RevocationBasePoint     *btcec.PublicKey
	PaymentBasePoint        *btcec.PublicKey
	DelayedPaymentBasePoint *btcec.PublicKey
	HTLCBasePoint           *btcec.PublicKey
	FirstPerCommitPoint     *btcec.PublicKey

	ExtraData []byte
}

func (a *AcceptChannel) MsgType() MessageType { return MsgAcceptChannel }

func (a *AcceptChannel) Encode(w io.Writer) error {
	if err := writeBytes(w, a.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writeSatoshi(w, a.DustLimitSatoshis); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, a.MaxHTLCValueInFlight); err != nil {
		return err
	}
	if err := writeSatoshi(w, a.ChannelReserve); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, a.HTLCMinimumMSat); err != nil {
		return err
	}
	if err := writeUint32(w, a.MinimumDepth); err != nil {
		return err
	}
	if err := writeUint16(w, a.ToSelfDelay); err != nil {
		return err
	}
	if err := writeUint16(w, a.MaxAcceptedHTLCs); err != nil {
		return err
	}
	for _, pub := range []*btcec.PublicKey{
		a.FundingKey, a.RevocationBasePoint, a.PaymentBasePoint,
		a.DelayedPaymentBasePoint, a.HTLCBasePoint, a.FirstPerCommitPoint,
	} {
		if err := writePublicKey(w, pub); err != nil {
			return err
		}
	}
	return writeExtraData(w, a.ExtraData)
}

func (a *AcceptChannel) Decode(r io.Reader) error {
	if err := readBytes(r, a.TemporaryChannelID[:]); err != nil {
		return err
	}

	var err error
	if a.DustLimitSatoshis, err = readSatoshi(r); err != nil {
		return err
	}
	if a.MaxHTLCValueInFlight, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if a.ChannelReserve, err = readSatoshi(r); err != nil {
		return err
	}
	if a.HTLCMinimumMSat, err = readMilliSatoshi(r); err != nil {
		return err
	}
	if a.MinimumDepth, err = readUint32(r); err != nil {
		return err
	}
	if a.ToSelfDelay, err = readUint16(r); err != nil {
		return err
	}
	if a.MaxAcceptedHTLCs, err = readUint16(r); err != nil {
		return err
	}

	keys := make([]**btcec.PublicKey, 6)
	keys[0] = &a.FundingKey
	keys[1] = &a.RevocationBasePoint
	keys[2] = &a.PaymentBasePoint
	keys[3] = &a.DelayedPaymentBasePoint
	keys[4] = &a.HTLCBasePoint
	keys[5] = &a.FirstPerCommitPoint
	for _, k := range keys {
		if *k, err = readPublicKey(r); err != nil {
			return err
		}
	}

	a.ExtraData, err = readExtraData(r)
	return err
}
