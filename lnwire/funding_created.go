package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// FundingCreated carries the funding outpoint and the funder's signature
// on the fundee's initial commitment transaction (spec.md §4.5.1 step 8).
type FundingCreated struct {
	TemporaryChannelID [32]byte
	FundingTxid        chainhash.Hash
	FundingOutputIndex  uint16
	Signature          Signature
}

func (f *FundingCreated) MsgType() MessageType { return MsgFundingCreated }

func (f *FundingCreated) Encode(w io.Writer) error {
	if err := writeBytes(w, f.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := writeBytes(w, f.FundingTxid[:]); err != nil {
		return err
	}
	if err := writeUint16(w, f.FundingOutputIndex); err != nil {
		return err
	}
	return writeSignature(w, f.Signature)
}

func (f *FundingCreated) Decode(r io.Reader) error {
	if err := readBytes(r, f.TemporaryChannelID[:]); err != nil {
		return err
	}
	if err := readBytes(r, f.FundingTxid[:]); err != nil {
		return err
	}

	var err error
	if f.FundingOutputIndex, err = readUint16(r); err != nil {
		return err
	}
	f.Signature, err = readSignature(r)
	return err
}
