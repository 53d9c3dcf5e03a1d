package lnwire

import "io"

// FundingSigned carries the fundee's signature on the funder's initial
// commitment transaction (spec.md §4.5.2 step 8). Per spec.md invariant 8,
// the channel id field here still holds the same temporary_channel_id used
// on the first two messages of the handshake — this spec does not switch
// to a permanent outpoint-derived channel id.
type FundingSigned struct {
	ChannelID [32]byte
	Signature Signature
}

func (f *FundingSigned) MsgType() MessageType { return MsgFundingSigned }

func (f *FundingSigned) Encode(w io.Writer) error {
	if err := writeBytes(w, f.ChannelID[:]); err != nil {
		return err
	}
	return writeSignature(w, f.Signature)
}

func (f *FundingSigned) Decode(r io.Reader) error {
	if err := readBytes(r, f.ChannelID[:]); err != nil {
		return err
	}

	var err error
	f.Signature, err = readSignature(r)
	return err
}
