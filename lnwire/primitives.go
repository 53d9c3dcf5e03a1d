package lnwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/tlv"
)

// extraDataTLVType is the single record type the extra_data trailer
// carries. BOLT #2 reserves this trailer for a real TLV stream of
// independently-typed records; since nothing in this subsystem's scope
// defines any of those record types, the whole blob rides under one.
const extraDataTLVType tlv.Type = 0

// MilliSatoshi represents a thousandth of a satoshi, the unit HTLC values
// and several config fields are denominated in (spec.md §3).
type MilliSatoshi uint64

// Signature is a 64-byte fixed-width ECDSA signature (32-byte R, 32-byte S
// big-endian), matching the compact representation BOLT #2 specifies and
// spec.md §6 names explicitly — not DER.
type Signature [64]byte

// NewSignature converts a parsed ECDSA signature into its 64-byte wire
// representation.
func NewSignature(sig *ecdsa.Signature) Signature {
	var wire Signature

	raw := sig.Serialize()
	// Serialize() returns a DER encoding; re-derive R and S directly
	// instead of trusting DER's variable-length layout.
	r, s := parseDERSignature(raw)

	rBytes := r.Bytes()
	sBytes := s.Bytes()
	copy(wire[32-len(rBytes):32], rBytes)
	copy(wire[64-len(sBytes):64], sBytes)

	return wire
}

// ToSignature parses the 64-byte wire representation back into an
// *ecdsa.Signature suitable for Verify.
func (s Signature) ToSignature() (*ecdsa.Signature, error) {
	var r, sVal btcec.ModNScalar
	r.SetByteSlice(s[0:32])
	sVal.SetByteSlice(s[32:64])

	return ecdsa.NewSignature(&r, &sVal), nil
}

// parseDERSignature extracts R and S from a DER-encoded ECDSA signature.
// Avoids pulling in a general ASN.1 decoder for a two-integer sequence.
func parseDERSignature(der []byte) (*big.Int, *big.Int) {
	// 0x30 <len> 0x02 <rlen> <r...> 0x02 <slen> <s...>
	if len(der) < 8 || der[0] != 0x30 {
		return new(big.Int), new(big.Int)
	}
	offset := 2
	rLen := int(der[offset+1])
	r := new(big.Int).SetBytes(der[offset+2 : offset+2+rLen])
	offset = offset + 2 + rLen
	sLen := int(der[offset+1])
	s := new(big.Int).SetBytes(der[offset+2 : offset+2+sLen])
	return r, s
}

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeSatoshi(w io.Writer, amt btcutil.Amount) error {
	return writeUint64(w, uint64(amt))
}

func readSatoshi(r io.Reader) (btcutil.Amount, error) {
	v, err := readUint64(r)
	return btcutil.Amount(v), err
}

func writeMilliSatoshi(w io.Writer, amt MilliSatoshi) error {
	return writeUint64(w, uint64(amt))
}

func readMilliSatoshi(r io.Reader) (MilliSatoshi, error) {
	v, err := readUint64(r)
	return MilliSatoshi(v), err
}

func writeBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return err
}

// writePublicKey writes a 33-byte DER-encoded compressed secp256k1 point
// (spec.md §6).
func writePublicKey(w io.Writer, pub *btcec.PublicKey) error {
	if pub == nil {
		return fmt.Errorf("cannot encode a nil public key")
	}
	return writeBytes(w, pub.SerializeCompressed())
}

func readPublicKey(r io.Reader) (*btcec.PublicKey, error) {
	var raw [33]byte
	if err := readBytes(r, raw[:]); err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(raw[:])
}

// writeSignature writes the 64-byte fixed-width signature (spec.md §6).
func writeSignature(w io.Writer, sig Signature) error {
	return writeBytes(w, sig[:])
}

func readSignature(r io.Reader) (Signature, error) {
	var sig Signature
	err := readBytes(r, sig[:])
	return sig, err
}

// writeExtraData encodes data as a one-record TLV stream and writes it
// behind its own uint16 length prefix, matching the rest of this wire
// format's framing while the payload itself is real BOLT #2-style TLV
// (spec.md §4.2's optional extension data, grounded on the
// ExtraOpaqueData convention in the pack's accept_channel.go example).
func writeExtraData(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return writeUint16(w, 0)
	}

	record := tlv.MakePrimitiveRecord(extraDataTLVType, &data)
	stream, err := tlv.NewStream(record)
	if err != nil {
		return err
	}

	var encoded bytes.Buffer
	if err := stream.Encode(&encoded); err != nil {
		return err
	}

	if err := writeUint16(w, uint16(encoded.Len())); err != nil {
		return err
	}
	return writeBytes(w, encoded.Bytes())
}

func readExtraData(r io.Reader) ([]byte, error) {
	length, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}

	raw := make([]byte, length)
	if err := readBytes(r, raw); err != nil {
		return nil, err
	}

	var data []byte
	record := tlv.MakePrimitiveRecord(extraDataTLVType, &data)
	stream, err := tlv.NewStream(record)
	if err != nil {
		return nil, err
	}
	if err := stream.Decode(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return data, nil
}
