package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/openingd/keychain"
)

// writeBasepoints and readBasepoints (de)serialize a keychain.Basepoints
// value for control/status messages, in the same field order used on the
// peer wire (funding, revocation, payment, delayed-payment).
func writeBasepoints(w io.Writer, b keychain.Basepoints) error {
	for _, pub := range []*btcec.PublicKey{
		b.FundingKey, b.RevocationBasePoint, b.PaymentBasePoint,
		b.DelayedPaymentBasePoint,
	} {
		if err := writePublicKey(w, pub); err != nil {
			return err
		}
	}
	return nil
}

func readBasepoints(r io.Reader) (keychain.Basepoints, error) {
	var b keychain.Basepoints
	var err error

	if b.FundingKey, err = readPublicKey(r); err != nil {
		return b, err
	}
	if b.RevocationBasePoint, err = readPublicKey(r); err != nil {
		return b, err
	}
	if b.PaymentBasePoint, err = readPublicKey(r); err != nil {
		return b, err
	}
	if b.DelayedPaymentBasePoint, err = readPublicKey(r); err != nil {
		return b, err
	}
	return b, nil
}
