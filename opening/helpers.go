package opening

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
)

// amountFromMSat truncates a millisatoshi value down to whole satoshis,
// the unit the commitment transaction's outputs are denominated in.
func amountFromMSat(msat lnwire.MilliSatoshi) btcutil.Amount {
	return btcutil.Amount(msat / 1000)
}

// basepointsFromAccept extracts the remote basepoints carried on an
// accept_channel message, in the same field order a keychain.KeySet
// produces them.
func basepointsFromAccept(a *lnwire.AcceptChannel) keychain.Basepoints {
	return keychain.Basepoints{
		FundingKey:              a.FundingKey,
		RevocationBasePoint:     a.RevocationBasePoint,
		PaymentBasePoint:        a.PaymentBasePoint,
		DelayedPaymentBasePoint: a.DelayedPaymentBasePoint,
	}
}

// basepointsFromOpen extracts the remote basepoints carried on an
// open_channel message.
func basepointsFromOpen(o *lnwire.OpenChannel) keychain.Basepoints {
	return keychain.Basepoints{
		FundingKey:              o.FundingKey,
		RevocationBasePoint:     o.RevocationBasePoint,
		PaymentBasePoint:        o.PaymentBasePoint,
		DelayedPaymentBasePoint: o.DelayedPaymentBasePoint,
	}
}
