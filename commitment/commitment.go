// Package commitment builds the 2-of-2 funding output and the initial
// commitment transaction the opening handshake exchanges signatures
// over (spec.md §4.4). Key derivation and script construction are
// delegated to lnd's input package; this package only decides which
// basepoints and which viewpoint apply.
package commitment

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/input"
	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
)

// Viewpoint selects which side's commitment transaction is being built —
// the two differ in which basepoints feed the delayed "to self" output
// versus the immediately-spendable "to remote" output (spec.md §4.4).
type Viewpoint int

const (
	// Local builds the transaction that will be signed by the remote
	// party and broadcast by us.
	Local Viewpoint = iota
	// Remote builds the transaction that will be signed by us and
	// broadcast by the remote party.
	Remote
)

// KeyRing holds the per-state keys derived from a commitment point,
// mirroring the teacher's commitmentKeyRing but parameterized by
// Viewpoint instead of a boolean.
type KeyRing struct {
	ToLocalKey    *btcec.PublicKey
	ToRemoteKey   *btcec.PublicKey
	RevocationKey *btcec.PublicKey
}

// DeriveKeyRing computes the delayed, unencumbered, and revocation keys
// for one commitment transaction, tweaked by the given per-commitment
// point (spec.md §4.4, grounded on deriveCommitmentKeys).
func DeriveKeyRing(view Viewpoint, commitPoint *btcec.PublicKey, local, remote keychain.Basepoints) KeyRing {
	var delayBase, noDelayBase, revocationBase *btcec.PublicKey
	if view == Local {
		delayBase = local.DelayedPaymentBasePoint
		noDelayBase = remote.PaymentBasePoint
		revocationBase = remote.RevocationBasePoint
	} else {
		delayBase = remote.DelayedPaymentBasePoint
		noDelayBase = local.PaymentBasePoint
		revocationBase = local.RevocationBasePoint
	}

	return KeyRing{
		ToLocalKey:    input.TweakPubKey(delayBase, commitPoint),
		ToRemoteKey:   input.TweakPubKey(noDelayBase, commitPoint),
		RevocationKey: input.DeriveRevocationPubkey(revocationBase, commitPoint),
	}
}

// FundingRedeemScript returns the 2-of-2 multisig redeem script and its
// P2WSH funding output for the given amount (spec.md §4.4, grounded on
// genFundingPkScript).
func FundingRedeemScript(localFundingKey, remoteFundingKey *btcec.PublicKey, amt btcutil.Amount) ([]byte, *wire.TxOut, error) {
	redeemScript, txOut, err := input.GenFundingPkScript(
		localFundingKey.SerializeCompressed(),
		remoteFundingKey.SerializeCompressed(),
		int64(amt),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("building funding output: %w", err)
	}
	return redeemScript, txOut, nil
}

// BuildCommitmentTx constructs one side's initial commitment transaction
// spending the funding outpoint, omitting any output that would fall
// below its dust limit (spec.md §4.4, grounded on CreateCommitTx).
func BuildCommitmentTx(fundingOutpoint wire.OutPoint, keys KeyRing, csvDelay uint16,
	amountToSelf, amountToRemote, dustLimit btcutil.Amount) (*wire.MsgTx, error) {

	toSelfScript, err := input.CommitScriptToSelf(
		uint32(csvDelay), keys.ToLocalKey, keys.RevocationKey,
	)
	if err != nil {
		return nil, fmt.Errorf("building to_local script: %w", err)
	}
	toSelfPkScript, err := input.WitnessScriptHash(toSelfScript)
	if err != nil {
		return nil, fmt.Errorf("hashing to_local script: %w", err)
	}

	toRemoteScript, err := input.CommitScriptUnencumbered(keys.ToRemoteKey)
	if err != nil {
		return nil, fmt.Errorf("building to_remote script: %w", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: fundingOutpoint,
	})

	if amountToSelf >= dustLimit {
		tx.AddTxOut(&wire.TxOut{
			PkScript: toSelfPkScript,
			Value:    int64(amountToSelf),
		})
	}
	if amountToRemote >= dustLimit {
		tx.AddTxOut(&wire.TxOut{
			PkScript: toRemoteScript,
			Value:    int64(amountToRemote),
		})
	}

	log.Debugf("built commitment tx spending %v, to_self=%d to_remote=%d",
		fundingOutpoint, amountToSelf, amountToRemote)

	return tx, nil
}

// SignCommitmentTx signs the commitment transaction's sole input with our
// half of the 2-of-2 funding multisig, returning the spec's fixed-width
// wire signature (spec.md §4.5.1 step 8, §4.5.2 step 8).
func SignCommitmentTx(tx *wire.MsgTx, redeemScript []byte, fundingAmt btcutil.Amount,
	fundingPriv *btcec.PrivateKey) (lnwire.Signature, error) {

	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewCannedPrevOutputFetcher(
		redeemScript, int64(fundingAmt),
	))
	sigHash, err := txscript.CalcWitnessSigHash(
		redeemScript, sigHashes, txscript.SigHashAll, tx, 0, int64(fundingAmt),
	)
	if err != nil {
		return lnwire.Signature{}, fmt.Errorf("computing sighash: %w", err)
	}

	sig := ecdsa.Sign(fundingPriv, sigHash)
	return lnwire.NewSignature(sig), nil
}

// CheckCommitSig verifies the counterparty's signature over our
// commitment transaction against their funding basepoint (spec.md
// §4.5.1 step 9, §4.5.2 step 9).
func CheckCommitSig(tx *wire.MsgTx, redeemScript []byte, fundingAmt btcutil.Amount,
	remoteFundingKey *btcec.PublicKey, sig lnwire.Signature) error {

	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewCannedPrevOutputFetcher(
		redeemScript, int64(fundingAmt),
	))
	sigHash, err := txscript.CalcWitnessSigHash(
		redeemScript, sigHashes, txscript.SigHashAll, tx, 0, int64(fundingAmt),
	)
	if err != nil {
		return fmt.Errorf("computing sighash: %w", err)
	}

	ecdsaSig, err := sig.ToSignature()
	if err != nil {
		return fmt.Errorf("parsing signature: %w", err)
	}
	if !ecdsaSig.Verify(sigHash, remoteFundingKey) {
		return fmt.Errorf("invalid commitment signature")
	}
	return nil
}
