// Package keychain expands the subsystem's root seed into the basepoints,
// scalars, and shaseed a channel negotiation needs.
package keychain

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/hkdf"

	"github.com/lightningnetwork/openingd/shachain"
)

// SeedSize is the size, in bytes, of the root seed the parent hands to the
// subsystem at init.
const SeedSize = 32

// hkdfSalt and hkdfInfo fix the application-specific HKDF parameters. Any
// fixed, documented string satisfies the derivation; these particular bytes
// have no significance beyond domain-separating this subsystem's key
// material from anything else that might derive from the same root seed.
const (
	hkdfSalt = "lnd-opening-subsystem"
	hkdfInfo = "basepoints"
)

// expandedSize is 4 scalars plus the shaseed, 32 bytes each.
const expandedSize = 4*32 + 32

// Basepoints holds the four public curve points a side reveals to its
// counterparty during channel negotiation (spec.md §3, "Basepoint Set").
type Basepoints struct {
	FundingKey               *btcec.PublicKey
	RevocationBasePoint      *btcec.PublicKey
	PaymentBasePoint         *btcec.PublicKey
	DelayedPaymentBasePoint  *btcec.PublicKey
}

// LocalSecrets holds the private scalars backing Basepoints plus the
// shaseed that drives the per-commitment hash chain. The subsystem owns
// these for its entire run and must Zero them on teardown.
type LocalSecrets struct {
	FundingKey              *btcec.PrivateKey
	RevocationBaseSecret    *btcec.PrivateKey
	PaymentBaseSecret       *btcec.PrivateKey
	DelayedPaymentBaseSecret *btcec.PrivateKey
	ShaSeed                 [32]byte
}

// KeySet bundles a side's secrets, public basepoints, and first
// per-commitment point — the full output of Derive.
type KeySet struct {
	Secrets    LocalSecrets
	Basepoints Basepoints

	// FirstPerCommitPoint is the public point for commitment index 0,
	// i.e. per_commit_point(2^48-1) from ShaSeed (spec.md §3, §4.1).
	FirstPerCommitPoint *btcec.PublicKey
}

// Error is returned, wrapped, whenever derivation produces an invalid
// scalar or point. The caller surfaces this as the fatal
// KEY_DERIVATION_FAILED status (spec.md §4.1, §7).
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("key derivation failed: %s", e.Reason)
}

// Derive expands a 256-bit root seed into a full KeySet. Derivation is
// deterministic: the same seed always yields the same KeySet (spec.md §8).
func Derive(seed [SeedSize]byte) (*KeySet, error) {
	reader := hkdf.New(sha256.New, seed[:], []byte(hkdfSalt), []byte(hkdfInfo))

	var expanded [expandedSize]byte
	if _, err := io.ReadFull(reader, expanded[:]); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("hkdf expansion: %v", err)}
	}

	fundingKey, err := scalar(expanded[0:32])
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("funding key: %v", err)}
	}
	revocationSecret, err := scalar(expanded[32:64])
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("revocation base secret: %v", err)}
	}
	paymentSecret, err := scalar(expanded[64:96])
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("payment base secret: %v", err)}
	}
	delayedSecret, err := scalar(expanded[96:128])
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("delayed payment base secret: %v", err)}
	}

	var shaseed [32]byte
	copy(shaseed[:], expanded[128:160])

	firstPoint, err := shachain.PerCommitPoint(shaseed, shachain.FirstCommitIndex)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("first per-commitment point: %v", err)}
	}

	log.Debugf("derived key set, funding_pubkey=%x", fundingKey.PubKey().SerializeCompressed())

	return &KeySet{
		Secrets: LocalSecrets{
			FundingKey:               fundingKey,
			RevocationBaseSecret:     revocationSecret,
			PaymentBaseSecret:        paymentSecret,
			DelayedPaymentBaseSecret: delayedSecret,
			ShaSeed:                  shaseed,
		},
		Basepoints: Basepoints{
			FundingKey:              fundingKey.PubKey(),
			RevocationBasePoint:     revocationSecret.PubKey(),
			PaymentBasePoint:        paymentSecret.PubKey(),
			DelayedPaymentBasePoint: delayedSecret.PubKey(),
		},
		FirstPerCommitPoint: firstPoint,
	}, nil
}

// scalar parses 32 bytes as a secp256k1 private scalar, rejecting zero and
// out-of-range values — the "invalid scalar" fatal case spec.md §4.1 names.
func scalar(b []byte) (*btcec.PrivateKey, error) {
	var modN btcec.ModNScalar
	overflow := modN.SetByteSlice(b)
	if overflow || modN.IsZero() {
		return nil, fmt.Errorf("scalar out of range or zero")
	}

	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv, nil
}

// Zero overwrites every secret scalar and the shaseed with zero bytes. It
// must be called on teardown (spec.md §3: "Exclusively owned by the
// subsystem for its lifetime; zeroized on exit").
func (k *LocalSecrets) Zero() {
	log.Debugf("zeroing local secrets")
	zeroScalar(k.FundingKey)
	zeroScalar(k.RevocationBaseSecret)
	zeroScalar(k.PaymentBaseSecret)
	zeroScalar(k.DelayedPaymentBaseSecret)
	for i := range k.ShaSeed {
		k.ShaSeed[i] = 0
	}
}

func zeroScalar(priv *btcec.PrivateKey) {
	if priv == nil {
		return
	}
	priv.Zero()
}
