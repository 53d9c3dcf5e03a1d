package commitment

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/openingd/keychain"
	"github.com/stretchr/testify/require"
)

func privKey(t *testing.T, seed byte) *btcec.PrivateKey {
	t.Helper()
	var raw [32]byte
	raw[31] = seed
	priv, _ := btcec.PrivKeyFromBytes(raw[:])
	return priv
}

func basepoints(t *testing.T, offset byte) keychain.Basepoints {
	t.Helper()
	return keychain.Basepoints{
		FundingKey:              privKey(t, offset+1).PubKey(),
		RevocationBasePoint:     privKey(t, offset+2).PubKey(),
		PaymentBasePoint:        privKey(t, offset+3).PubKey(),
		DelayedPaymentBasePoint: privKey(t, offset+4).PubKey(),
	}
}

func TestDeriveKeyRingDiffersByViewpoint(t *testing.T) {
	local := basepoints(t, 0)
	remote := basepoints(t, 10)
	commitPoint := privKey(t, 99).PubKey()

	localRing := DeriveKeyRing(Local, commitPoint, local, remote)
	remoteRing := DeriveKeyRing(Remote, commitPoint, local, remote)

	require.False(t, localRing.ToLocalKey.IsEqual(remoteRing.ToLocalKey))
	require.False(t, localRing.RevocationKey.IsEqual(remoteRing.RevocationKey))
}

func TestFundingRedeemScriptAndOutput(t *testing.T) {
	localFunding := privKey(t, 1).PubKey()
	remoteFunding := privKey(t, 2).PubKey()

	redeemScript, txOut, err := FundingRedeemScript(localFunding, remoteFunding, btcutil.Amount(1_000_000))
	require.NoError(t, err)
	require.NotEmpty(t, redeemScript)
	require.Equal(t, int64(1_000_000), txOut.Value)
}

func TestBuildCommitmentTxOmitsDust(t *testing.T) {
	local := basepoints(t, 0)
	remote := basepoints(t, 10)
	commitPoint := privKey(t, 99).PubKey()
	ring := DeriveKeyRing(Local, commitPoint, local, remote)

	outpoint := wire.OutPoint{Index: 0}

	tx, err := BuildCommitmentTx(
		outpoint, ring, 144,
		btcutil.Amount(900_000), btcutil.Amount(200),
		btcutil.Amount(546),
	)
	require.NoError(t, err)
	require.Len(t, tx.TxOut, 1)
	require.Equal(t, int64(900_000), tx.TxOut[0].Value)
}

func TestSignAndCheckCommitSig(t *testing.T) {
	localFundingPriv := privKey(t, 1)
	remoteFundingPriv := privKey(t, 2)

	redeemScript, _, err := FundingRedeemScript(
		localFundingPriv.PubKey(), remoteFundingPriv.PubKey(), btcutil.Amount(1_000_000),
	)
	require.NoError(t, err)

	local := basepoints(t, 0)
	remote := basepoints(t, 10)
	commitPoint := privKey(t, 99).PubKey()
	ring := DeriveKeyRing(Remote, commitPoint, local, remote)

	tx, err := BuildCommitmentTx(
		wire.OutPoint{Index: 0}, ring, 144,
		btcutil.Amount(900_000), btcutil.Amount(90_000),
		btcutil.Amount(546),
	)
	require.NoError(t, err)

	sig, err := SignCommitmentTx(tx, redeemScript, btcutil.Amount(1_000_000), remoteFundingPriv)
	require.NoError(t, err)

	err = CheckCommitSig(tx, redeemScript, btcutil.Amount(1_000_000), remoteFundingPriv.PubKey(), sig)
	require.NoError(t, err)

	// Flip a byte and confirm verification fails.
	sig[0] ^= 0xff
	err = CheckCommitSig(tx, redeemScript, btcutil.Amount(1_000_000), remoteFundingPriv.PubKey(), sig)
	require.Error(t, err)
}
