package opening

import (
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/openingd/commitment"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/lightningnetwork/openingd/policy"
	"github.com/lightningnetwork/openingd/shachain"
	"github.com/lightningnetwork/openingd/transport"
)

// RunFunder drives the straight-line funder state machine of spec.md
// §4.5.1: START → SENT_OPEN → GOT_ACCEPT → WAIT_FUNDING_OUTPOINT →
// SENT_FUNDING_CREATED → GOT_FUNDING_SIGNED → DONE.
//
// controlR is the remaining control-channel stream after the open
// command that selected this path; statusW is the status channel. Any
// failure writes exactly one *lnwire.Status to statusW before
// returning.
func RunFunder(ctx *Context, cmd *lnwire.Open, peer *transport.Stream, controlR io.Reader, statusW io.Writer) error {
	log.Infof("starting funder handshake, funding_satoshis=%d push_msat=%d",
		cmd.FundingSatoshis, cmd.PushMSat)

	localReserve := policy.LocalReserve(cmd.FundingSatoshis)

	tempChanID, err := newTemporaryChannelID()
	if err != nil {
		return emit(statusW, fail(lnwire.ErrKeyDerivationFailed,
			"generating temporary_channel_id: %v", err))
	}

	if !policy.FundingAmountInBounds(cmd.FundingSatoshis, ctx.Bounds.MinFundingSatoshis) {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"funding_satoshis %d not below 2^24 or below min_funding_satoshis %d",
			cmd.FundingSatoshis, ctx.Bounds.MinFundingSatoshis))
	}
	if !policy.PushAmountInBounds(cmd.PushMSat, cmd.FundingSatoshis) {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"push_msat %d exceeds funding value %d msat",
			cmd.PushMSat, uint64(cmd.FundingSatoshis)*1000))
	}

	open := &lnwire.OpenChannel{
		ChainHash:               ctx.ChainHash,
		TemporaryChannelID:      tempChanID,
		FundingSatoshis:         cmd.FundingSatoshis,
		PushMSat:                cmd.PushMSat,
		DustLimitSatoshis:       ctx.LocalConfig.DustLimitSatoshis,
		MaxHTLCValueInFlight:    ctx.LocalConfig.MaxHTLCValueInFlight,
		ChannelReserve:          localReserve,
		HTLCMinimumMSat:         ctx.LocalConfig.HTLCMinimumMSat,
		FeeratePerKw:            cmd.FeeratePerKw,
		ToSelfDelay:             ctx.LocalConfig.ToSelfDelay,
		MaxAcceptedHTLCs:        ctx.LocalConfig.MaxAcceptedHTLCs,
		FundingKey:              ctx.Keys.Basepoints.FundingKey,
		RevocationBasePoint:     ctx.Keys.Basepoints.RevocationBasePoint,
		PaymentBasePoint:        ctx.Keys.Basepoints.PaymentBasePoint,
		DelayedPaymentBasePoint: ctx.Keys.Basepoints.DelayedPaymentBasePoint,
		HTLCBasePoint:           ctx.Keys.Basepoints.PaymentBasePoint,
		FirstPerCommitPoint:     ctx.Keys.FirstPerCommitPoint,
	}
	if err := peer.WritePeerMessage(open); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerWriteFailed,
			"writing open_channel: %v", err))
	}

	peerMsg, err := peer.ReadPeerMessage()
	if err != nil {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"reading accept_channel: %v", err))
	}
	accept, ok := peerMsg.(*lnwire.AcceptChannel)
	if !ok {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"expected accept_channel, got message type %d", peerMsg.MsgType()))
	}
	if accept.TemporaryChannelID != tempChanID {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"accept_channel temporary_channel_id mismatch"))
	}
	if accept.MinimumDepth > cmd.MaxMinimumDepth {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"minimum_depth %d exceeds max_minimum_depth %d",
			accept.MinimumDepth, cmd.MaxMinimumDepth))
	}

	remoteConfig := lnwire.ConfigFromAcceptChannel(accept)
	if err := policy.Validate(ctx.Bounds, remoteConfig, localReserve, cmd.FundingSatoshis); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerBadConfig, "%v", err))
	}

	if err := lnwire.WriteStatusMessage(statusW, &lnwire.OpenResp{
		TemporaryChannelID:  tempChanID,
		LocalFundingPubkey:  ctx.Keys.Basepoints.FundingKey,
		RemoteFundingPubkey: accept.FundingKey,
		RemoteConfig:        remoteConfig,
		RemoteBasepoints:    basepointsFromAccept(accept),
	}); err != nil {
		return err
	}

	fundingCmd, err := lnwire.ReadControlMessage(controlR)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadCommand,
			"reading open_funding: %v", err))
	}
	openFunding, ok := fundingCmd.(*lnwire.OpenFunding)
	if !ok {
		return emit(statusW, fail(lnwire.ErrBadCommand,
			"expected open_funding, got control kind %d", fundingCmd.Kind()))
	}

	fundingOutpoint := wire.OutPoint{
		Hash:  openFunding.FundingTxid,
		Index: uint32(openFunding.FundingTxoutIndex),
	}
	redeemScript, _, err := commitment.FundingRedeemScript(
		ctx.Keys.Basepoints.FundingKey, accept.FundingKey, cmd.FundingSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"constructing funding redeem script: %v", err))
	}

	ourBalance := cmd.FundingSatoshis - amountFromMSat(cmd.PushMSat)
	theirBalance := amountFromMSat(cmd.PushMSat)

	remoteRing := commitment.DeriveKeyRing(
		commitment.Remote, accept.FirstPerCommitPoint,
		ctx.Keys.Basepoints, basepointsFromAccept(accept),
	)
	remoteCommitTx, err := commitment.BuildCommitmentTx(
		fundingOutpoint, remoteRing, accept.ToSelfDelay,
		theirBalance, ourBalance, remoteConfig.DustLimitSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"building remote commitment tx: %v", err))
	}
	remoteSig, err := commitment.SignCommitmentTx(
		remoteCommitTx, redeemScript, cmd.FundingSatoshis, ctx.Keys.Secrets.FundingKey,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"signing remote commitment tx: %v", err))
	}

	fundingCreated := &lnwire.FundingCreated{
		TemporaryChannelID: tempChanID,
		FundingTxid:        openFunding.FundingTxid,
		FundingOutputIndex: openFunding.FundingTxoutIndex,
		Signature:          remoteSig,
	}
	if err := peer.WritePeerMessage(fundingCreated); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerWriteFailed,
			"writing funding_created: %v", err))
	}

	peerMsg, err = peer.ReadPeerMessage()
	if err != nil {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"reading funding_signed: %v", err))
	}
	fundingSigned, ok := peerMsg.(*lnwire.FundingSigned)
	if !ok {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"expected funding_signed, got message type %d", peerMsg.MsgType()))
	}
	if fundingSigned.ChannelID != tempChanID {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"funding_signed channel id mismatch"))
	}

	localRing := commitment.DeriveKeyRing(
		commitment.Local, ctx.Keys.FirstPerCommitPoint,
		ctx.Keys.Basepoints, basepointsFromAccept(accept),
	)
	localCommitTx, err := commitment.BuildCommitmentTx(
		fundingOutpoint, localRing, ctx.LocalConfig.ToSelfDelay,
		ourBalance, theirBalance, ctx.LocalConfig.DustLimitSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"building local commitment tx: %v", err))
	}
	if err := commitment.CheckCommitSig(
		localCommitTx, redeemScript, cmd.FundingSatoshis,
		accept.FundingKey, fundingSigned.Signature,
	); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"funding_signed signature invalid: %v", err))
	}

	nextPerCommitPoint, err := shachain.PerCommitPoint(
		ctx.Keys.Secrets.ShaSeed, shachain.FirstCommitIndex-1,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrKeyDerivationFailed,
			"deriving next_per_commitment_point: %v", err))
	}

	log.Infof("funder handshake complete, temporary_channel_id=%x", tempChanID)

	return lnwire.WriteStatusMessage(statusW, &lnwire.OpenFundingResp{
		TemporaryChannelID: tempChanID,
		RemoteConfig:       remoteConfig,
		RemoteBasepoints:   basepointsFromAccept(accept),
		PeerSignature:      fundingSigned.Signature,
		NextPerCommitPoint: nextPerCommitPoint,
		CryptoState:        peer.State(),
	})
}

func emit(statusW io.Writer, status *lnwire.Status) error {
	if err := lnwire.WriteStatusMessage(statusW, status); err != nil {
		return err
	}
	return status
}
