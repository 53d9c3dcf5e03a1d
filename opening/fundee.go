package opening

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/openingd/commitment"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/lightningnetwork/openingd/policy"
	"github.com/lightningnetwork/openingd/transport"
)

// RunFundee drives the straight-line fundee state machine of spec.md
// §4.5.2: START_WITH_OPEN → VALIDATED → SENT_ACCEPT →
// GOT_FUNDING_CREATED → SENT_FUNDING_SIGNED → DONE.
func RunFundee(ctx *Context, cmd *lnwire.Accept, peer *transport.Stream, statusW io.Writer) error {
	log.Infof("starting fundee handshake")

	open, err := decodeInitialOpen(cmd.InitialPeerMsg)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrPeerBadInitialMessage,
			"parsing open_channel: %v", err))
	}

	if !policy.FundingAmountInBounds(open.FundingSatoshis, ctx.Bounds.MinFundingSatoshis) ||
		!policy.PushAmountInBounds(open.PushMSat, open.FundingSatoshis) ||
		!policy.FeerateInBounds(open.FeeratePerKw, cmd.MinFeerate, cmd.MaxFeerate) {

		return emit(statusW, fail(lnwire.ErrPeerBadFunding,
			"funding_satoshis=%d push_msat=%d feerate_per_kw=%d outside bounds",
			open.FundingSatoshis, open.PushMSat, open.FeeratePerKw))
	}

	localReserve := policy.LocalReserve(open.FundingSatoshis)
	remoteConfig := lnwire.ConfigFromOpenChannel(open)
	if err := policy.Validate(ctx.Bounds, remoteConfig, localReserve, open.FundingSatoshis); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerBadConfig, "%v", err))
	}

	accept := &lnwire.AcceptChannel{
		TemporaryChannelID:      open.TemporaryChannelID,
		DustLimitSatoshis:       ctx.LocalConfig.DustLimitSatoshis,
		MaxHTLCValueInFlight:    ctx.LocalConfig.MaxHTLCValueInFlight,
		ChannelReserve:          localReserve,
		HTLCMinimumMSat:         ctx.LocalConfig.HTLCMinimumMSat,
		MinimumDepth:            ctx.LocalConfig.MinimumDepth,
		ToSelfDelay:             ctx.LocalConfig.ToSelfDelay,
		MaxAcceptedHTLCs:        ctx.LocalConfig.MaxAcceptedHTLCs,
		FundingKey:              ctx.Keys.Basepoints.FundingKey,
		RevocationBasePoint:     ctx.Keys.Basepoints.RevocationBasePoint,
		PaymentBasePoint:        ctx.Keys.Basepoints.PaymentBasePoint,
		DelayedPaymentBasePoint: ctx.Keys.Basepoints.DelayedPaymentBasePoint,
		HTLCBasePoint:           ctx.Keys.Basepoints.PaymentBasePoint,
		FirstPerCommitPoint:     ctx.Keys.FirstPerCommitPoint,
	}
	if err := peer.WritePeerMessage(accept); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerWriteFailed,
			"writing accept_channel: %v", err))
	}

	peerMsg, err := peer.ReadPeerMessage()
	if err != nil {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"reading funding_created: %v", err))
	}
	fundingCreated, ok := peerMsg.(*lnwire.FundingCreated)
	if !ok {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"expected funding_created, got message type %d", peerMsg.MsgType()))
	}
	if fundingCreated.TemporaryChannelID != open.TemporaryChannelID {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"funding_created temporary_channel_id mismatch"))
	}

	fundingOutpoint := wire.OutPoint{
		Hash:  fundingCreated.FundingTxid,
		Index: uint32(fundingCreated.FundingOutputIndex),
	}
	redeemScript, _, err := commitment.FundingRedeemScript(
		open.FundingKey, ctx.Keys.Basepoints.FundingKey, open.FundingSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"constructing funding redeem script: %v", err))
	}

	funderBalance := open.FundingSatoshis - amountFromMSat(open.PushMSat)
	ourBalance := amountFromMSat(open.PushMSat)

	localRing := commitment.DeriveKeyRing(
		commitment.Local, ctx.Keys.FirstPerCommitPoint,
		ctx.Keys.Basepoints, basepointsFromOpen(open),
	)
	localCommitTx, err := commitment.BuildCommitmentTx(
		fundingOutpoint, localRing, ctx.LocalConfig.ToSelfDelay,
		ourBalance, funderBalance, ctx.LocalConfig.DustLimitSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"building local commitment tx: %v", err))
	}
	if err := commitment.CheckCommitSig(
		localCommitTx, redeemScript, open.FundingSatoshis,
		open.FundingKey, fundingCreated.Signature,
	); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerReadFailed,
			"funding_created signature invalid: %v", err))
	}

	remoteRing := commitment.DeriveKeyRing(
		commitment.Remote, open.FirstPerCommitPoint,
		ctx.Keys.Basepoints, basepointsFromOpen(open),
	)
	remoteCommitTx, err := commitment.BuildCommitmentTx(
		fundingOutpoint, remoteRing, open.ToSelfDelay,
		funderBalance, ourBalance, remoteConfig.DustLimitSatoshis,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"building remote commitment tx: %v", err))
	}
	ourSig, err := commitment.SignCommitmentTx(
		remoteCommitTx, redeemScript, open.FundingSatoshis, ctx.Keys.Secrets.FundingKey,
	)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadParam,
			"signing remote commitment tx: %v", err))
	}

	fundingSigned := &lnwire.FundingSigned{
		ChannelID: open.TemporaryChannelID,
		Signature: ourSig,
	}
	if err := peer.WritePeerMessage(fundingSigned); err != nil {
		return emit(statusW, fail(lnwire.ErrPeerWriteFailed,
			"writing funding_signed: %v", err))
	}

	log.Infof("fundee handshake complete, temporary_channel_id=%x", open.TemporaryChannelID)

	return lnwire.WriteStatusMessage(statusW, &lnwire.AcceptResp{
		TemporaryChannelID: open.TemporaryChannelID,
		LocalFundingPubkey: ctx.Keys.Basepoints.FundingKey,
		RemoteConfig:       remoteConfig,
		RemoteBasepoints:   basepointsFromOpen(open),
		FundingTxid:        fundingCreated.FundingTxid,
		FundingOutputIndex: fundingCreated.FundingOutputIndex,
		PeerSignature:      fundingCreated.Signature,
		NextPerCommitPoint: open.FirstPerCommitPoint,
		CryptoState:        peer.State(),
	})
}

// decodeInitialOpen parses the raw open_channel bytes the parent
// forwarded on the accept command (spec.md §4.2: "the already-received
// peer message that triggered this path").
func decodeInitialOpen(raw []byte) (*lnwire.OpenChannel, error) {
	msg, err := lnwire.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	open, ok := msg.(*lnwire.OpenChannel)
	if !ok {
		return nil, fmt.Errorf("expected open_channel, got message type %d", msg.MsgType())
	}
	return open, nil
}
