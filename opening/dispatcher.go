package opening

import (
	"io"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/lightningnetwork/openingd/transport"
)

// Dispatch implements spec.md §4.6: read init, derive keys, read the
// role-selecting command, run the matching driver to completion, then
// wait for exit_req before returning. It returns the *lnwire.Status
// already written to statusW as a plain error — the caller maps that to
// a process exit code — or nil on clean shutdown.
func Dispatch(controlR io.Reader, statusW io.Writer, peerRW io.ReadWriter, clk clock.Clock) error {
	first, err := lnwire.ReadControlMessage(controlR)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadCommand, "reading init: %v", err))
	}
	init, ok := first.(*lnwire.Init)
	if !ok {
		return emit(statusW, fail(lnwire.ErrBadCommand,
			"expected init, got control kind %d", first.Kind()))
	}

	ctx, err := NewContext(init)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrKeyDerivationFailed, "%v", err))
	}
	defer ctx.Keys.Secrets.Zero()

	peer := transport.New(peerRW, init.InitialCryptoState, clk, 0)

	roleCmd, err := lnwire.ReadControlMessage(controlR)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadCommand, "reading open/accept: %v", err))
	}

	switch cmd := roleCmd.(type) {
	case *lnwire.Open:
		if err := RunFunder(ctx, cmd, peer, controlR, statusW); err != nil {
			return err
		}
	case *lnwire.Accept:
		if err := RunFundee(ctx, cmd, peer, statusW); err != nil {
			return err
		}
	default:
		return emit(statusW, fail(lnwire.ErrBadCommand,
			"expected open or accept, got control kind %d", roleCmd.Kind()))
	}

	exit, err := lnwire.ReadControlMessage(controlR)
	if err != nil {
		return emit(statusW, fail(lnwire.ErrBadCommand, "reading exit_req: %v", err))
	}
	if _, ok := exit.(*lnwire.ExitReq); !ok {
		return emit(statusW, fail(lnwire.ErrBadCommand,
			"expected exit_req, got control kind %d", exit.Kind()))
	}

	return nil
}
