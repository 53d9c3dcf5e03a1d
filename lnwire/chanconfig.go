package lnwire

import (
	"io"

	"github.com/btcsuite/btcd/btcutil"
)

// ChannelConfig is the symmetric record both sides of a channel exchange
// (spec.md §3, "Channel Config").
type ChannelConfig struct {
	DustLimitSatoshis    btcutil.Amount
	MaxHTLCValueInFlight MilliSatoshi
	ChannelReserve       btcutil.Amount
	HTLCMinimumMSat      MilliSatoshi
	ToSelfDelay          uint16
	MaxAcceptedHTLCs     uint16

	// MinimumDepth is only meaningful on the fundee side (spec.md §3:
	// "only sent by fundee").
	MinimumDepth uint32
}

func writeChannelConfig(w io.Writer, c ChannelConfig) error {
	if err := writeSatoshi(w, c.DustLimitSatoshis); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, c.MaxHTLCValueInFlight); err != nil {
		return err
	}
	if err := writeSatoshi(w, c.ChannelReserve); err != nil {
		return err
	}
	if err := writeMilliSatoshi(w, c.HTLCMinimumMSat); err != nil {
		return err
	}
	if err := writeUint16(w, c.ToSelfDelay); err != nil {
		return err
	}
	if err := writeUint16(w, c.MaxAcceptedHTLCs); err != nil {
		return err
	}
	return writeUint32(w, c.MinimumDepth)
}

func readChannelConfig(r io.Reader) (ChannelConfig, error) {
	var c ChannelConfig
	var err error

	if c.DustLimitSatoshis, err = readSatoshi(r); err != nil {
		return c, err
	}
	if c.MaxHTLCValueInFlight, err = readMilliSatoshi(r); err != nil {
		return c, err
	}
	if c.ChannelReserve, err = readSatoshi(r); err != nil {
		return c, err
	}
	if c.HTLCMinimumMSat, err = readMilliSatoshi(r); err != nil {
		return c, err
	}
	if c.ToSelfDelay, err = readUint16(r); err != nil {
		return c, err
	}
	if c.MaxAcceptedHTLCs, err = readUint16(r); err != nil {
		return c, err
	}
	c.MinimumDepth, err = readUint32(r)
	return c, err
}

// ConfigFromOpenChannel extracts the remote ChannelConfig carried on an
// OpenChannel message (no MinimumDepth — the funder never sends one).
func ConfigFromOpenChannel(o *OpenChannel) ChannelConfig {
	return ChannelConfig{
		DustLimitSatoshis:    o.DustLimitSatoshis,
		MaxHTLCValueInFlight: o.MaxHTLCValueInFlight,
		ChannelReserve:       o.ChannelReserve,
		HTLCMinimumMSat:      o.HTLCMinimumMSat,
		ToSelfDelay:          o.ToSelfDelay,
		MaxAcceptedHTLCs:     o.MaxAcceptedHTLCs,
	}
}

// ConfigFromAcceptChannel extracts the remote ChannelConfig carried on an
// AcceptChannel message, including MinimumDepth.
func ConfigFromAcceptChannel(a *AcceptChannel) ChannelConfig {
	return ChannelConfig{
		DustLimitSatoshis:    a.DustLimitSatoshis,
		MaxHTLCValueInFlight: a.MaxHTLCValueInFlight,
		ChannelReserve:       a.ChannelReserve,
		HTLCMinimumMSat:      a.HTLCMinimumMSat,
		ToSelfDelay:          a.ToSelfDelay,
		MaxAcceptedHTLCs:     a.MaxAcceptedHTLCs,
		MinimumDepth:         a.MinimumDepth,
	}
}
