// Package policy enforces the protocol bounds and local policy a
// counterparty's proposed channel config must satisfy before the
// subsystem will sign a commitment transaction (spec.md §4.3).
package policy

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/openingd/lnwire"
)

// Bounds carries the local policy the parent supplied at init (spec.md
// §3, "Local Policy Bounds").
type Bounds struct {
	MaxToSelfDelay               uint16
	MinEffectiveHTLCCapacityMSat lnwire.MilliSatoshi

	// MinFundingSatoshis is an operator-set floor beneath
	// FundingAmountInBounds' protocol ceiling. Zero means no floor.
	MinFundingSatoshis btcutil.Amount
}

// Error reports which rule the remote config violated, and the values
// that violated it (spec.md §4.3: "a diagnostic string identifying the
// violated rule and offending values").
type Error struct {
	Rule string
}

func (e *Error) Error() string { return e.Rule }

const (
	minAcceptedHTLCs = 1
	maxAcceptedHTLCs = 511
)

// Validate checks a remote ChannelConfig against the local Bounds and
// the funding amount both sides are committing to, implementing the six
// rules of spec.md §4.3. localReserve is the reserve this side is
// imposing on the remote (spec.md §4.5's "1% rule").
func Validate(bounds Bounds, remote lnwire.ChannelConfig, localReserve btcutil.Amount, fundingSatoshis btcutil.Amount) error {
	if remote.ToSelfDelay > bounds.MaxToSelfDelay {
		return &Error{Rule: fmt.Sprintf(
			"to_self_delay %d exceeds max_to_self_delay %d",
			remote.ToSelfDelay, bounds.MaxToSelfDelay,
		)}
	}

	if remote.ChannelReserve > fundingSatoshis {
		return &Error{Rule: fmt.Sprintf(
			"channel_reserve_satoshis %d exceeds funding_satoshis %d",
			remote.ChannelReserve, fundingSatoshis,
		)}
	}

	reserve := remote.ChannelReserve
	if localReserve > reserve {
		reserve = localReserve
	}
	reserveMSat := lnwire.MilliSatoshi(reserve) * 1000

	fundingMSat := lnwire.MilliSatoshi(fundingSatoshis) * 1000
	if reserveMSat > fundingMSat {
		return &Error{Rule: fmt.Sprintf(
			"reserve_msat %d exceeds funding capacity %d msat",
			reserveMSat, fundingMSat,
		)}
	}
	capacityMSat := fundingMSat - reserveMSat
	if remote.MaxHTLCValueInFlight < capacityMSat {
		capacityMSat = remote.MaxHTLCValueInFlight
	}

	if remote.HTLCMinimumMSat*1000 > capacityMSat {
		return &Error{Rule: fmt.Sprintf(
			"htlc_minimum_msat %d exceeds effective capacity %d msat",
			remote.HTLCMinimumMSat, capacityMSat,
		)}
	}

	if capacityMSat < bounds.MinEffectiveHTLCCapacityMSat {
		return &Error{Rule: fmt.Sprintf(
			"effective capacity %d msat below min_effective_htlc_capacity_msat %d",
			capacityMSat, bounds.MinEffectiveHTLCCapacityMSat,
		)}
	}

	if remote.MaxAcceptedHTLCs < minAcceptedHTLCs || remote.MaxAcceptedHTLCs > maxAcceptedHTLCs {
		return &Error{Rule: fmt.Sprintf(
			"max_accepted_htlcs %d outside [%d, %d]",
			remote.MaxAcceptedHTLCs, minAcceptedHTLCs, maxAcceptedHTLCs,
		)}
	}

	log.Debugf("remote channel config accepted, funding_satoshis=%d reserve=%d",
		fundingSatoshis, reserve)

	return nil
}

// LocalReserve computes the 1% local reserve rule shared by both the
// funder and fundee paths (spec.md §4.5 step 1 / step 3): ceil(funding /
// 100).
func LocalReserve(fundingSatoshis btcutil.Amount) btcutil.Amount {
	return (fundingSatoshis + 99) / 100
}

// FeerateInBounds checks the fundee-side feerate acceptance window
// (spec.md §4.3: "feerate_per_kw ∈ [min_feerate, max_feerate]").
func FeerateInBounds(feeratePerKw, minFeerate, maxFeerate uint32) bool {
	return feeratePerKw >= minFeerate && feeratePerKw <= maxFeerate
}

const maxFundingSatoshis = 1 << 24

// FundingAmountInBounds checks the shared funder/fundee funding-size cap
// (spec.md §4.5: "funding_satoshis < 2^24") and, if the operator set one,
// the local MinFundingSatoshis floor (an Open Question resolution: left
// as operator policy, defaulting to no floor).
func FundingAmountInBounds(fundingSatoshis, minFundingSatoshis btcutil.Amount) bool {
	if minFundingSatoshis > 0 && fundingSatoshis < minFundingSatoshis {
		return false
	}
	return fundingSatoshis < maxFundingSatoshis
}

// PushAmountInBounds checks push_msat never exceeds the full funding
// value (spec.md §4.3 rule 1, §4.5: "push_msat ≤ 1000·funding_satoshis").
func PushAmountInBounds(pushMSat lnwire.MilliSatoshi, fundingSatoshis btcutil.Amount) bool {
	return uint64(pushMSat) <= uint64(fundingSatoshis)*1000
}
