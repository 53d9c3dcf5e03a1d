package policy

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/stretchr/testify/require"
)

func baseBounds() Bounds {
	return Bounds{
		MaxToSelfDelay:               144,
		MinEffectiveHTLCCapacityMSat: lnwire.MilliSatoshi(1),
	}
}

func baseRemoteConfig() lnwire.ChannelConfig {
	return lnwire.ChannelConfig{
		DustLimitSatoshis:    546,
		MaxHTLCValueInFlight: lnwire.MilliSatoshi(990_000_000),
		ChannelReserve:       btcutil.Amount(10_000),
		HTLCMinimumMSat:      lnwire.MilliSatoshi(1000),
		ToSelfDelay:          144,
		MaxAcceptedHTLCs:     483,
	}
}

func TestValidateHappyPath(t *testing.T) {
	err := Validate(baseBounds(), baseRemoteConfig(), btcutil.Amount(10_000), btcutil.Amount(1_000_000))
	require.NoError(t, err)
}

func TestValidateToSelfDelayBoundary(t *testing.T) {
	bounds := baseBounds()

	cfg := baseRemoteConfig()
	cfg.ToSelfDelay = bounds.MaxToSelfDelay
	require.NoError(t, Validate(bounds, cfg, btcutil.Amount(10_000), btcutil.Amount(1_000_000)))

	cfg.ToSelfDelay = bounds.MaxToSelfDelay + 1
	err := Validate(bounds, cfg, btcutil.Amount(10_000), btcutil.Amount(1_000_000))
	require.Error(t, err)
}

func TestValidateChannelReserveBoundary(t *testing.T) {
	bounds := baseBounds()
	funding := btcutil.Amount(1_000_000)

	// A reserve equal to the funding amount leaves zero effective
	// capacity, so the htlc-minimum and minimum-capacity rules are set to
	// zero here to isolate the reserve rule.
	bounds.MinEffectiveHTLCCapacityMSat = 0
	cfg := baseRemoteConfig()
	cfg.HTLCMinimumMSat = 0
	cfg.ChannelReserve = funding
	require.NoError(t, Validate(bounds, cfg, btcutil.Amount(0), funding))

	cfg.ChannelReserve = funding + 1
	require.Error(t, Validate(bounds, cfg, btcutil.Amount(0), funding))
}

func TestValidateMaxAcceptedHTLCsBoundary(t *testing.T) {
	bounds := baseBounds()
	funding := btcutil.Amount(1_000_000)

	for _, n := range []uint16{0, 512} {
		cfg := baseRemoteConfig()
		cfg.MaxAcceptedHTLCs = n
		require.Error(t, Validate(bounds, cfg, btcutil.Amount(10_000), funding))
	}

	for _, n := range []uint16{1, 511} {
		cfg := baseRemoteConfig()
		cfg.MaxAcceptedHTLCs = n
		require.NoError(t, Validate(bounds, cfg, btcutil.Amount(10_000), funding))
	}
}

func TestValidateEffectiveCapacity(t *testing.T) {
	bounds := baseBounds()
	bounds.MinEffectiveHTLCCapacityMSat = lnwire.MilliSatoshi(980_000_000_000)
	funding := btcutil.Amount(1_000_000)

	cfg := baseRemoteConfig()
	err := Validate(bounds, cfg, btcutil.Amount(10_000), funding)
	require.Error(t, err)
}

func TestValidateHTLCMinimumExceedsCapacity(t *testing.T) {
	bounds := baseBounds()
	funding := btcutil.Amount(1_000_000)

	cfg := baseRemoteConfig()
	cfg.HTLCMinimumMSat = lnwire.MilliSatoshi(uint64(funding) * 1000)
	err := Validate(bounds, cfg, btcutil.Amount(10_000), funding)
	require.Error(t, err)
}

func TestValidateHTLCMinimumScaledByThousand(t *testing.T) {
	bounds := baseBounds()
	funding := btcutil.Amount(1_000_000)

	// capacityMSat here is funding_msat - reserve_msat = 1_000_000_000 - 10_000_000
	// = 990_000_000. htlc_minimum_msat=991_000 is well under capacityMSat on
	// its own, so a comparison missing the *1000 factor would wrongly accept
	// it; scaled by 1000 it is 991_000_000, which exceeds capacityMSat.
	cfg := baseRemoteConfig()
	cfg.HTLCMinimumMSat = lnwire.MilliSatoshi(991_000)
	err := Validate(bounds, cfg, btcutil.Amount(10_000), funding)
	require.Error(t, err)
}

func TestLocalReserveRounding(t *testing.T) {
	require.Equal(t, btcutil.Amount(10_000), LocalReserve(btcutil.Amount(1_000_000)))
	require.Equal(t, btcutil.Amount(1), LocalReserve(btcutil.Amount(1)))
	require.Equal(t, btcutil.Amount(2), LocalReserve(btcutil.Amount(101)))
}

func TestPushAmountBoundary(t *testing.T) {
	funding := btcutil.Amount(1_000_000)
	require.True(t, PushAmountInBounds(lnwire.MilliSatoshi(uint64(funding)*1000), funding))
	require.False(t, PushAmountInBounds(lnwire.MilliSatoshi(uint64(funding)*1000+1), funding))
}

func TestFundingAmountBoundary(t *testing.T) {
	require.True(t, FundingAmountInBounds(btcutil.Amount(1<<24-1), 0))
	require.False(t, FundingAmountInBounds(btcutil.Amount(1<<24), 0))
}

func TestFundingAmountMinFloor(t *testing.T) {
	require.False(t, FundingAmountInBounds(btcutil.Amount(99_999), 100_000))
	require.True(t, FundingAmountInBounds(btcutil.Amount(100_000), 100_000))
}

func TestFeerateBounds(t *testing.T) {
	require.True(t, FeerateInBounds(1000, 1000, 100_000))
	require.True(t, FeerateInBounds(100_000, 1000, 100_000))
	require.False(t, FeerateInBounds(999, 1000, 100_000))
	require.False(t, FeerateInBounds(100_001, 1000, 100_000))
}
