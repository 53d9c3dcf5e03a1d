package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/stretchr/testify/require"
)

func TestStreamWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	stream := New(&buf, []byte{0x01, 0x02}, clock.NewTestClock(time.Unix(0, 0)), 0)

	msg := &lnwire.FundingSigned{}
	msg.ChannelID[0] = 0xaa
	msg.Signature[0] = 0x7f

	require.NoError(t, stream.WritePeerMessage(msg))

	got, err := stream.ReadPeerMessage()
	require.NoError(t, err)

	signed, ok := got.(*lnwire.FundingSigned)
	require.True(t, ok)
	require.Equal(t, msg.ChannelID, signed.ChannelID)
	require.Equal(t, msg.Signature, signed.Signature)
}

func TestStreamStatePreserved(t *testing.T) {
	var buf bytes.Buffer
	initial := []byte{0xde, 0xad}
	stream := New(&buf, initial, clock.NewTestClock(time.Unix(0, 0)), 0)

	require.Equal(t, initial, stream.State())
}
