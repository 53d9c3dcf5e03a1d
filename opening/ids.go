package opening

import "crypto/rand"

// newTemporaryChannelID generates a fresh 32-byte id with the
// most-significant bit set, satisfying BOLT #2's "unique from any other
// channel id with the same peer" requirement without the fixed
// all-ones value original_source/opening.c relied on (sound there only
// because that implementation supports at most one channel per peer
// instance; see SPEC_FULL.md Open Question resolutions).
func newTemporaryChannelID() ([32]byte, error) {
	var id [32]byte
	if _, err := rand.Read(id[:]); err != nil {
		return id, err
	}
	id[0] |= 0x80
	return id, nil
}
