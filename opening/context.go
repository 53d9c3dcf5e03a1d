// Package opening drives the two straight-line handshake state machines
// (funder and fundee) of spec.md §4.5 and the dispatcher that selects
// between them (spec.md §4.6).
package opening

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/lightningnetwork/openingd/policy"
)

// Context holds everything the init command establishes before either
// driver can run: the local policy bounds, the local channel config
// template, the chain this channel opens on, and the derived key set
// (spec.md §4.5.1 step 1 covers the reserve; steps 2+ draw on these
// fixed values throughout).
type Context struct {
	ChainHash   chainhash.Hash
	LocalConfig lnwire.ChannelConfig
	Bounds      policy.Bounds
	Keys        *keychain.KeySet
}

// NewContext derives keys from the init command's root seed and
// assembles the shared per-handshake context (spec.md §4.1, §4.5).
func NewContext(init *lnwire.Init) (*Context, error) {
	keys, err := keychain.Derive(init.RootSeed)
	if err != nil {
		return nil, err
	}

	return &Context{
		ChainHash:   init.ChainHash,
		LocalConfig: init.LocalConfig,
		Bounds: policy.Bounds{
			MaxToSelfDelay:               init.MaxToSelfDelay,
			MinEffectiveHTLCCapacityMSat: init.MinEffectiveHTLCCapacityMSat,
			MinFundingSatoshis:           init.MinFundingSatoshis,
		},
		Keys: keys,
	}, nil
}
