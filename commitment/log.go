package commitment

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger, disabled until the host
// binary calls UseLogger (mirrors the teacher's per-package logging
// convention).
var log = btclog.Disabled

// UseLogger sets the logger used by this package. Should be called
// before this package's functions are used, typically during package
// init.
func UseLogger(l btclog.Logger) {
	log = l
}
