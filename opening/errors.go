package opening

import (
	goerrors "github.com/go-errors/errors"

	"github.com/lightningnetwork/openingd/lnwire"
)

// fail wraps a typed error kind and a diagnostic into a *lnwire.Status,
// ready to be written to the status channel (spec.md §7: "Each failure
// site attaches a human-readable diagnostic... emits the typed message,
// and terminates"). The diagnostic is formatted with go-errors, but only
// its message string is kept; the stack trace is not retained or logged.
func fail(kind lnwire.ErrorKind, format string, args ...interface{}) *lnwire.Status {
	return &lnwire.Status{
		ErrKind:    kind,
		Diagnostic: goerrors.Errorf(format, args...).Error(),
	}
}
