package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/lightningnetwork/openingd/commitment"
	"github.com/lightningnetwork/openingd/keychain"
	"github.com/lightningnetwork/openingd/lnwire"
	"github.com/lightningnetwork/openingd/opening"
	"github.com/lightningnetwork/openingd/policy"
	"github.com/lightningnetwork/openingd/transport"
)

// logWriter wraps the pipe the log rotator reads from, mirroring the
// teacher's build.LogWriter: a thin io.Writer the backend writes through
// before the rotator is ever initialized.
type logWriter struct {
	rotatorPipe *io.PipeWriter
}

func (w *logWriter) Write(p []byte) (int, error) {
	if w.rotatorPipe == nil {
		return os.Stderr.Write(p)
	}
	return w.rotatorPipe.Write(p)
}

var (
	logW       = &logWriter{}
	backendLog = btclog.NewBackend(logW)
	logRotator *rotator.Rotator

	log = backendLog.Logger("OPEN")

	keychainLog   = backendLog.Logger("KEYC")
	lnwireLog     = backendLog.Logger("WIRE")
	policyLog     = backendLog.Logger("POLI")
	commitmentLog = backendLog.Logger("COMM")
	openingLog    = backendLog.Logger("OPNG")
	transportLog  = backendLog.Logger("XPRT")

	subsystemLoggers = map[string]btclog.Logger{
		"OPEN": log,
		"KEYC": keychainLog,
		"WIRE": lnwireLog,
		"POLI": policyLog,
		"COMM": commitmentLog,
		"OPNG": openingLog,
		"XPRT": transportLog,
	}
)

// registerSubsystemLoggers points each package's own logger at this
// binary's backend (mirrors the teacher's daemon/log.go init pattern,
// scaled down to this subsystem's six packages).
func registerSubsystemLoggers() {
	keychain.UseLogger(keychainLog)
	lnwire.UseLogger(lnwireLog)
	policy.UseLogger(policyLog)
	commitment.UseLogger(commitmentLog)
	opening.UseLogger(openingLog)
	transport.UseLogger(transportLog)
}

// initLogRotator points the shared log backend, and with it every
// subsystem logger, at logFile, creating the containing directory if
// necessary (spec.md carries no logging requirements of its own; grounded
// on the teacher's initLogRotator).
func initLogRotator(logFile string, maxFileSizeKB, maxFiles int) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}

	r, err := rotator.New(logFile, int64(maxFileSizeKB)*1024, false, maxFiles)
	if err != nil {
		return fmt.Errorf("creating log rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	logW.rotatorPipe = pw
	logRotator = r
	return nil
}

func setLogLevel(level string) {
	parsed, ok := btclog.LevelFromString(level)
	if !ok {
		return
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(parsed)
	}
}
