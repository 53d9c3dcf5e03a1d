// Command openingd is the channel-opening subsystem: a single-shot,
// single-threaded process that runs one funder or fundee handshake to
// completion over three file descriptors (spec.md §6) and exits.
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/openingd/opening"
)

// appVersion is bumped by hand; there is no build-time version stamping
// in this subsystem (spec.md §6: "a single --version flag prints a
// version string").
const appVersion = "0.1.0"

// config holds the command-line surface. The control/status/peer fds
// default to the spec-mandated 0/1/3 but are overridable for debugging
// outside the parent process's exec environment.
type config struct {
	Version bool `long:"version" description:"Display version information and exit"`

	ControlFD int `long:"controlfd" default:"0" description:"File descriptor to read control commands from"`
	StatusFD  int `long:"statusfd" default:"1" description:"File descriptor to write status messages to"`
	PeerFD    int `long:"peerfd" default:"3" description:"File descriptor for the bidirectional peer connection"`

	LogFile    string `long:"logfile" description:"Path to a log file; logging goes to stderr if unset"`
	DebugLevel string `long:"debuglevel" default:"info" description:"Logging level: trace, debug, info, warn, error, critical"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func run() error {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	if cfg.Version {
		fmt.Printf("openingd version %s\n", appVersion)
		return nil
	}

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile, 10*1024, 3); err != nil {
			return fmt.Errorf("initializing log rotator: %w", err)
		}
		defer logRotator.Close()
	}
	registerSubsystemLoggers()
	setLogLevel(cfg.DebugLevel)
	log.Infof("openingd %s starting, control=%d status=%d peer=%d",
		appVersion, cfg.ControlFD, cfg.StatusFD, cfg.PeerFD)

	controlR := os.NewFile(uintptr(cfg.ControlFD), "control")
	statusW := os.NewFile(uintptr(cfg.StatusFD), "status")
	peerRW := os.NewFile(uintptr(cfg.PeerFD), "peer")
	if controlR == nil || statusW == nil || peerRW == nil {
		return fmt.Errorf("invalid file descriptor configuration")
	}

	err := opening.Dispatch(controlR, statusW, peerRW, clock.NewDefaultClock())
	if err != nil {
		log.Errorf("handshake terminated: %v", err)
		return err
	}

	log.Infof("handshake complete, exiting cleanly")
	return nil
}

// exitCodeFor maps a Dispatch error to the process exit code spec.md §6
// names: 0 on clean shutdown, nonzero on fatal failure. Dispatch's error
// is always either nil or a *lnwire.Status already written to fd 1; the
// diagnostic detail lives there, not in the exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
