// Package debug provides conditional debug logging for the Flow Compiler
// and Layout Engine.
//
// Debug logging is enabled by setting the SFF_DEBUG environment variable:
//
//	SFF_DEBUG=1 sff compile flow.yaml
//
// When enabled, the compiler's eight phases and the layout engine's steps
// and expansion attempts are traced to stderr with timestamps. When
// disabled (the default), every function here is a zero-cost no-op.
package debug

import (
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("SFF_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[SFF_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled reports whether debug logging is on. The Layout Engine checks
// this before writing its success dumps (layout, occupancy, bridge usage),
// which are produced only on a successful attempt when tracing is enabled;
// routing_failures.json is written whenever the engine gives up, whether or
// not tracing is enabled.
func Enabled() bool {
	return enabled
}

// Log writes a debug message, printf-style, if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs entry into a named stage and, via the returned closure,
// its exit with elapsed time. It brackets compiler.Compile, the layout
// engine's attempt loop, and the CLI's compile subcommand.
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
