// Package debug provides conditional debug logging for sg3d.
//
// Debug logging is enabled by setting the SG3D_DEBUG environment variable:
//
//	SG3D_DEBUG=1 sg3d graph.json
//
// When enabled, debug messages are written to stderr with timestamps. Writing
// to stderr matters: stdout belongs to the terminal UI, and interleaving log
// lines with the alternate screen corrupts it. When disabled (default), all
// debug functions are no-ops with zero overhead.
package debug

import (
	"log"
	"os"
	"time"
)

var (
	// enabled is true when SG3D_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [SG3D] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("SG3D_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[SG3D] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging, mainly for tests.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[SG3D] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
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

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}
