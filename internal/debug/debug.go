// Package debug provides env-gated diagnostic logging. Set TL_DEBUG=1
// to enable output; it is off by default so the CLI stays quiet.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
)

// Enabled reports whether debug logging is on.
func Enabled() bool {
	once.Do(func() {
		v := os.Getenv("TL_DEBUG")
		enabled = v != "" && v != "0" && v != "false"
	})
	return enabled
}

// Logf writes a formatted debug line to stderr when enabled.
func Logf(format string, args ...any) {
	if !Enabled() {
		return
	}
	fmt.Fprintf(os.Stderr, "[tl debug] "+format+"\n", args...)
}
