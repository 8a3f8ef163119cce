package logging

import (
	"fmt"
	"os"
	"strings"
)

// DebugEnabled returns true if debug mode is enabled via WH_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("WH_DEBUG") != ""
}

// Debugf logs a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...any) {
	if DebugEnabled() {
		Logger.Debug(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}

// Debugln logs a debug message only if debug mode is enabled
func Debugln(args ...any) {
	if DebugEnabled() {
		Logger.Debug(strings.TrimRight(fmt.Sprintln(args...), "\n"))
	}
}
