// Package log provides colored console output for the connector and
// its CLI commands.
package log

import (
	"os"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func InfoMsg(format string, a ...interface{}) {
	blue(os.Stderr, "[+] "+format, a...)
}

// Logger gates verbose output. The zero value and the nil Logger stay
// silent.
type Logger struct {
	verbose bool
}

// NewLogger creates a Logger. Verbose messages are printed only when
// verbose is true.
func NewLogger(verbose bool) *Logger {
	return &Logger{verbose: verbose}
}

// VerboseMsg prints a progress message to stderr in yellow color when
// verbose logging is enabled. Safe to call on a nil Logger.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	yellow(os.Stderr, "[*] "+format, a...)
}
