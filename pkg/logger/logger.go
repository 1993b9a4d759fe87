package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Setup configures the process-wide logger: single-line timestamped records on
// stdout, duplicated to logFile when one is given. The returned logger is also
// installed as the charmbracelet default, so packages log through the package
// functions directly.
func Setup(debug bool, logFile string) *log.Logger {
	var out io.Writer = os.Stdout
	var fileErr error
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fileErr = err
		} else {
			// The handle stays open for the process lifetime.
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	log.SetDefault(l)

	if fileErr != nil {
		l.Warn("Could not open log file, logging to stdout only", "path", logFile, "error", fileErr)
	}
	return l
}

// SetupFromEnv configures the logger from AUTONET_DEBUG and LOG_FILE before
// the rest of the configuration is parsed, so even config errors land in the
// configured sinks.
func SetupFromEnv() *log.Logger {
	return Setup(debugFromEnv(), os.Getenv("LOG_FILE"))
}

func debugFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("AUTONET_DEBUG"))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
