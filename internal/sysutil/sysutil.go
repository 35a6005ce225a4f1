// Package sysutil holds process-level setup shared by binaries: it wires the
// global zerolog logger from the loaded configuration.
package sysutil

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogging applies the configured level to the global zerolog logger and,
// when pretty is set, swaps the output for a human-readable console writer
// (local runs only; deployments keep JSON lines). Unknown or empty levels
// fall back to info, matching the config default.
func InitLogging(level string, pretty bool, console io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	if pretty && console != nil {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: console})
	}
}

// ParseLevel maps a config LOG_LEVEL string to a zerolog level. It accepts
// the zerolog names plus the "warning" alias, case-insensitively; anything
// else resolves to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
