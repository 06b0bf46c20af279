package log

import (
	"log/slog"
	"strings"
)

// LevelFromString parses a log level from its string representation.
// The match is case-insensitive. Unrecognised strings return slog.LevelInfo.
func LevelFromString(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level LevelFromString understands
// without falling back to the default.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE", "INFO", "WARN", "WARNING", "ERROR", "FATAL":
		return true
	}
	return false
}

// VerbosityToLevel maps a 0-5 verbosity (0 silent, 5 trace) to a slog level.
// Silent maps above error so nothing is emitted.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
