package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants, counted like -v flags of an embedding tool.
const (
	VerbosityQuiet = 0 // warnings and errors only
	VerbosityInfo  = 1 // + load summaries, migrations
	VerbosityDebug = 2 // + repaired attributes, unprocessed tags
	VerbosityTrace = 3 // same level as debug, named separately
)

// VerbosityToLevel maps verbosity counts to zap log levels
//
// Mapping:
//
//	0      -> WarnLevel
//	1      -> InfoLevel
//	2, 3+  -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch {
	case verbosity < VerbosityQuiet:
		return "Unknown"
	case verbosity == VerbosityQuiet:
		return "Quiet"
	case verbosity == VerbosityInfo:
		return "Info (-v)"
	case verbosity == VerbosityDebug:
		return "Debug (-vv)"
	default:
		return "Trace (-vvv)"
	}
}
