package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across dxfcore.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Entity identity
	FieldHandle  = "handle"
	FieldOwner   = "owner"
	FieldDXFType = "dxftype"

	// Tag structure
	FieldCode      = "code"
	FieldValue     = "value"
	FieldSubclass  = "subclass"
	FieldAttribute = "attribute"
	FieldAppID     = "appid"
	FieldLine      = "line"
	FieldOffset    = "offset"

	// Format
	FieldVersion = "dxfversion"

	// Components
	FieldCommand   = "command"
	FieldOperation = "operation"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"

	// Files and storage
	FieldPath     = "path"
	FieldSnapshot = "snapshot"
)

type contextKey string

const (
	snapshotKey contextKey = "logger_snapshot"
	commandKey  contextKey = "logger_command"
)

// WithSnapshot names the snapshot an operation of ctx works on
func WithSnapshot(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, snapshotKey, name)
}

// WithCommand names the running dxfcore command, e.g. "dxfcore snapshot save"
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// FieldsFromContext returns the key-value pairs stored by WithSnapshot and
// WithCommand, ready for Infow and friends.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}
	if name, ok := ctx.Value(snapshotKey).(string); ok && name != "" {
		fields = append(fields, FieldSnapshot, name)
	}
	if command, ok := ctx.Value(commandKey).(string); ok && command != "" {
		fields = append(fields, FieldCommand, command)
	}
	return fields
}

// FromContext returns parent with the fields of ctx. A nil parent falls
// back to the global Logger.
func FromContext(ctx context.Context, parent *zap.SugaredLogger) *zap.SugaredLogger {
	if parent == nil {
		parent = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return parent
	}
	return parent.With(fields...)
}
