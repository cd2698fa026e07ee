package tag

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/dxfcore/errors"
)

// ErrorContext selects the rendering of a LoadError
type ErrorContext int

const (
	ErrorContextPlain    ErrorContext = iota // logs, JSON
	ErrorContextTerminal                     // colored CLI output
)

// LoadErrorKind categorizes tag stream decoding errors
type LoadErrorKind string

const (
	KindGroupCode  LoadErrorKind = "group_code"  // group code is not an integer
	KindValue      LoadErrorKind = "value"       // value does not match the type of its group code
	KindCoordinate LoadErrorKind = "coordinate"  // missing or misplaced point axis
	KindBinary     LoadErrorKind = "binary"      // malformed binary DXF data
	KindJSON       LoadErrorKind = "json"        // malformed JSON tag list
	KindTruncated  LoadErrorKind = "truncated"   // stream ends inside a tag
)

// LoadError is a tag stream decoding error with its position. It unwraps to
// errors.ErrStructure.
type LoadError struct {
	Kind        LoadErrorKind
	Message     string
	Line        int // ASCII line number, 0 if unknown
	Offset      int // binary byte offset or JSON tag number, -1 if unknown
	Code        int
	Value       string
	Suggestions []string
	Err         error
}

// NewLoadError creates a LoadError without position
func NewLoadError(kind LoadErrorKind, message string) *LoadError {
	return &LoadError{
		Kind:    kind,
		Message: message,
		Offset:  -1,
		Err:     errors.ErrStructure,
	}
}

// Error implements error interface
func (e *LoadError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates context-appropriate error message
func (e *LoadError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextPlain {
		return e.formatPlainError()
	}
	return e.formatTerminalError()
}

func (e *LoadError) position() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("near line %d", e.Line)
	case e.Offset >= 0 && e.Kind == KindJSON:
		return fmt.Sprintf("in tag number %d", e.Offset)
	case e.Offset >= 0:
		return fmt.Sprintf("at byte offset %d", e.Offset)
	}
	return ""
}

func (e *LoadError) formatPlainError() string {
	msg := e.Message
	if pos := e.position(); pos != "" {
		msg += " " + pos
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *LoadError) formatTerminalError() string {
	var sb strings.Builder
	sb.WriteString(pterm.Red(e.Message))

	sb.WriteString("\n\n" + pterm.LightCyan("Context:"))
	if pos := e.position(); pos != "" {
		sb.WriteString(fmt.Sprintf("\n  %s %s", pterm.Yellow("Position:"), pos))
	}
	if e.Value != "" || e.Code != 0 {
		sb.WriteString(fmt.Sprintf("\n  %s (%d, %q)", pterm.Yellow("Tag:"), e.Code, e.Value))
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n\n" + pterm.Green("Suggestions:"))
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • " + s)
		}
	}
	return sb.String()
}

// Unwrap for errors.Is/As compatibility
func (e *LoadError) Unwrap() error {
	return e.Err
}

// WithLine sets the ASCII line number
func (e *LoadError) WithLine(line int) *LoadError {
	e.Line = line
	return e
}

// WithOffset sets the byte offset or tag number
func (e *LoadError) WithOffset(offset int) *LoadError {
	e.Offset = offset
	return e
}

// WithTag records the offending tag
func (e *LoadError) WithTag(code int, value string) *LoadError {
	e.Code = code
	e.Value = value
	return e
}

// WithSuggestion adds a suggestion for fixing the input
func (e *LoadError) WithSuggestion(suggestion string) *LoadError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}
