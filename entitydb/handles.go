package entitydb

import (
	"strconv"
	"strings"

	"github.com/teranos/dxfcore/errors"
)

// Generator issues uppercase hex handles in ascending order
type Generator struct {
	next uint64
}

// NewGenerator creates a generator starting at seed, "0" is reserved
func NewGenerator(seed string) (*Generator, error) {
	g := &Generator{}
	if err := g.Reseed(seed); err != nil {
		return nil, err
	}
	return g, nil
}

// parseHandle parses a hex handle, "0" is not a valid handle
func parseHandle(handle string) (uint64, error) {
	value, err := strconv.ParseUint(handle, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidHandle, "#%s is not a hex value", handle)
	}
	if value == 0 {
		return 0, errors.Wrap(errors.ErrInvalidHandle, "#0 is reserved")
	}
	return value, nil
}

// Next returns the next handle
func (g *Generator) Next() string {
	handle := formatHandle(g.next)
	g.next++
	return handle
}

// Reseed sets the next handle to value, used to continue after the
// highest handle of a loaded document
func (g *Generator) Reseed(value string) error {
	next, err := parseHandle(value)
	if err != nil {
		return err
	}
	g.next = next
	return nil
}

// Current returns the next handle without consuming it
func (g *Generator) Current() string {
	return formatHandle(g.next)
}

func formatHandle(value uint64) string {
	return strings.ToUpper(strconv.FormatUint(value, 16))
}

// advancePast moves the generator behind handle, it never goes backwards
func (g *Generator) advancePast(handle string) {
	value, err := parseHandle(handle)
	if err == nil && value >= g.next {
		g.next = value + 1
	}
}
