package version

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/dxfcore/errors"
)

// Version is a DXF format version in its header form ("AC1015").
// The zero value means "no version requirement".
type Version string

// DXF format versions, oldest first
const (
	R9    Version = "AC1004"
	R10   Version = "AC1006"
	R12   Version = "AC1009"
	R13   Version = "AC1012"
	R14   Version = "AC1014"
	R2000 Version = "AC1015"
	R2004 Version = "AC1018"
	R2007 Version = "AC1021"
	R2010 Version = "AC1024"
	R2013 Version = "AC1027"
	R2018 Version = "AC1032"

	Latest = R2018
)

var releases = map[Version]string{
	R9:    "R9",
	R10:   "R10",
	R12:   "R12",
	R13:   "R13",
	R14:   "R14",
	R2000: "R2000",
	R2004: "R2004",
	R2007: "R2007",
	R2010: "R2010",
	R2013: "R2013",
	R2018: "R2018",
}

var byRelease = func() map[string]Version {
	m := make(map[string]Version, len(releases))
	for v, r := range releases {
		m[r] = v
	}
	return m
}()

// Writable lists the versions new documents can be exported as
var Writable = []Version{R12, R2000, R2004, R2007, R2010, R2013, R2018}

// Normalize maps a release name ("R2000") or header code ("ac1015") to the
// canonical header code. Unknown input is returned upper-cased.
func Normalize(s string) Version {
	s = strings.ToUpper(strings.TrimSpace(s))
	if v, ok := byRelease[s]; ok {
		return v
	}
	return Version(s)
}

// Parse normalizes s and fails with ErrVersion if it is not a known version
func Parse(s string) (Version, error) {
	v := Normalize(s)
	if _, ok := releases[v]; !ok {
		return "", errors.Wrapf(errors.ErrVersion, "%q", s)
	}
	return v, nil
}

// IsWritable reports whether v is a supported export version
func (v Version) IsWritable() bool {
	for _, w := range Writable {
		if w == v {
			return true
		}
	}
	return false
}

// AtLeast reports whether v is the same as or newer than min.
// An empty min is satisfied by every version.
func (v Version) AtLeast(min Version) bool {
	if min == "" {
		return true
	}
	return v >= min
}

// Before reports whether v is older than other
func (v Version) Before(other Version) bool {
	return v < other
}

// IsLegacy reports whether v uses the R12 entity layout (no subclass markers)
func (v Version) IsLegacy() bool {
	return v != "" && v <= R12
}

// Release returns the AutoCAD release name, e.g. "R2000", or "unknown"
func (v Version) Release() string {
	if r, ok := releases[v]; ok {
		return r
	}
	return "unknown"
}

func (v Version) String() string {
	return string(v)
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v), nil
}

// UnmarshalText accepts header codes and release names
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Version) MarshalYAML() (interface{}, error) {
	return string(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrapf(errors.ErrVersion, "line %d: expected scalar", node.Line)
	}
	return v.UnmarshalText([]byte(node.Value))
}
