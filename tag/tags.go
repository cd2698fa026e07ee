package tag

import (
	"strings"

	"github.com/teranos/dxfcore/errors"
)

// Tags is an ordered tag sequence, e.g. all tags of one entity or subclass
type Tags []Tag

// DXFType returns the value of the leading (0, ...) tag
func (ts Tags) DXFType() string {
	if len(ts) > 0 && ts[0].Code == Structure {
		return ts[0].Str()
	}
	return ""
}

// Handle returns the value of the first (5, ...) or (105, ...) tag
func (ts Tags) Handle() (string, bool) {
	for _, t := range ts {
		if IsHandleCode(t.Code) {
			return t.Str(), true
		}
	}
	return "", false
}

// SubclassName returns the value of the second tag if it is a subclass
// marker, i.e. the name of a subclass run taken from a classified block
func (ts Tags) SubclassName() string {
	if len(ts) > 0 && ts[0].Code == Subclass {
		return ts[0].Str()
	}
	return ""
}

// Has reports whether any tag has the given code
func (ts Tags) Has(code int) bool {
	return ts.Index(code, 0) >= 0
}

// Index returns the index of the first tag with code at or after start, -1
// if there is none
func (ts Tags) Index(code, start int) int {
	for i := start; i < len(ts); i++ {
		if ts[i].Code == code {
			return i
		}
	}
	return -1
}

// First returns the first tag with code
func (ts Tags) First(code int) (Tag, bool) {
	if i := ts.Index(code, 0); i >= 0 {
		return ts[i], true
	}
	return Tag{}, false
}

// FirstValue returns the value of the first tag with code, or def
func (ts Tags) FirstValue(code int, def interface{}) interface{} {
	if t, ok := ts.First(code); ok {
		return t.Value
	}
	return def
}

// FindAll returns all tags with code
func (ts Tags) FindAll(code int) Tags {
	var out Tags
	for _, t := range ts {
		if t.Code == code {
			out = append(out, t)
		}
	}
	return out
}

// Update replaces the first tag with the code of t, fails with ErrNotFound
// if there is none
func (ts Tags) Update(t Tag) error {
	if i := ts.Index(t.Code, 0); i >= 0 {
		ts[i] = t
		return nil
	}
	return errors.NewNotFoundError("group code %d", t.Code)
}

// SetFirst replaces the first tag with the code of t or appends t
func (ts Tags) SetFirst(t Tag) Tags {
	if i := ts.Index(t.Code, 0); i >= 0 {
		ts[i] = t
		return ts
	}
	return append(ts, t)
}

// RemoveCodes returns ts without the tags with the given codes
func (ts Tags) RemoveCodes(codes ...int) Tags {
	drop := make(map[int]bool, len(codes))
	for _, c := range codes {
		drop[c] = true
	}
	out := make(Tags, 0, len(ts))
	for _, t := range ts {
		if !drop[t.Code] {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a copy with independent binary values
func (ts Tags) Clone() Tags {
	if ts == nil {
		return nil
	}
	out := make(Tags, len(ts))
	for i, t := range ts {
		if b, ok := t.Value.([]byte); ok {
			t.Value = append([]byte(nil), b...)
		}
		out[i] = t
	}
	return out
}

// Equal compares two tag sequences tag by tag
func (ts Tags) Equal(other Tags) bool {
	if len(ts) != len(other) {
		return false
	}
	for i := range ts {
		if !ts[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Expand returns ts with point tags expanded to single axis tags
func (ts Tags) Expand() Tags {
	out := make(Tags, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Expand()...)
	}
	return out
}

// DXFString returns the ASCII DXF encoding of all tags
func (ts Tags) DXFString() string {
	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(t.DXFString())
	}
	return sb.String()
}

// GroupBy splits ts into groups, each starting with a tag of code splitCode.
// Tags before the first splitter form their own group.
func (ts Tags) GroupBy(splitCode int) []Tags {
	var groups []Tags
	var current Tags
	for _, t := range ts {
		if t.Code == splitCode && len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
