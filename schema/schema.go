// Package schema declares the DXF attributes of entity types.
//
// A Schema is composed once per entity type from an ordered list of subclass
// definitions, the base class always first:
//
//	var circleSchema = schema.New(
//	    schema.BaseClass,
//	    schema.AcDbEntity,
//	    schema.Def("AcDbCircle",
//	        schema.Attr{Name: "center", Code: 10, XType: schema.XTypePoint3D, Default: tag.Vec3(0, 0, 0)},
//	        schema.Attr{Name: "radius", Code: 40, Default: 1.0},
//	    ),
//	)
//
// Schemas are immutable after New and safe for concurrent use.
package schema

import (
	"fmt"
	"slices"

	"github.com/teranos/dxfcore/version"
)

// Key identifies an attribute within its schema
type Key int

// Subclass defines the attributes stored in one subclass run. Index 0 of a
// schema is the base class without subclass marker.
type Subclass struct {
	Name  string
	Attrs []Attr
	// Optional subclasses may be missing in loaded entities
	Optional bool
}

// Def creates a subclass definition
func Def(name string, attrs ...Attr) Subclass {
	return Subclass{Name: name, Attrs: attrs}
}

// Schema is the attribute schema of one entity type
type Schema struct {
	subclasses []Subclass
	attrs      []Attr
	byName     map[string]Key
	codes      []map[int][]Key
}

// New composes a schema from subclass definitions. It panics on invalid
// definitions: schemas are declared at package initialization.
func New(subclasses ...Subclass) *Schema {
	s := &Schema{
		subclasses: make([]Subclass, 0, len(subclasses)),
		byName:     make(map[string]Key),
	}
	for index, sc := range subclasses {
		mapping := make(map[int][]Key)
		def := Subclass{Name: sc.Name, Optional: sc.Optional}
		for _, a := range sc.Attrs {
			if _, exists := s.byName[a.Name]; exists {
				panic(fmt.Sprintf("schema: duplicate attribute %q in subclass %q", a.Name, sc.Name))
			}
			if a.Recovery == RecoverFix && a.Fixer == nil {
				panic(fmt.Sprintf("schema: attribute %q requires a fixer", a.Name))
			}
			if a.MinVersion != "" {
				v, err := version.Parse(string(a.MinVersion))
				if err != nil {
					panic(fmt.Sprintf("schema: attribute %q: %v", a.Name, err))
				}
				a.MinVersion = v
			}
			if a.Default != nil {
				value, err := a.Cast(a.Default)
				if err != nil {
					panic(fmt.Sprintf("schema: default of attribute %q: %v", a.Name, err))
				}
				a.Default = value
			}
			a.Key = Key(len(s.attrs))
			a.Subclass = index
			s.attrs = append(s.attrs, a)
			s.byName[a.Name] = a.Key
			def.Attrs = append(def.Attrs, a)
			if !a.Ignore {
				mapping[a.Code] = append(mapping[a.Code], a.Key)
			}
		}
		s.subclasses = append(s.subclasses, def)
		s.codes = append(s.codes, mapping)
	}
	return s
}

// Extend returns a new schema with additional subclasses appended
func (s *Schema) Extend(subclasses ...Subclass) *Schema {
	all := make([]Subclass, 0, len(s.subclasses)+len(subclasses))
	all = append(all, s.subclasses...)
	all = append(all, subclasses...)
	return New(all...)
}

// Get returns the definition of attribute name
func (s *Schema) Get(name string) (*Attr, bool) {
	key, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.attrs[key], true
}

// Key returns the key of attribute name
func (s *Schema) Key(name string) (Key, bool) {
	key, ok := s.byName[name]
	return key, ok
}

// At returns the definition for key
func (s *Schema) At(key Key) *Attr {
	return &s.attrs[key]
}

// Has reports whether name is an attribute of the schema
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// IsSupported reports whether attribute name exists and is written for
// DXF version v
func (s *Schema) IsSupported(name string, v version.Version) bool {
	a, ok := s.Get(name)
	return ok && a.SupportedBy(v)
}

// Len returns the attribute count
func (s *Schema) Len() int {
	return len(s.attrs)
}

// Attrs returns all attributes in schema order
func (s *Schema) Attrs() []Attr {
	return s.attrs
}

// Names returns all attribute names in schema order
func (s *Schema) Names() []string {
	names := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		names[i] = a.Name
	}
	return names
}

// Subclasses returns the subclass definitions
func (s *Schema) Subclasses() []Subclass {
	return s.subclasses
}

// Subclass returns the definition at index
func (s *Schema) Subclass(index int) (Subclass, bool) {
	if index < 0 || index >= len(s.subclasses) {
		return Subclass{}, false
	}
	return s.subclasses[index], true
}

// SubclassIndex returns the index of the first subclass called name
func (s *Schema) SubclassIndex(name string) (int, bool) {
	for i, sc := range s.subclasses {
		if sc.Name == name {
			return i, true
		}
	}
	return 0, false
}

// CodeMapping maps group codes of subclass index to attribute keys.
// Duplicate group codes map to several keys in definition order.
func (s *Schema) CodeMapping(index int) map[int][]Key {
	if index < 0 || index >= len(s.codes) {
		return nil
	}
	return s.codes[index]
}

// MergedCodeMapping maps group codes of all subclasses, used for DXF R12
// entities without subclass markers
func (s *Schema) MergedCodeMapping() map[int][]Key {
	merged := make(map[int][]Key)
	for _, mapping := range s.codes {
		for code, keys := range mapping {
			merged[code] = append(merged[code], keys...)
		}
	}
	for _, keys := range merged {
		slices.Sort(keys)
	}
	return merged
}
