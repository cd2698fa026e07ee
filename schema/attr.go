package schema

import (
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

// XType refines the value type of point attributes
type XType int

const (
	XTypeScalar  XType = iota // value type given by the group code
	XTypePoint2D              // exported as x, y
	XTypePoint3D              // exported as x, y, z
	XTypePoint                // 2D or 3D, exported as stored
)

// Recovery is the load policy for present values which fail validation
type Recovery int

const (
	// RecoverDiscard treats the tag as absent
	RecoverDiscard Recovery = iota
	// RecoverKeepRaw keeps the invalid value
	RecoverKeepRaw
	// RecoverFix replaces the value by the result of Attr.Fixer
	RecoverFix
	// RecoverDefault replaces the value by Attr.Default
	RecoverDefault
)

func (r Recovery) String() string {
	switch r {
	case RecoverDiscard:
		return "discard"
	case RecoverKeepRaw:
		return "keep-raw"
	case RecoverFix:
		return "fix"
	case RecoverDefault:
		return "default"
	}
	return "unknown"
}

// Validator reports whether a typed value is valid
type Validator func(v interface{}) bool

// Fixer returns a valid replacement for an invalid value
type Fixer func(v interface{}) interface{}

// Attr defines one DXF attribute. Name, Code and Default are declared;
// Key and Subclass are assigned when the schema is built.
type Attr struct {
	Name       string
	Code       int
	XType      XType
	Default    interface{} // nil: no default
	Optional   bool        // exported only if different from Default
	MinVersion version.Version
	Validator  Validator
	Fixer      Fixer
	Recovery   Recovery
	// Loaded by the entity itself, e.g. handle and owner; never mapped from
	// the tags of its subclass
	Ignore bool

	Key      Key
	Subclass int
}

// HasDefault reports a declared default value
func (a *Attr) HasDefault() bool {
	return a.Default != nil
}

// IsPoint reports point attributes
func (a *Attr) IsPoint() bool {
	return a.XType != XTypeScalar || tag.IsPointCode(a.Code)
}

// SupportedBy reports whether v writes this attribute
func (a *Attr) SupportedBy(v version.Version) bool {
	return v.AtLeast(a.MinVersion)
}

// IsValid runs the validator, values without validator are valid
func (a *Attr) IsValid(v interface{}) bool {
	return a.Validator == nil || a.Validator(v)
}

// Recover applies the recovery policy to the invalid value v; ok is false
// if the value has to be discarded
func (a *Attr) Recover(v interface{}) (value interface{}, ok bool) {
	switch a.Recovery {
	case RecoverKeepRaw:
		return v, true
	case RecoverFix:
		return a.Fixer(v), true
	case RecoverDefault:
		if a.HasDefault() {
			return a.Default, true
		}
	}
	return nil, false
}

// Cast converts v into the value type of the attribute
func (a *Attr) Cast(v interface{}) (interface{}, error) {
	value, err := tag.Coerce(a.Code, v)
	if err != nil {
		return nil, err
	}
	if p, ok := value.(tag.Point); ok {
		switch a.XType {
		case XTypePoint3D:
			if p.Dims == 2 {
				value = tag.Vec3(p.X, p.Y, 0)
			}
		case XTypePoint2D:
			value = p.To2D()
		}
	}
	return value, nil
}
