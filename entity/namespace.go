package entity

import (
	"sort"
	"strings"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

const (
	attrHandle = "handle"
	attrOwner  = "owner"
)

// Namespace stores the DXF attributes of one entity. Only attributes which
// really exist are stored; reading an absent attribute falls back to the
// schema default.
type Namespace struct {
	schema  *schema.Schema
	dxftype string
	values  map[schema.Key]interface{}
	handle  string
	owner   string
	// the entity this namespace belongs to, nil for detached namespaces
	entity *Base
}

// NewNamespace creates an empty namespace for schema s
func NewNamespace(s *schema.Schema, dxftype string) *Namespace {
	return &Namespace{
		schema:  s,
		dxftype: dxftype,
		values:  make(map[schema.Key]interface{}),
	}
}

// Schema returns the attribute schema
func (ns *Namespace) Schema() *schema.Schema {
	return ns.schema
}

// Version returns the DXF version of the bound document, the latest version
// for unbound entities
func (ns *Namespace) Version() version.Version {
	if ns.entity != nil {
		return ns.entity.dxfVersion()
	}
	return version.Latest
}

func (ns *Namespace) attr(name string) (*schema.Attr, error) {
	a, ok := ns.schema.Get(name)
	if !ok {
		return nil, errors.NewInvalidAttributeError(ns.dxftype, name)
	}
	return a, nil
}

// Get returns the value of attribute name. Absent attributes return the
// schema default if the DXF version supports the attribute, otherwise
// errors.ErrAttributeUnset.
func (ns *Namespace) Get(name string) (interface{}, error) {
	switch name {
	case attrHandle:
		return ns.stringOrUnset(name, ns.handle)
	case attrOwner:
		return ns.stringOrUnset(name, ns.owner)
	}
	a, err := ns.attr(name)
	if err != nil {
		return nil, err
	}
	if v, ok := ns.values[a.Key]; ok {
		return v, nil
	}
	if a.HasDefault() && a.SupportedBy(ns.Version()) {
		return a.Default, nil
	}
	return nil, errors.Wrapf(errors.ErrAttributeUnset, "%s.%s", ns.entityName(), name)
}

func (ns *Namespace) stringOrUnset(name, value string) (interface{}, error) {
	if value == "" {
		return nil, errors.Wrapf(errors.ErrAttributeUnset, "%s.%s", ns.entityName(), name)
	}
	return value, nil
}

// GetOr returns the stored value of attribute name or def. The schema
// default is not used.
func (ns *Namespace) GetOr(name string, def interface{}) interface{} {
	switch name {
	case attrHandle:
		return orDefault(ns.handle, def)
	case attrOwner:
		return orDefault(ns.owner, def)
	}
	if a, ok := ns.schema.Get(name); ok {
		if v, ok := ns.values[a.Key]; ok {
			return v
		}
	}
	return def
}

func orDefault(s string, def interface{}) interface{} {
	if s == "" {
		return def
	}
	return s
}

// Value returns the value of attribute name like Get, nil for absent
// attributes without usable default
func (ns *Namespace) Value(name string) interface{} {
	v, _ := ns.Get(name)
	return v
}

// Int returns an integer attribute, 0 if unset
func (ns *Namespace) Int(name string) int {
	i, _ := ns.Value(name).(int)
	return i
}

// Float returns a float attribute, 0 if unset
func (ns *Namespace) Float(name string) float64 {
	switch f := ns.Value(name).(type) {
	case float64:
		return f
	case int:
		return float64(f)
	}
	return 0
}

// String returns a string attribute, "" if unset
func (ns *Namespace) String(name string) string {
	s, _ := ns.Value(name).(string)
	return s
}

// Set assigns value to attribute name. This is the trusted path: the value
// is cast to the type of the group code and has to pass the validator,
// otherwise Set fails with errors.ErrInvalidAttribute.
func (ns *Namespace) Set(name string, value interface{}) error {
	switch name {
	case attrHandle, attrOwner:
		s, ok := value.(string)
		if !ok || (s != "" && !tag.IsValidHandle(s)) {
			return errors.Wrapf(errors.ErrInvalidAttribute, "invalid %s %v for %s", name, value, ns.entityName())
		}
		if name == attrHandle {
			ns.handle = strings.ToUpper(s)
		} else {
			ns.owner = strings.ToUpper(s)
		}
		return nil
	}
	a, err := ns.attr(name)
	if err != nil {
		return err
	}
	v, err := a.Cast(value)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidAttribute, "invalid value %v for %s.%s: %v", value, ns.entityName(), name, err)
	}
	if !a.IsValid(v) {
		return errors.Wrapf(errors.ErrInvalidAttribute, "invalid value %v for %s.%s", value, ns.entityName(), name)
	}
	ns.values[a.Key] = v
	return nil
}

// Update sets all attributes of attribs, stops at the first error
func (ns *Namespace) Update(attribs map[string]interface{}) error {
	// deterministic order for error messages
	names := make([]string, 0, len(attribs))
	for name := range attribs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ns.Set(name, attribs[name]); err != nil {
			return err
		}
	}
	return nil
}

// unprotectedSet stores v without casting and validation, loader only
func (ns *Namespace) unprotectedSet(key schema.Key, v interface{}) {
	ns.values[key] = v
}

// Discard removes attribute name, absent and unknown attributes are
// ignored
func (ns *Namespace) Discard(name string) {
	switch name {
	case attrHandle:
		ns.handle = ""
		return
	case attrOwner:
		ns.owner = ""
		return
	}
	if key, ok := ns.schema.Key(name); ok {
		delete(ns.values, key)
	}
}

// Has reports whether attribute name really exists
func (ns *Namespace) Has(name string) bool {
	switch name {
	case attrHandle:
		return ns.handle != ""
	case attrOwner:
		return ns.owner != ""
	}
	key, ok := ns.schema.Key(name)
	if !ok {
		return false
	}
	_, ok = ns.values[key]
	return ok
}

func (ns *Namespace) hasKey(key schema.Key) bool {
	_, ok := ns.values[key]
	return ok
}

// IsSupported reports whether attribute name exists in the schema and is
// supported by the DXF version of the bound document
func (ns *Namespace) IsSupported(name string) bool {
	return ns.schema.IsSupported(name, ns.Version())
}

// Unsupported returns the names of existing attributes which are not
// supported by the DXF version of the bound document. They are kept and
// exported by writers of newer versions.
func (ns *Namespace) Unsupported() []string {
	v := ns.Version()
	var names []string
	for _, a := range ns.schema.Attrs() {
		if ns.hasKey(a.Key) && !a.SupportedBy(v) {
			names = append(names, a.Name)
		}
	}
	return names
}

// Attribs returns all existing attributes including handle and owner
func (ns *Namespace) Attribs() map[string]interface{} {
	attribs := make(map[string]interface{}, len(ns.values)+2)
	if ns.handle != "" {
		attribs[attrHandle] = ns.handle
	}
	if ns.owner != "" {
		attribs[attrOwner] = ns.owner
	}
	for key, v := range ns.values {
		attribs[ns.schema.At(key).Name] = v
	}
	return attribs
}

// Len returns the count of existing attributes without handle and owner
func (ns *Namespace) Len() int {
	return len(ns.values)
}

// Handle returns the entity handle, "" for virtual entities
func (ns *Namespace) Handle() string {
	return ns.handle
}

// Owner returns the owner handle, "" if not set
func (ns *Namespace) Owner() string {
	return ns.owner
}

func (ns *Namespace) resetHandles() {
	ns.handle = ""
	ns.owner = ""
}

// copy returns an independent namespace bound to entity
func (ns *Namespace) copy(entity *Base) *Namespace {
	clone := &Namespace{
		schema:  ns.schema,
		dxftype: ns.dxftype,
		values:  make(map[schema.Key]interface{}, len(ns.values)),
		handle:  ns.handle,
		owner:   ns.owner,
		entity:  entity,
	}
	for key, v := range ns.values {
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		}
		clone.values[key] = v
	}
	return clone
}

func (ns *Namespace) entityName() string {
	return ns.dxftype + "(#" + ns.handle + ")"
}

// Export writes the attributes names to w:
//   - non-optional attributes are always written, unset ones as default
//   - optional attributes equal to their default are skipped unless the
//     writer forces optional attributes
//   - attributes not supported by the writer version are skipped
//   - 2D point attributes are written as x, y
func (ns *Namespace) Export(w tag.Writer, names ...string) error {
	for _, name := range names {
		if err := ns.exportAttr(w, name); err != nil {
			return err
		}
	}
	return nil
}

func (ns *Namespace) exportAttr(w tag.Writer, name string) error {
	a, err := ns.attr(name)
	if err != nil {
		return err
	}
	value, ok := ns.values[a.Key]
	if !ok && !a.Optional {
		value = a.Default
	}
	if value == nil || !w.DXFVersion().AtLeast(a.MinVersion) {
		return nil
	}
	t := tag.Tag{Code: a.Code, Value: value}
	if a.Optional && !w.ForceOptional() && a.HasDefault() && t.Equal(tag.Tag{Code: a.Code, Value: a.Default}) {
		return nil
	}
	if p, ok := value.(tag.Point); ok && a.XType == schema.XTypePoint2D && p.Dims == 3 {
		t.Value = p.To2D()
	}
	if s, ok := value.(string); ok && strings.ContainsAny(s, "\r\n") {
		return errors.Wrapf(errors.ErrInvalidValue, "line break in attribute %s.%s", ns.entityName(), name)
	}
	return w.WriteTag(t)
}

// ExportSubclass writes the attributes of schema subclass index in
// definition order
func (ns *Namespace) ExportSubclass(w tag.Writer, index int) error {
	sc, ok := ns.schema.Subclass(index)
	if !ok {
		return errors.Wrapf(errors.ErrSubclassNotFound, "subclass index %d of %s", index, ns.dxftype)
	}
	for _, a := range sc.Attrs {
		if a.Ignore {
			continue
		}
		if err := ns.exportAttr(w, a.Name); err != nil {
			return err
		}
	}
	return nil
}
