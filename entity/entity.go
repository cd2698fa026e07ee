// Package entity implements DXF entities on top of classified tag blocks
// and attribute schemas: the attribute namespace, the subclass loader,
// application data, extended data, reactors, extension dictionaries and
// the entity lifecycle (new, load, copy, bind, destroy, export).
//
// Entity types embed Base and register a Class with Register. Optional
// behavior is added by implementing the hook interfaces of this package:
//
//	type Circle struct {
//	    entity.Base
//	}
//
//	func (c *Circle) LoadAttribs(p *entity.Processor) error { ... }
//	func (c *Circle) ExportEntity(w tag.Writer) error      { ... }
//
// Entities and documents are not safe for concurrent use.
package entity

import (
	"github.com/google/uuid"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

// Entity is implemented by all types embedding Base
type Entity interface {
	DXFType() string
	Handle() string
	IsAlive() bool
	DXF() *Namespace
	// UpdateHandle is used by the entity database to assign handles
	UpdateHandle(handle string) error
	base() *Base
}

// Doc is the document an entity is bound to
type Doc interface {
	DXFVersion() version.Version
	EntityDB() Database
	Objects() Container
	// IsLoading reports the first loading stage of a document
	IsLoading() bool
}

// Database resolves handles, implemented by the entity database
type Database interface {
	Lookup(handle string) (Entity, error)
	Has(handle string) bool
	// Add stores e and assigns a new handle if e has none
	Add(e Entity) error
}

// Container holds the DXF objects of a document (OBJECTS section)
type Container interface {
	HasHandle(handle string) bool
	AddObject(e Entity) error
	// DeleteEntity removes e from the container and the database and
	// destroys it
	DeleteEntity(e Entity) error
}

// Hooks implemented by entity types

// AttribLoader loads the type specific attributes, the default loads all
// schema subclasses
type AttribLoader interface {
	LoadAttribs(p *Processor) error
}

// EntityExporter writes the type specific tags after the base class
type EntityExporter interface {
	ExportEntity(w tag.Writer) error
}

// DataCopier copies type specific data into clone
type DataCopier interface {
	CopyData(clone Entity, s CopySettings) error
}

// PostNewer validates new entities created by New
type PostNewer interface {
	PostNew() error
}

// PostLoader resolves handles in the second loading stage
type PostLoader interface {
	PostLoad(doc Doc) error
}

// PostBinder is called after a new or copied entity is bound to doc
type PostBinder interface {
	PostBind(doc Doc) error
}

// Destroyer releases type specific resources
type Destroyer interface {
	OnDestroy()
}

// Auditable repairs type specific data
type Auditable interface {
	Audit(db Database, report *AuditReport)
}

// Base holds the data common to all entities
type Base struct {
	class    *Class
	doc      Doc
	dxf      *Namespace
	appdata  *AppData
	reactors *Reactors
	xdict    *ExtensionDict
	xdata    *XData

	uuid         uuid.UUID
	sourceOfCopy Entity
	destroyed    bool
}

func (b *Base) base() *Base { return b }

func (b *Base) init(class *Class, doc Doc) {
	b.class = class
	b.doc = doc
	b.dxf = NewNamespace(class.Schema, class.DXFType)
	b.dxf.entity = b
}

// DXFType returns the entity type like "DICTIONARY"
func (b *Base) DXFType() string {
	if b.class == nil {
		return ""
	}
	return b.class.DXFType
}

// Class returns the registered class of the entity type
func (b *Base) Class() *Class {
	return b.class
}

// DXF returns the attribute namespace, nil for destroyed entities
func (b *Base) DXF() *Namespace {
	return b.dxf
}

// Doc returns the bound document or nil
func (b *Base) Doc() Doc {
	return b.doc
}

func (b *Base) dxfVersion() version.Version {
	if b.doc != nil {
		if v := b.doc.DXFVersion(); v != "" {
			return v
		}
	}
	return version.Latest
}

// Handle returns the entity handle, "" for virtual or destroyed entities
func (b *Base) Handle() string {
	if b.dxf == nil {
		return ""
	}
	return b.dxf.Handle()
}

// Owner returns the owner handle
func (b *Base) Owner() string {
	if b.dxf == nil {
		return ""
	}
	return b.dxf.Owner()
}

// SetOwner sets the owner handle, "" removes it
func (b *Base) SetOwner(handle string) error {
	if b.dxf == nil {
		return errors.ErrDestroyed
	}
	return b.dxf.Set(attrOwner, handle)
}

// UpdateHandle sets the entity handle and keeps the owner of the extension
// dictionary in sync
func (b *Base) UpdateHandle(handle string) error {
	if b.dxf == nil {
		return errors.ErrDestroyed
	}
	if err := b.dxf.Set(attrHandle, handle); err != nil {
		return err
	}
	if b.xdict != nil && b.xdict.IsAlive() {
		b.xdict.updateOwner(b.dxf.Handle())
	}
	return nil
}

// String returns "DXFTYPE(#handle)"
func (b *Base) String() string {
	return b.DXFType() + "(#" + b.Handle() + ")"
}

// UUID returns an identity which also distinguishes virtual entities
// without handle. It is created on first request.
func (b *Base) UUID() uuid.UUID {
	if b.uuid == uuid.Nil {
		b.uuid = uuid.New()
	}
	return b.uuid
}

// IsAlive is false for destroyed entities
func (b *Base) IsAlive() bool {
	return !b.destroyed
}

// IsVirtual reports entities without document or without handle
func (b *Base) IsVirtual() bool {
	return b.doc == nil || b.Handle() == ""
}

// IsGraphic reports entity types with an AcDbEntity subclass
func (b *Base) IsGraphic() bool {
	if b.class == nil {
		return false
	}
	_, ok := b.class.Schema.SubclassIndex("AcDbEntity")
	return ok
}

// IsBound reports a live, non-virtual entity stored in the database of its
// document
func (b *Base) IsBound() bool {
	if !b.IsAlive() || b.IsVirtual() {
		return false
	}
	e, err := b.doc.EntityDB().Lookup(b.Handle())
	return err == nil && e.base() == b
}

// SetSourceOfCopy sets the immediate source of a copy, destroyed sources
// are not stored
func (b *Base) SetSourceOfCopy(source Entity) {
	if source != nil && !source.IsAlive() {
		source = nil
	}
	b.sourceOfCopy = source
}

// SourceOfCopy returns the immediate source if this entity is a copy.
// Never returns a destroyed entity.
func (b *Base) SourceOfCopy() Entity {
	if b.sourceOfCopy == nil || !b.sourceOfCopy.IsAlive() {
		return nil
	}
	return b.sourceOfCopy
}

// OriginOfCopy follows the sources of copies up to the first non-virtual
// entity, nil if there is none
func (b *Base) OriginOfCopy() Entity {
	source := b.SourceOfCopy()
	for source != nil && source.base().IsVirtual() {
		source = source.base().SourceOfCopy()
	}
	return source
}

// IsCopy reports an entity created by Copy
func (b *Base) IsCopy() bool {
	return b.SourceOfCopy() != nil
}

// IsSupportedAttrib reports whether attribute name exists in the schema
// and is supported by the document version
func (b *Base) IsSupportedAttrib(name string) bool {
	if b.dxf == nil {
		return false
	}
	return b.dxf.IsSupported(name)
}

// Application data

// HasAppData reports application data for appid
func (b *Base) HasAppData(appid string) bool {
	return b.appdata != nil && b.appdata.Has(appid)
}

// GetAppData returns the application data for appid without the bracket
// tags
func (b *Base) GetAppData(appid string) (tag.Tags, error) {
	if b.appdata == nil {
		return nil, errors.NewNotFoundError("application data %q in %s", appid, b)
	}
	return b.appdata.Content(appid)
}

// SetAppData sets the application data for appid
func (b *Base) SetAppData(appid string, content tag.Tags) {
	if b.appdata == nil {
		b.appdata = NewAppData()
	}
	b.appdata.Set(appid, content)
}

// DiscardAppData removes the application data for appid if present
func (b *Base) DiscardAppData(appid string) {
	if b.appdata != nil {
		b.appdata.Discard(appid)
	}
}

// Extended data

// HasXData reports xdata for appid
func (b *Base) HasXData(appid string) bool {
	return b.xdata != nil && b.xdata.Has(appid)
}

// GetXData returns the xdata for appid without the (1001, appid) tag
func (b *Base) GetXData(appid string) (tag.Tags, error) {
	if b.xdata == nil {
		return nil, errors.NewNotFoundError("xdata for APPID %q in %s", appid, b)
	}
	return b.xdata.Get(appid)
}

// SetXData sets the xdata for appid
func (b *Base) SetXData(appid string, content tag.Tags) error {
	if b.xdata == nil {
		b.xdata = NewXData()
	}
	return b.xdata.Set(appid, content)
}

// DiscardXData removes the xdata for appid if present
func (b *Base) DiscardXData(appid string) {
	if b.xdata != nil {
		b.xdata.Discard(appid)
	}
}

// XData returns the xdata store, nil if the entity has no xdata
func (b *Base) XData() *XData {
	return b.xdata
}

// HasXDataList reports the named list in the xdata for appid
func (b *Base) HasXDataList(appid, name string) bool {
	return b.xdata != nil && b.xdata.HasList(appid, name)
}

// GetXDataList returns the named list in the xdata for appid
func (b *Base) GetXDataList(appid, name string) (tag.Tags, error) {
	if b.xdata == nil {
		return nil, errors.NewNotFoundError("xdata for APPID %q in %s", appid, b)
	}
	return b.xdata.GetList(appid, name)
}

// SetXDataList sets the named list in the xdata for appid, creates the
// xdata if required
func (b *Base) SetXDataList(appid, name string, content tag.Tags) error {
	if b.xdata == nil {
		b.xdata = NewXData()
	}
	return b.xdata.SetList(appid, name, content)
}

// DiscardXDataList removes the named list in the xdata for appid
func (b *Base) DiscardXDataList(appid, name string) {
	if b.xdata != nil {
		b.xdata.DiscardList(appid, name)
	}
}

// ReplaceXDataList replaces the named list in the existing xdata for appid
func (b *Base) ReplaceXDataList(appid, name string, content tag.Tags) error {
	if b.xdata == nil {
		return errors.NewNotFoundError("xdata for APPID %q in %s", appid, b)
	}
	return b.xdata.ReplaceList(appid, name, content)
}

// Reactors

// HasReactors reports reactor handles
func (b *Base) HasReactors() bool {
	return b.reactors != nil && b.reactors.Len() > 0
}

// Reactors returns the reactor handles in ascending order
func (b *Base) Reactors() []string {
	if b.reactors == nil {
		return nil
	}
	return b.reactors.Handles()
}

// SetReactors replaces all reactor handles
func (b *Base) SetReactors(handles []string) {
	b.reactors = NewReactors(handles...)
}

// AppendReactor adds handle to the reactors
func (b *Base) AppendReactor(handle string) {
	if b.reactors == nil {
		b.reactors = NewReactors()
	}
	b.reactors.Add(handle)
}

// DiscardReactor removes handle from the reactors if present
func (b *Base) DiscardReactor(handle string) {
	if b.reactors != nil {
		b.reactors.Discard(handle)
	}
}

// Extension dictionary

// HasExtensionDict reports an extension dictionary with a live dictionary
// object
func (b *Base) HasExtensionDict() bool {
	return b.xdict != nil && b.xdict.IsAlive() && b.xdict.hasLiveDictionary()
}

// ExtensionDict returns the existing extension dictionary
func (b *Base) ExtensionDict() (*ExtensionDict, error) {
	if !b.HasExtensionDict() {
		return nil, errors.NewNotFoundError("extension dictionary of %s", b)
	}
	return b.xdict, nil
}

// NewExtensionDict creates a hard owning extension dictionary, requires a
// bound entity
func (b *Base) NewExtensionDict() (*ExtensionDict, error) {
	if b.doc == nil || b.Handle() == "" {
		return nil, errors.Wrapf(errors.ErrInvalidHandle, "%s requires a document and a handle for an extension dictionary", b)
	}
	xdict, err := newExtensionDict(b.doc, b.Handle())
	if err != nil {
		return nil, err
	}
	b.xdict = xdict
	return xdict, nil
}

// DiscardExtensionDict destroys the extension dictionary
func (b *Base) DiscardExtensionDict() {
	if b.xdict != nil {
		b.xdict.destroy()
	}
	b.xdict = nil
}

// DiscardEmptyExtensionDict destroys an empty extension dictionary
func (b *Base) DiscardEmptyExtensionDict() {
	if b.HasExtensionDict() && b.xdict.Len() == 0 {
		b.DiscardExtensionDict()
	}
}
