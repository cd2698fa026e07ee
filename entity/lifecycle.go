package entity

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
	"github.com/teranos/dxfcore/xtags"
)

// New creates an entity of the registered type dxftype from scratch. This
// is the trusted path: invalid attributes are errors. attribs may contain
// "handle" and "owner".
func New(dxftype string, attribs map[string]interface{}, doc Doc) (Entity, error) {
	class, ok := Lookup(dxftype)
	if !ok {
		return nil, errors.NewNotFoundError("entity type %s is not registered", dxftype)
	}
	e := class.New()
	b := e.base()
	b.init(class, doc)
	if err := b.dxf.Update(class.Defaults); err != nil {
		return nil, errors.Wrapf(err, "defaults of %s", dxftype)
	}
	if err := b.dxf.Update(attribs); err != nil {
		return nil, err
	}
	if hook, ok := e.(PostNewer); ok {
		if err := hook.PostNew(); err != nil {
			return nil, errors.Wrapf(err, "new %s", b)
		}
	}
	return e, nil
}

// Load creates an entity from a classified tag block. This is the
// untrusted path: invalid attribute values are repaired and collected in
// the returned report, only structure errors fail. Unregistered types are
// loaded as TagStorage.
//
// Handles of linked entities, like the extension dictionary, are resolved
// by PostLoad in the second loading stage.
func Load(block *xtags.Block, doc Doc, opts LoadOptions) (Entity, *LoadReport, error) {
	class, ok := Lookup(block.DXFType())
	if !ok {
		class = tagStorageClass(block.DXFType())
	}
	e := class.New()
	b := e.base()
	b.init(class, doc)

	var v version.Version
	if doc != nil {
		v = doc.DXFVersion()
	}
	p := NewProcessor(block, v, opts)
	if err := b.setupAppData(block.AppData); err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", block.Name())
	}
	if len(block.XData) > 0 {
		x, dropped := xdataFromBlock(block.XData)
		if dropped > 0 {
			p.report.DroppedXData = dropped
			p.logger.Debugw("Removed invalid xdata", logger.FieldCount, dropped)
		}
		if x.Len() > 0 {
			b.xdata = x
		}
	}

	var err error
	if loader, ok := e.(AttribLoader); ok {
		err = loader.LoadAttribs(p)
	} else {
		err = p.Load(b.dxf)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", block.Name())
	}
	p.report.Handle = b.Handle()
	p.report.Unsupported = b.dxf.Unsupported()
	return e, p.report, nil
}

func (b *Base) setupAppData(groups []tag.Tags) error {
	for _, data := range groups {
		if len(data) == 0 {
			continue
		}
		switch appid := data[0].Str(); appid {
		case AcadReactors:
			b.reactors = reactorsFromTags(data)
		case AcadXDictionary:
			xdict, err := xdictFromTags(data)
			if err != nil {
				return err
			}
			b.xdict = xdict
		default:
			b.SetAppData(appid, data)
		}
	}
	return nil
}

// FromText loads an entity from DXF text with the default load options
func FromText(text string, doc Doc) (Entity, error) {
	block, err := xtags.Parse(text)
	if err != nil {
		return nil, err
	}
	e, _, err := Load(block, doc, DefaultLoadOptions())
	return e, err
}

// PostLoad is the second loading stage: all entities of doc are stored in
// the entity database and handles can be resolved
func PostLoad(e Entity, doc Doc) error {
	b := e.base()
	if !b.IsAlive() {
		return nil
	}
	if b.xdict != nil {
		b.xdict.loadResources(doc.EntityDB())
	}
	if hook, ok := e.(PostLoader); ok {
		return hook.PostLoad(doc)
	}
	return nil
}

// Bind binds a new or copied entity to doc: it is stored in the entity
// database and gets a new handle if it has none. The extension dictionary
// of a copy is bound as well. Post bind hooks do not run while doc is
// loading.
func Bind(e Entity, doc Doc) error {
	b := e.base()
	if !b.IsAlive() {
		return errors.Wrapf(errors.ErrDestroyed, "bind %s", b)
	}
	b.doc = doc
	if !b.IsBound() {
		if err := doc.EntityDB().Add(e); err != nil {
			return err
		}
	}
	if doc.IsLoading() {
		return nil
	}
	if err := b.bindExtensionDict(doc); err != nil {
		return err
	}
	if hook, ok := e.(PostBinder); ok {
		return hook.PostBind(doc)
	}
	return nil
}

func (b *Base) bindExtensionDict(doc Doc) error {
	if b.xdict == nil || !b.xdict.hasLiveDictionary() {
		return nil
	}
	dict := b.xdict.dict
	if dict.IsBound() {
		return nil
	}
	if err := dict.SetOwner(b.Handle()); err != nil {
		return err
	}
	if err := Bind(dict, doc); err != nil {
		return errors.Wrapf(err, "extension dictionary of %s", b)
	}
	return doc.Objects().AddObject(dict)
}

// CreateObject creates a new DXF object, binds it to doc and adds it to
// the objects container of doc
func CreateObject(doc Doc, dxftype string, attribs map[string]interface{}) (Entity, error) {
	e, err := New(dxftype, attribs, doc)
	if err != nil {
		return nil, err
	}
	if err := Bind(e, doc); err != nil {
		return nil, err
	}
	if err := doc.Objects().AddObject(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Copy returns a copy of e which is not stored in any entity database.
// Type specific data is copied by the DataCopier hook, which refuses types
// that cannot be copied with errors.ErrCopyNotSupported.
func Copy(e Entity, s CopySettings) (Entity, error) {
	src := e.base()
	if !src.IsAlive() {
		return nil, errors.Wrapf(errors.ErrDestroyed, "copy %s", src)
	}
	clone := src.class.New()
	cb := clone.base()
	cb.class = src.class
	cb.doc = src.doc
	cb.dxf = src.dxf.copy(cb)
	if s.ResetHandles {
		cb.dxf.resetHandles()
	}
	if copier, ok := e.(DataCopier); ok {
		if err := copier.CopyData(clone, s); err != nil {
			return nil, err
		}
	}
	if s.CopyExtensionDict && src.xdict != nil && src.xdict.hasLiveDictionary() {
		xdict, err := src.xdict.copy(s)
		if err != nil {
			return nil, errors.Wrapf(err, "extension dictionary of %s", src)
		}
		cb.xdict = xdict
	}
	if s.CopyAppData && src.appdata != nil {
		cb.appdata = src.appdata.clone()
	}
	if s.CopyXData && src.xdata != nil {
		cb.xdata = src.xdata.clone()
	}
	if s.CopyReactors && src.reactors != nil {
		cb.reactors = src.reactors.clone()
	}
	if s.SetSourceOfCopy {
		cb.SetSourceOfCopy(e)
	}
	return clone, nil
}

// Destroy deletes all data of e and releases the extension dictionary.
// Destroying a destroyed entity does nothing. e is not removed from the
// entity database or any container.
func Destroy(e Entity) {
	b := e.base()
	if !b.IsAlive() {
		return
	}
	if hook, ok := e.(Destroyer); ok {
		hook.OnDestroy()
	}
	if b.xdict != nil {
		b.xdict.destroy()
	}
	b.xdict = nil
	b.appdata = nil
	b.reactors = nil
	b.xdata = nil
	b.doc = nil
	b.dxf = nil
	b.sourceOfCopy = nil
	b.destroyed = true
}

// embeddedExporter writes data following the xdata
type embeddedExporter interface {
	exportEmbedded(w tag.Writer) error
}

// Export writes e to w: the base class, the type specific tags, embedded
// objects and the xdata. Types not supported by the writer version are skipped.
func Export(e Entity, w tag.Writer) error {
	b := e.base()
	if !b.IsAlive() {
		return errors.Wrapf(errors.ErrDestroyed, "export %s", b)
	}
	if !w.DXFVersion().AtLeast(b.class.MinExportVersion) {
		return nil
	}
	if err := b.exportBase(w); err != nil {
		return err
	}
	if exporter, ok := e.(EntityExporter); ok {
		if err := exporter.ExportEntity(w); err != nil {
			return errors.Wrapf(err, "export %s", b)
		}
	}
	if exporter, ok := e.(embeddedExporter); ok {
		if err := exporter.exportEmbedded(w); err != nil {
			return err
		}
	}
	if b.xdata != nil {
		return b.xdata.Export(w)
	}
	return nil
}

// exportBase writes (0, DXFTYPE), handle, application data, extension
// dictionary, reactors and owner. DXF R12 has no owner and optional
// handles.
func (b *Base) exportBase(w tag.Writer) error {
	dxftype := b.DXFType()
	handleCode := tag.Handle
	if dxftype == "DIMSTYLE" {
		handleCode = tag.DimStyleHandle
	}
	if err := tag.WriteTag2(w, tag.Structure, dxftype); err != nil {
		return err
	}
	handle := b.Handle()
	if !w.DXFVersion().AtLeast(version.R2000) {
		if w.WriteHandles() && handle != "" {
			return tag.WriteTag2(w, handleCode, handle)
		}
		return nil
	}
	if handle != "" {
		if err := tag.WriteTag2(w, handleCode, handle); err != nil {
			return err
		}
	}
	if b.appdata != nil {
		if err := b.appdata.Export(w); err != nil {
			return err
		}
	}
	if b.xdict != nil && b.xdict.IsAlive() {
		if err := b.xdict.export(w); err != nil {
			return err
		}
	}
	if b.reactors != nil && b.reactors.Len() > 0 {
		if err := b.reactors.Export(w); err != nil {
			return err
		}
	}
	if owner := b.Owner(); owner != "" {
		return tag.WriteTag2(w, tag.Owner, owner)
	}
	return nil
}

// ExportSubclassMarker writes (100, name) for DXF R13 and later
func ExportSubclassMarker(w tag.Writer, name string) error {
	if !w.DXFVersion().AtLeast(version.R13) {
		return nil
	}
	return tag.WriteTag2(w, tag.Subclass, name)
}
