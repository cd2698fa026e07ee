package entity

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/xtags"
)

var tagStorageSchema = func() *schema.Schema {
	graphic := schema.AcDbEntity
	graphic.Optional = true
	return schema.New(schema.BaseClass, graphic)
}()

func tagStorageClass(dxftype string) *Class {
	return &Class{
		DXFType: dxftype,
		Schema:  tagStorageSchema,
		New:     func() Entity { return &TagStorage{} },
	}
}

// TagStorage preserves entities of unregistered types. All subclasses are
// stored verbatim and exported unchanged, the namespace exposes the
// AcDbEntity attributes of graphic entities read-only.
type TagStorage struct {
	Base
	block *xtags.Block
}

// LoadAttribs stores the classified block
func (ts *TagStorage) LoadAttribs(p *Processor) error {
	p.LoadBase(ts.dxf)
	if _, err := p.LoadSubclassData(ts.dxf, 1); err != nil {
		return err
	}
	ts.block = p.Block().Clone()
	return nil
}

// Block returns the stored tags
func (ts *TagStorage) Block() *xtags.Block {
	return ts.block
}

// IsGraphic reports stored tags with an AcDbEntity subclass
func (ts *TagStorage) IsGraphic() bool {
	return ts.block != nil && ts.block.HasSubclass("AcDbEntity")
}

// GraphicProperties returns the existing AcDbEntity attributes, empty for
// non-graphic entities
func (ts *TagStorage) GraphicProperties() map[string]interface{} {
	props := make(map[string]interface{})
	if !ts.IsGraphic() || ts.dxf == nil {
		return props
	}
	sc, _ := ts.dxf.Schema().Subclass(1)
	for _, a := range sc.Attrs {
		if ts.dxf.Has(a.Name) {
			props[a.Name] = ts.dxf.Value(a.Name)
		}
	}
	return props
}

// ProxyGraphic returns the concatenated (310, data) chunks of the
// AcDbEntity subclass, nil if there are none
func (ts *TagStorage) ProxyGraphic() []byte {
	if !ts.IsGraphic() {
		return nil
	}
	tags, err := ts.block.FindSubclass("AcDbEntity", 0)
	if err != nil {
		return nil
	}
	var data []byte
	for _, t := range tags {
		if t.Code != 310 {
			continue
		}
		if b, ok := t.Bytes(); ok {
			data = append(data, b...)
		}
	}
	return data
}

// Paperspace reports an entity in paperspace
func (ts *TagStorage) Paperspace() bool {
	return ts.dxf != nil && ts.dxf.Int("paperspace") == 1
}

// CopyData refuses to copy stored tags, their handles can not be mapped
func (ts *TagStorage) CopyData(Entity, CopySettings) error {
	return errors.Wrapf(errors.ErrCopyNotSupported, "%s", &ts.Base)
}

// ExportEntity writes the stored tags of the base group and all subclasses
func (ts *TagStorage) ExportEntity(w tag.Writer) error {
	if ts.block == nil {
		return nil
	}
	if err := writeStored(w, ts.block.Base, true); err != nil {
		return err
	}
	for _, sc := range ts.block.Subclasses {
		if err := ExportSubclassMarker(w, sc.Name); err != nil {
			return err
		}
		if err := writeStored(w, sc.Tags, false); err != nil {
			return err
		}
	}
	return nil
}

// writeStored writes tags without application data references; in the base
// group also without the tags written by the base class
func writeStored(w tag.Writer, tags tag.Tags, base bool) error {
	for _, t := range tags {
		if _, ok := t.Value.(xtags.AppDataRef); ok {
			continue
		}
		if base {
			switch t.Code {
			case tag.Structure, tag.Handle, tag.DimStyleHandle, tag.Owner:
				continue
			}
		}
		if err := w.WriteTag(t); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TagStorage) exportEmbedded(w tag.Writer) error {
	if ts.block == nil {
		return nil
	}
	for _, obj := range ts.block.Embedded {
		if err := tag.WriteTags(w, obj); err != nil {
			return err
		}
	}
	return nil
}
