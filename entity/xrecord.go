package entity

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

var xrecordSchema = schema.New(
	schema.BaseClass,
	schema.Def("AcDbXrecord",
		schema.Attr{Name: "cloning", Code: 280, Default: 1},
	),
)

// XRecord is the XRECORD object: arbitrary tags stored by applications
type XRecord struct {
	Base
	tags tag.Tags
}

// Tags returns a copy of the stored tags
func (x *XRecord) Tags() tag.Tags {
	return x.tags.Clone()
}

// Reset replaces the stored tags
func (x *XRecord) Reset(tags tag.Tags) {
	x.tags = tags.Clone()
}

// Extend appends tags
func (x *XRecord) Extend(tags tag.Tags) {
	x.tags = append(x.tags, tags.Clone()...)
}

// Clear removes all tags
func (x *XRecord) Clear() {
	x.tags = nil
}

// LoadAttribs requires the AcDbXrecord subclass. The first tag is the
// cloning flag, except for DXF R13/R14.
func (x *XRecord) LoadAttribs(p *Processor) error {
	p.LoadBase(x.dxf)
	tags, ok := p.Block().SubclassAt(1)
	if !ok {
		return errors.NewStructureError("missing subclass AcDbXrecord in XRECORD(#%s)", x.Handle())
	}
	start := 0
	if len(tags) > 0 && x.dxfVersion().AtLeast(version.R2000) {
		if t := tags[0]; t.Code == 280 {
			if i, ok := t.Int(); ok {
				x.dxf.unprotectedSet(mustKey(x.dxf, "cloning"), i)
			}
			start = 1
		} else {
			p.logger.Infow("Expected group code 280 as first tag in AcDbXrecord")
		}
	}
	x.tags = tags[start:].Clone()
	return nil
}

func mustKey(ns *Namespace, name string) schema.Key {
	key, ok := ns.Schema().Key(name)
	if !ok {
		panic("entity: missing attribute " + name)
	}
	return key
}

// ExportEntity writes the AcDbXrecord subclass
func (x *XRecord) ExportEntity(w tag.Writer) error {
	if err := ExportSubclassMarker(w, "AcDbXrecord"); err != nil {
		return err
	}
	if err := tag.WriteTag2(w, 280, x.dxf.Int("cloning")); err != nil {
		return err
	}
	return tag.WriteTags(w, x.tags)
}

// CopyData copies the stored tags
func (x *XRecord) CopyData(clone Entity, _ CopySettings) error {
	clone.(*XRecord).tags = x.tags.Clone()
	return nil
}
