package entity

import "github.com/teranos/dxfcore/tag"

// Generic is a schema driven entity type registered by RegisterGeneric.
// Tags without attribute definition are kept per subclass and exported
// after the attributes of their subclass. DXF R12 entities keep no
// unprocessed tags.
type Generic struct {
	Base
	unprocessed map[int]tag.Tags
}

// Unprocessed returns the tags without attribute definition of schema
// subclass index
func (g *Generic) Unprocessed(index int) tag.Tags {
	return g.unprocessed[index].Clone()
}

// LoadAttribs loads all schema subclasses
func (g *Generic) LoadAttribs(p *Processor) error {
	p.LoadBase(g.dxf)
	s := g.dxf.Schema()
	acdbEntity, graphic := s.SubclassIndex("AcDbEntity")
	for index := 1; index < len(s.Subclasses()); index++ {
		recoverGraphic := p.opts.RecoverGraphicAttributes && graphic && index > acdbEntity
		tags, err := p.LoadSubclass(g.dxf, index, recoverGraphic)
		if err != nil {
			return err
		}
		if p.IsR12() || len(tags) == 0 {
			continue
		}
		if g.unprocessed == nil {
			g.unprocessed = make(map[int]tag.Tags)
		}
		g.unprocessed[index] = tags.Clone()
	}
	return nil
}

// ExportEntity writes all schema subclasses
func (g *Generic) ExportEntity(w tag.Writer) error {
	s := g.dxf.Schema()
	for index := 1; index < len(s.Subclasses()); index++ {
		sc, _ := s.Subclass(index)
		if err := ExportSubclassMarker(w, sc.Name); err != nil {
			return err
		}
		if err := g.dxf.ExportSubclass(w, index); err != nil {
			return err
		}
		if err := tag.WriteTags(w, g.unprocessed[index]); err != nil {
			return err
		}
	}
	return nil
}

// CopyData copies the unprocessed tags
func (g *Generic) CopyData(clone Entity, _ CopySettings) error {
	c := clone.(*Generic)
	if g.unprocessed == nil {
		return nil
	}
	c.unprocessed = make(map[int]tag.Tags, len(g.unprocessed))
	for index, tags := range g.unprocessed {
		c.unprocessed[index] = tags.Clone()
	}
	return nil
}
