package entity

import (
	"go.uber.org/zap"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
	"github.com/teranos/dxfcore/xtags"
)

// LoadOptions configures the untrusted load path
type LoadOptions struct {
	// Recover AcDbEntity attributes written into later subclasses
	RecoverGraphicAttributes bool
	// Log tags without attribute definition at info level
	LogUnprocessedTags bool
}

// DefaultLoadOptions returns the reader defaults
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{RecoverGraphicAttributes: true}
}

// Processor loads the subclasses of a classified tag block into a
// namespace. DXF R12 entities have no subclass markers, all schema
// subclasses are loaded from the base group.
type Processor struct {
	block   *xtags.Block
	version version.Version
	opts    LoadOptions
	r12     bool
	report  *LoadReport
	logger  *zap.SugaredLogger
}

// NewProcessor creates a processor for block loaded from a document of
// DXF version v, "" if the version is unknown
func NewProcessor(block *xtags.Block, v version.Version, opts LoadOptions) *Processor {
	handle, _ := block.Handle()
	return &Processor{
		block:   block,
		version: v,
		opts:    opts,
		// CLASS entities have no subclass markers in any version
		r12:    v == version.R12 || len(block.Subclasses) == 0,
		report: newLoadReport(block.DXFType(), handle),
		logger: logger.EntityLogger(logger.ComponentLogger("dxf.loader"), block.DXFType(), handle),
	}
}

// Block returns the processed tag block
func (p *Processor) Block() *xtags.Block {
	return p.block
}

// IsR12 reports the flat DXF R12 layout
func (p *Processor) IsR12() bool {
	return p.r12
}

// Version returns the DXF version of the source document
func (p *Processor) Version() version.Version {
	return p.version
}

// Report returns the collected repairs
func (p *Processor) Report() *LoadReport {
	return p.report
}

// LoadBase loads handle and owner from the base group. The handle code of
// DIMSTYLE table entries is 105.
func (p *Processor) LoadBase(ns *Namespace) {
	handleCode := tag.Handle
	if p.block.DXFType() == "DIMSTYLE" {
		handleCode = tag.DimStyleHandle
	}
	var handle, owner string
	for _, t := range p.block.Base {
		switch t.Code {
		case handleCode:
			if handle == "" {
				handle = t.Str()
			}
		case tag.Owner:
			if owner == "" {
				owner = t.Str()
			}
		}
		if handle != "" && owner != "" {
			break
		}
	}
	// R12 tables have no handles
	if handle != "" {
		if err := ns.Set(attrHandle, handle); err != nil {
			p.logger.Debugw("Ignored invalid handle", logger.FieldValue, handle)
		}
	}
	if owner != "" {
		if err := ns.Set(attrOwner, owner); err != nil {
			p.logger.Debugw("Ignored invalid owner handle", logger.FieldValue, owner)
		}
	}
}

// SubclassTags returns the tags of schema subclass index. Subclasses are
// located by name, repeated names by their occurrence. A missing subclass
// is a structure error unless the schema declares it optional.
func (p *Processor) SubclassTags(s *schema.Schema, index int) (tag.Tags, error) {
	if p.r12 || index == 0 {
		return p.block.Base, nil
	}
	sc, ok := s.Subclass(index)
	if !ok {
		return nil, errors.Wrapf(errors.ErrSubclassNotFound, "schema subclass index %d", index)
	}
	occurrence := 0
	for i := 1; i < index; i++ {
		if prev, _ := s.Subclass(i); prev.Name == sc.Name {
			occurrence++
		}
	}
	tags, err := p.block.FindSubclass(sc.Name, occurrence)
	if err != nil {
		if sc.Optional {
			return nil, nil
		}
		return nil, errors.NewStructureError("missing required subclass %s in %s", sc.Name, p.block.Name())
	}
	return tags, nil
}

// LoadSubclass loads the attributes of schema subclass index into ns and
// returns the tags without attribute definition. Duplicate group codes are
// assigned to the attributes in definition order. Invalid values are
// repaired according to the recovery policy of each attribute.
//
// In R12 mode all tags are in one group and the unprocessed tags are
// returned without graphic attribute recovery.
func (p *Processor) LoadSubclass(ns *Namespace, index int, recoverGraphic bool) (tag.Tags, error) {
	return p.loadSubclass(ns, index, recoverGraphic, true)
}

// LoadSubclassData loads the attributes of schema subclass index like
// LoadSubclass but neither reports nor logs the remaining tags. Entity
// types storing their own data in the subclass, like the entries of a
// DICTIONARY, process the returned tags themselves.
func (p *Processor) LoadSubclassData(ns *Namespace, index int) (tag.Tags, error) {
	return p.loadSubclass(ns, index, false, false)
}

func (p *Processor) loadSubclass(ns *Namespace, index int, recoverGraphic, report bool) (tag.Tags, error) {
	s := ns.Schema()
	tags, err := p.SubclassTags(s, index)
	if err != nil {
		return nil, err
	}
	unprocessed := tag.Tags{}
	if len(tags) == 0 {
		return unprocessed, nil
	}
	mapping := s.CodeMapping(index)
	sc, _ := s.Subclass(index)
	subclass := sc.Name
	processed := make(map[schema.Key]bool)

	start := 0
	if tags[0].Code == tag.Structure || tags[0].Code == tag.Subclass {
		start = 1
	}
	for _, t := range tags[start:] {
		if _, ok := t.Value.(xtags.AppDataRef); ok {
			continue
		}
		key, found := nextKey(mapping[t.Code], processed)
		if !found {
			unprocessed = append(unprocessed, t)
			continue
		}
		processed[key] = true
		p.store(ns, s.At(key), subclass, t)
	}

	if p.r12 {
		return unprocessed, nil
	}
	if recoverGraphic && len(unprocessed) > 0 {
		unprocessed = p.recoverGraphicAttributes(ns, unprocessed)
	}
	if report && len(unprocessed) > 0 {
		p.report.addUnprocessed(subclass, unprocessed)
		if p.opts.LogUnprocessedTags {
			for _, t := range unprocessed {
				p.logger.Infow("Ignored tag",
					logger.FieldSubclass, subclass,
					logger.FieldCode, t.Code,
					logger.FieldValue, t.Str(),
				)
			}
		}
	}
	return unprocessed, nil
}

func nextKey(keys []schema.Key, processed map[schema.Key]bool) (schema.Key, bool) {
	for _, key := range keys {
		if !processed[key] {
			return key, true
		}
	}
	return 0, false
}

// store casts and validates the loaded value of a, invalid values are
// repaired by the recovery policy of a
func (p *Processor) store(ns *Namespace, a *schema.Attr, subclass string, t tag.Tag) {
	v, err := a.Cast(t.Value)
	if err == nil && a.IsValid(v) {
		ns.unprotectedSet(a.Key, v)
		return
	}
	if err != nil {
		// an uncastable value can only be kept raw
		v = t.Value
	}
	issue := AttrIssue{
		Subclass:  subclass,
		Attribute: a.Name,
		Code:      t.Code,
		Value:     v,
		Policy:    a.Recovery,
	}
	var result interface{}
	ok := false
	if err == nil || a.Recovery != schema.RecoverFix {
		result, ok = a.Recover(v)
	}
	if !ok {
		issue.Policy = schema.RecoverDiscard
		p.report.Issues = append(p.report.Issues, issue)
		p.logger.Debugw("Discarded invalid attribute",
			logger.FieldAttribute, a.Name,
			logger.FieldValue, t.Str(),
		)
		return
	}
	issue.Result = result
	p.report.Issues = append(p.report.Issues, issue)
	ns.unprotectedSet(a.Key, result)
	p.logger.Debugw("Fixed invalid attribute",
		logger.FieldAttribute, a.Name,
		logger.FieldValue, t.Str(),
		"policy", a.Recovery.String(),
	)
}

// recoverGraphicAttributes loads misplaced AcDbEntity tags. A tag is only
// taken if the attribute is not set yet.
func (p *Processor) recoverGraphicAttributes(ns *Namespace, tags tag.Tags) tag.Tags {
	s := ns.Schema()
	remaining := tag.Tags{}
	for _, t := range tags {
		name, ok := schema.GraphicAttributeCodes[t.Code]
		if !ok || ns.Has(name) {
			remaining = append(remaining, t)
			continue
		}
		a, ok := s.Get(name)
		if !ok {
			remaining = append(remaining, t)
			continue
		}
		p.store(ns, a, "AcDbEntity", t)
		p.report.Recovered = append(p.report.Recovered, name)
		p.logger.Debugw("Recovered graphic attribute",
			logger.FieldAttribute, name,
			logger.FieldCode, t.Code,
		)
	}
	return remaining
}

// Load loads handle, owner and all schema subclasses into ns. Graphic
// attributes are recovered from the subclasses following AcDbEntity if
// enabled by the load options.
func (p *Processor) Load(ns *Namespace) error {
	p.LoadBase(ns)
	s := ns.Schema()
	acdbEntity, graphic := s.SubclassIndex("AcDbEntity")
	for index := 1; index < len(s.Subclasses()); index++ {
		recoverGraphic := p.opts.RecoverGraphicAttributes && graphic && index > acdbEntity
		if _, err := p.LoadSubclass(ns, index, recoverGraphic); err != nil {
			return err
		}
	}
	return nil
}

// LoadMerged loads the attributes of all subclasses ignoring the subclass
// structure. Works only for entities with unique group codes in all
// subclasses, but loads very malformed files.
func (p *Processor) LoadMerged(ns *Namespace) {
	s := ns.Schema()
	mapping := s.MergedCodeMapping()
	load := func(tags tag.Tags) {
		for _, t := range tags {
			keys := mapping[t.Code]
			if len(keys) != 1 {
				continue
			}
			p.store(ns, s.At(keys[0]), "", t)
		}
	}
	load(p.block.Base)
	for _, sc := range p.block.Subclasses {
		load(sc.Tags)
	}
}

// MergeBaseIntoAcDbEntity appends the non-base tags of the base group to
// the AcDbEntity subclass. Some writers mix both groups.
func (p *Processor) MergeBaseIntoAcDbEntity() {
	if p.r12 || len(p.block.Subclasses) == 0 || p.block.Subclasses[0].Name != "AcDbEntity" {
		return
	}
	sc := &p.block.Subclasses[0]
	for _, t := range p.block.Base {
		switch t.Code {
		case tag.Structure, tag.Handle, tag.AppData, tag.Owner:
			continue
		}
		sc.Tags = append(sc.Tags, t)
	}
}

// DetectImplementationVersion returns the value of the first tag of schema
// subclass index if it has group code code, otherwise def
func (p *Processor) DetectImplementationVersion(s *schema.Schema, index, code, def int) int {
	tags, err := p.SubclassTags(s, index)
	if err != nil || len(tags) == 0 {
		return def
	}
	t := tags[0]
	if t.Code == tag.Structure || t.Code == tag.Subclass {
		if len(tags) < 2 {
			return def
		}
		t = tags[1]
	}
	if t.Code != code {
		return def
	}
	if i, ok := t.Int(); ok {
		return i
	}
	return def
}
