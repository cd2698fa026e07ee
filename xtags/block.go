// Package xtags partitions the flat tag stream of one entity into its base
// group, named subclasses, application data, extended data and embedded
// objects, and re-emits them in the original order.
//
// Subclass index 0 is always the base group; index n >= 1 is the n-th
// subclass marked by a (100, name) tag. Attribute schemas address tags by
// this index.
package xtags

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
)

// AppDataRef is the value of the (102, ref) back-reference tag which
// replaces an application data block inside its parent run
type AppDataRef int

// Subclass is a named run of tags; Tags does not include the (100, Name)
// marker
type Subclass struct {
	Name string
	Tags tag.Tags
}

// Block is a classified entity tag block
type Block struct {
	Base       tag.Tags
	Subclasses []Subclass
	AppData    []tag.Tags // including the opening and closing (102, ...) tags
	XData      []tag.Tags // each starts with (1001, APPID)
	Embedded   []tag.Tags // each starts with (101, "Embedded Object")
}

// Classify partitions tags in a single forward pass. Returns an
// errors.ErrStructure error for unterminated application data and for tags
// which belong to no group at the end of the entity.
func Classify(tags tag.Tags) (*Block, error) {
	c := classifier{tags: tags, block: &Block{}}
	if err := c.run(); err != nil {
		return nil, err
	}
	return c.block, nil
}

// ClassifyLegacy classifies tags of DXF R12 entities: subclass markers are
// flattened into the base group and embedded objects are removed.
func ClassifyLegacy(tags tag.Tags) (*Block, error) {
	b, err := Classify(tags)
	if err != nil {
		return nil, err
	}
	b.LegacyRepair()
	return b, nil
}

// Parse classifies DXF text from a trusted source
func Parse(text string) (*Block, error) {
	tags, err := tag.Parse(text)
	if err != nil {
		return nil, err
	}
	return Classify(tags)
}

// MustParse is Parse for templates and tests; it panics on errors
func MustParse(text string) *Block {
	b, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return b
}

type classifier struct {
	tags  tag.Tags
	pos   int
	block *Block
}

func (c *classifier) next() (tag.Tag, bool) {
	if c.pos >= len(c.tags) {
		return tag.Tag{}, false
	}
	t := c.tags[c.pos]
	c.pos++
	return t, true
}

func (c *classifier) peek() (tag.Tag, bool) {
	if c.pos >= len(c.tags) {
		return tag.Tag{}, false
	}
	return c.tags[c.pos], true
}

func isEndOfClass(t tag.Tag) bool {
	switch t.Code {
	case tag.Subclass, tag.XDataMarker:
		return true
	case tag.EmbeddedObject:
		return tag.IsEmbeddedObjectMarker(t)
	}
	return false
}

func (c *classifier) run() error {
	base, err := c.collectRun()
	if err != nil {
		return err
	}
	c.block.Base = base

	for {
		t, ok := c.peek()
		if !ok || t.Code != tag.Subclass {
			break
		}
		c.pos++
		run, err := c.collectRun()
		if err != nil {
			return err
		}
		c.block.Subclasses = append(c.block.Subclasses, Subclass{Name: t.Str(), Tags: run})
	}

	for {
		t, ok := c.peek()
		if !ok || !tag.IsEmbeddedObjectMarker(t) {
			break
		}
		c.pos++
		data := tag.Tags{t}
		for {
			t, ok := c.peek()
			if !ok || tag.IsEmbeddedObjectMarker(t) || t.Code == tag.XDataMarker {
				break
			}
			data = append(data, t)
			c.pos++
		}
		c.block.Embedded = append(c.block.Embedded, data)
	}

	for {
		t, ok := c.peek()
		if !ok || t.Code != tag.XDataMarker {
			break
		}
		c.pos++
		data := tag.Tags{t}
		for {
			t, ok := c.peek()
			if !ok || t.Code == tag.XDataMarker {
				break
			}
			data = append(data, t)
			c.pos++
		}
		c.block.XData = append(c.block.XData, data)
	}

	if t, ok := c.peek(); ok {
		return errors.NewStructureError("unexpected tag %s at end of entity %s", t, c.entityName())
	}
	return nil
}

// collectRun collects tags up to the next subclass, embedded object or
// xdata marker; application data is captured and replaced by a reference
func (c *classifier) collectRun() (tag.Tags, error) {
	data := tag.Tags{}
	for {
		t, ok := c.peek()
		if !ok || isEndOfClass(t) {
			return data, nil
		}
		c.pos++
		if tag.IsAppDataMarker(t) {
			ref := AppDataRef(len(c.block.AppData))
			if err := c.collectAppData(t); err != nil {
				return nil, err
			}
			data = append(data, tag.Tag{Code: tag.AppData, Value: ref})
			continue
		}
		data = append(data, t)
	}
}

func (c *classifier) collectAppData(start tag.Tag) error {
	appid := start.Str()
	// "APPID}" is an alternative closing tag
	altClose := appid[1:] + "}"
	data := tag.Tags{start}
	for {
		t, ok := c.next()
		if !ok {
			return errors.NewStructureError(
				"missing closing (102, \"}\") tag in appdata %s of entity %s", appid, c.entityName())
		}
		data = append(data, t)
		if t.Code == tag.AppData {
			if s, ok := t.Value.(string); ok && (s == "}" || s == altClose) {
				break
			}
		}
	}
	c.block.AppData = append(c.block.AppData, data)
	return nil
}

func (c *classifier) entityName() string {
	return entityName(c.tags)
}

func entityName(tags tag.Tags) string {
	name := tags.DXFType()
	if handle, ok := tags.Handle(); ok {
		name += "(#" + handle + ")"
	}
	return name
}

// DXFType returns the entity type like "LINE"
func (b *Block) DXFType() string {
	return b.Base.DXFType()
}

// Handle returns the entity handle
func (b *Block) Handle() (string, bool) {
	return b.Base.Handle()
}

// ReplaceHandle replaces the existing handle tag or inserts a (5, handle)
// tag after the structure tag
func (b *Block) ReplaceHandle(handle string) {
	for i, t := range b.Base {
		if tag.IsHandleCode(t.Code) {
			b.Base[i] = tag.Tag{Code: t.Code, Value: handle}
			return
		}
	}
	h := tag.Tag{Code: tag.Handle, Value: handle}
	if len(b.Base) == 0 {
		b.Base = tag.Tags{h}
		return
	}
	b.Base = append(b.Base[:1], append(tag.Tags{h}, b.Base[1:]...)...)
}

// Name returns "DXFTYPE(#handle)" for log messages
func (b *Block) Name() string {
	return entityName(b.Base)
}

// Len returns the count of subclass runs including the base group
func (b *Block) Len() int {
	return len(b.Subclasses) + 1
}

// SubclassAt returns the run at index, 0 is the base group
func (b *Block) SubclassAt(index int) (tag.Tags, bool) {
	switch {
	case index == 0:
		return b.Base, true
	case index > 0 && index <= len(b.Subclasses):
		return b.Subclasses[index-1].Tags, true
	}
	return nil, false
}

// SubclassNameAt returns the name of the run at index, "" for the base group
func (b *Block) SubclassNameAt(index int) string {
	if index > 0 && index <= len(b.Subclasses) {
		return b.Subclasses[index-1].Name
	}
	return ""
}

// FindSubclass returns the occurrence-th subclass called name in document
// order (occurrence 0 is the first one)
func (b *Block) FindSubclass(name string, occurrence int) (tag.Tags, error) {
	index, err := b.SubclassIndex(name, occurrence)
	if err != nil {
		return nil, err
	}
	return b.Subclasses[index-1].Tags, nil
}

// SubclassIndex returns the run index of the occurrence-th subclass called
// name
func (b *Block) SubclassIndex(name string, occurrence int) (int, error) {
	n := 0
	for i, sc := range b.Subclasses {
		if sc.Name != name {
			continue
		}
		if n == occurrence {
			return i + 1, nil
		}
		n++
	}
	return 0, errors.Wrapf(errors.ErrSubclassNotFound, "subclass %q (occurrence %d) in %s", name, occurrence, b.Name())
}

// HasSubclass reports whether any subclass is called name
func (b *Block) HasSubclass(name string) bool {
	_, err := b.SubclassIndex(name, 0)
	return err == nil
}

// Serialize returns the flat tag stream: base group, subclasses with their
// markers, application data expanded at its reference, embedded objects,
// xdata
func (b *Block) Serialize() tag.Tags {
	out := make(tag.Tags, 0, b.size())
	out = b.appendRun(out, b.Base)
	for _, sc := range b.Subclasses {
		out = append(out, tag.Tag{Code: tag.Subclass, Value: sc.Name})
		out = b.appendRun(out, sc.Tags)
	}
	for _, emb := range b.Embedded {
		out = append(out, emb...)
	}
	for _, xd := range b.XData {
		out = append(out, xd...)
	}
	return out
}

func (b *Block) appendRun(out, run tag.Tags) tag.Tags {
	for _, t := range run {
		if ref, ok := t.Value.(AppDataRef); ok && t.Code == tag.AppData {
			if int(ref) < len(b.AppData) {
				out = append(out, b.AppData[ref]...)
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func (b *Block) size() int {
	n := len(b.Base)
	for _, sc := range b.Subclasses {
		n += len(sc.Tags) + 1
	}
	for _, group := range [][]tag.Tags{b.AppData, b.XData, b.Embedded} {
		for _, tags := range group {
			n += len(tags)
		}
	}
	return n
}

// Clone returns a deep copy; tag values are immutable and shared
func (b *Block) Clone() *Block {
	clone := &Block{
		Base:     b.Base.Clone(),
		AppData:  cloneAll(b.AppData),
		XData:    cloneAll(b.XData),
		Embedded: cloneAll(b.Embedded),
	}
	for _, sc := range b.Subclasses {
		clone.Subclasses = append(clone.Subclasses, Subclass{Name: sc.Name, Tags: sc.Tags.Clone()})
	}
	return clone
}

func cloneAll(groups []tag.Tags) []tag.Tags {
	if groups == nil {
		return nil
	}
	out := make([]tag.Tags, len(groups))
	for i, tags := range groups {
		out[i] = tags.Clone()
	}
	return out
}

// FlattenSubclasses moves the content of all subclasses into the base group
// and drops the subclass markers. Some DXF R12 writers emit subclass markers
// which R12 readers have to ignore.
func (b *Block) FlattenSubclasses() {
	if len(b.Subclasses) == 0 {
		return
	}
	for _, sc := range b.Subclasses {
		b.Base = append(b.Base, sc.Tags...)
	}
	b.Subclasses = nil
	debug(b, "Removed subclass markers from DXF R12 entity")
}

// LegacyRepair applies the DXF R12 rules. Application data is kept, removing
// it would corrupt the references.
func (b *Block) LegacyRepair() {
	b.FlattenSubclasses()
	if len(b.AppData) > 0 {
		debug(b, "Found application defined data in DXF R12 entity")
	}
	if b.Embedded != nil {
		b.Embedded = nil
		debug(b, "Removed embedded object from DXF R12 entity")
	}
}

func debug(b *Block, msg string) {
	handle, _ := b.Handle()
	logger.ComponentLogger("dxf.xtags").Debugw(msg,
		logger.FieldDXFType, b.DXFType(),
		logger.FieldHandle, handle,
	)
}
