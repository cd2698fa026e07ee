package entity

import (
	"strings"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
)

const (
	dictKeyCode = 3
	// soft owner handle
	dictValueCode = 350
	// hard owner handle, written by some applications and accepted by
	// AutoCAD
	dictHardValueCode = 360
)

var dictionarySchema = schema.New(
	schema.BaseClass,
	schema.Def("AcDbDictionary",
		// BricsCAD writes hard owning dictionaries without group code 280
		schema.Attr{Name: "hard_owned", Code: 280, Default: 1, Optional: true,
			Validator: schema.IsIntegerBool, Recovery: schema.RecoverDefault},
		// duplicate record cloning flag, 1 = keep existing
		schema.Attr{Name: "cloning", Code: 281, Default: 1,
			Validator: schema.IsInIntRange(0, 6), Recovery: schema.RecoverDefault},
	),
)

// dictEntry references an entity by handle until the entity is resolved
type dictEntry struct {
	handle string
	entity Entity
}

func (de dictEntry) currentHandle() string {
	if de.entity != nil {
		if !de.entity.IsAlive() {
			return "0"
		}
		return de.entity.Handle()
	}
	return de.handle
}

// Dictionary is the DICTIONARY object: named references to DXF objects.
// Entries of a hard owning dictionary are destroyed with the dictionary.
type Dictionary struct {
	Base
	keys      []string
	entries   map[string]dictEntry
	valueCode int
}

func (d *Dictionary) data() map[string]dictEntry {
	if d.entries == nil {
		d.entries = make(map[string]dictEntry)
	}
	return d.entries
}

// IsHardOwner reports a dictionary owning its entries
func (d *Dictionary) IsHardOwner() bool {
	return d.dxf != nil && d.dxf.Int("hard_owned") != 0
}

// LoadAttribs loads hard_owned, cloning and the (3, key) (350, handle)
// entries
func (d *Dictionary) LoadAttribs(p *Processor) error {
	p.LoadBase(d.dxf)
	tags, err := p.LoadSubclassData(d.dxf, 1)
	if err != nil {
		return err
	}
	d.loadEntries(tags)
	return nil
}

func (d *Dictionary) loadEntries(tags tag.Tags) {
	var key, handle string
	valueCode := dictValueCode
	for _, t := range tags {
		switch t.Code {
		case dictValueCode, dictHardValueCode:
			valueCode = t.Code
			handle = strings.ToUpper(t.Str())
		case dictKeyCode:
			key = t.Str()
		}
		if key != "" && handle != "" {
			d.setEntry(key, dictEntry{handle: handle})
			key, handle = "", ""
		}
	}
	// export with the loaded value code
	d.valueCode = valueCode
}

func (d *Dictionary) setEntry(key string, entry dictEntry) {
	data := d.data()
	if _, exists := data[key]; !exists {
		d.keys = append(d.keys, key)
	}
	data[key] = entry
}

// PostLoad resolves the entry handles, unresolved entries are kept as
// handles
func (d *Dictionary) PostLoad(doc Doc) error {
	db := doc.EntityDB()
	for _, key := range d.keys {
		entry := d.entries[key]
		if entry.entity != nil {
			continue
		}
		e, err := db.Lookup(entry.handle)
		if err != nil || !e.IsAlive() {
			continue
		}
		d.entries[key] = dictEntry{handle: entry.handle, entity: e}
	}
	return nil
}

// ExportEntity writes the AcDbDictionary subclass. Destroyed entries are
// written with handle "0", removing them could leave an empty dictionary.
func (d *Dictionary) ExportEntity(w tag.Writer) error {
	if err := ExportSubclassMarker(w, "AcDbDictionary"); err != nil {
		return err
	}
	if err := d.dxf.Export(w, "hard_owned", "cloning"); err != nil {
		return err
	}
	valueCode := d.valueCode
	if valueCode == 0 {
		valueCode = dictValueCode
	}
	for _, key := range d.keys {
		if err := tag.WriteTag2(w, dictKeyCode, key); err != nil {
			return err
		}
		if err := tag.WriteTag2(w, valueCode, d.entries[key].currentHandle()); err != nil {
			return err
		}
	}
	return nil
}

// CopyData copies the entries. Entries of a hard owning dictionary are
// copied as virtual entities, bound by PostBind of the copy.
func (d *Dictionary) CopyData(clone Entity, s CopySettings) error {
	c := clone.(*Dictionary)
	c.valueCode = d.valueCode
	c.keys = nil
	c.entries = make(map[string]dictEntry, len(d.entries))
	if !d.IsHardOwner() {
		for _, key := range d.keys {
			c.setEntry(key, d.entries[key])
		}
		return nil
	}
	for _, key := range d.keys {
		entry := d.entries[key]
		if entry.entity == nil || !entry.entity.IsAlive() {
			continue
		}
		copied, err := Copy(entry.entity, s)
		if err != nil {
			if errors.Is(err, errors.ErrCopyNotSupported) && s.IgnoreCopyErrorsInLinkedEntities {
				logger.ComponentLogger("dxf.entity").Warnw("Copy ignored linked entity",
					logger.FieldHandle, entry.entity.Handle(),
					logger.FieldDXFType, entry.entity.DXFType(),
				)
				continue
			}
			return errors.Wrapf(err, "entry %q of %s", key, &d.Base)
		}
		c.setEntry(key, dictEntry{entity: copied})
	}
	return nil
}

// PostBind binds the hard owned entries of a new or copied dictionary to
// doc and adds them to the objects container
func (d *Dictionary) PostBind(doc Doc) error {
	if !d.IsHardOwner() {
		return nil
	}
	owner := d.Handle()
	for _, key := range d.keys {
		e := d.entries[key].entity
		if e == nil || !e.IsAlive() {
			continue
		}
		if err := e.base().SetOwner(owner); err != nil {
			return err
		}
		if e.base().IsBound() {
			continue
		}
		if err := Bind(e, doc); err != nil {
			return errors.Wrapf(err, "entry %q of %s", key, &d.Base)
		}
		if err := doc.Objects().AddObject(e); err != nil {
			return err
		}
		d.entries[key] = dictEntry{entity: e}
	}
	return nil
}

// OnDestroy deletes the hard owned entries
func (d *Dictionary) OnDestroy() {
	if d.IsHardOwner() {
		d.deleteHardOwnedEntries()
	}
}

func (d *Dictionary) deleteHardOwnedEntries() {
	var objects Container
	if d.doc != nil {
		objects = d.doc.Objects()
	}
	for _, key := range d.keys {
		e := d.entries[key].entity
		if e == nil || !e.IsAlive() {
			continue
		}
		if objects != nil && objects.HasHandle(e.Handle()) {
			if err := objects.DeleteEntity(e); err == nil {
				continue
			}
		}
		Destroy(e)
	}
}

// Audit removes entries pointing to missing or destroyed entities
func (d *Dictionary) Audit(db Database, report *AuditReport) {
	if !d.IsAlive() {
		return
	}
	var trash []string
	for _, key := range d.keys {
		entry := d.entries[key]
		switch {
		case entry.entity == nil:
			if !db.Has(entry.handle) {
				trash = append(trash, key)
			}
		case !entry.entity.IsAlive() || !db.Has(entry.entity.Handle()):
			trash = append(trash, key)
		}
	}
	for _, key := range trash {
		d.Discard(key)
		report.Fixed(AuditInvalidDictionaryEntry, d, "removed entry %q with invalid handle", key)
	}
}

// Len returns the count of entries
func (d *Dictionary) Len() int {
	return len(d.keys)
}

// Keys returns the entry keys in insertion order
func (d *Dictionary) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Has reports entry key
func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Get returns the entity of entry key. Entries which could not be resolved
// fail with errors.ErrNotFound, their handle is available from GetHandle.
func (d *Dictionary) Get(key string) (Entity, error) {
	entry, ok := d.entries[key]
	if !ok {
		return nil, errors.NewNotFoundError("key %q in %s", key, &d.Base)
	}
	if entry.entity == nil {
		return nil, errors.NewNotFoundError("entity #%s of key %q in %s", entry.handle, key, &d.Base)
	}
	return entry.entity, nil
}

// GetHandle returns the handle of entry key, "0" for destroyed entities
func (d *Dictionary) GetHandle(key string) (string, error) {
	entry, ok := d.entries[key]
	if !ok {
		return "", errors.NewNotFoundError("key %q in %s", key, &d.Base)
	}
	return entry.currentHandle(), nil
}

// FindKey returns the key of e, "" if e is not an entry
func (d *Dictionary) FindKey(e Entity) string {
	for _, key := range d.keys {
		if entry := d.entries[key]; entry.entity != nil && entry.entity.base() == e.base() {
			return key
		}
	}
	return ""
}

// Add adds e as entry key. A hard owning dictionary does not take the
// ownership of e, see TakeOwnership. Graphic entities are not allowed,
// while loading they are preserved with a warning.
func (d *Dictionary) Add(key string, e Entity) error {
	if g, ok := e.(interface{ IsGraphic() bool }); ok && g.IsGraphic() {
		if d.doc == nil || !d.doc.IsLoading() {
			return errors.Wrapf(errors.ErrInvalidValue, "graphic entity %s not allowed in %s", e.base(), &d.Base)
		}
		logger.ComponentLogger("dxf.entity").Warnw("Graphic entity in dictionary",
			logger.FieldHandle, d.Handle(),
			logger.FieldDXFType, e.DXFType(),
		)
	}
	d.setEntry(key, dictEntry{handle: e.Handle(), entity: e})
	return nil
}

// AddHandle adds an entry by handle, resolved by PostLoad
func (d *Dictionary) AddHandle(key, handle string) error {
	if !tag.IsValidHandle(handle) {
		return errors.Wrapf(errors.ErrInvalidHandle, "#%s for key %q", handle, key)
	}
	d.setEntry(key, dictEntry{handle: strings.ToUpper(handle)})
	return nil
}

// TakeOwnership adds e as entry key and sets the owner of e
func (d *Dictionary) TakeOwnership(key string, e Entity) error {
	if err := d.Add(key, e); err != nil {
		return err
	}
	return e.base().SetOwner(d.Handle())
}

// Remove deletes entry key, hard owned entities are destroyed
func (d *Dictionary) Remove(key string) error {
	entry, ok := d.entries[key]
	if !ok {
		return errors.NewNotFoundError("key %q in %s", key, &d.Base)
	}
	if d.IsHardOwner() && entry.entity != nil && entry.entity.IsAlive() {
		if d.doc == nil {
			Destroy(entry.entity)
		} else if err := d.doc.Objects().DeleteEntity(entry.entity); err != nil {
			return err
		}
	}
	d.Discard(key)
	return nil
}

// Discard removes entry key without destroying the entity
func (d *Dictionary) Discard(key string) {
	if _, ok := d.entries[key]; !ok {
		return
	}
	delete(d.entries, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clear removes all entries, hard owned entities are destroyed
func (d *Dictionary) Clear() {
	if d.IsHardOwner() {
		d.deleteHardOwnedEntries()
	}
	d.keys = nil
	d.entries = nil
}

// AddDictionary creates a new DICTIONARY as entry key
func (d *Dictionary) AddDictionary(key string, hardOwned bool) (*Dictionary, error) {
	if d.doc == nil {
		return nil, errors.Wrapf(errors.ErrInvalidHandle, "%s is not bound to a document", &d.Base)
	}
	owned := 0
	if hardOwned {
		owned = 1
	}
	e, err := CreateObject(d.doc, "DICTIONARY", map[string]interface{}{
		attrOwner:    d.Handle(),
		"hard_owned": owned,
	})
	if err != nil {
		return nil, err
	}
	if err := d.Add(key, e); err != nil {
		return nil, err
	}
	return e.(*Dictionary), nil
}

// AddXRecord creates a new XRECORD as entry key
func (d *Dictionary) AddXRecord(key string) (*XRecord, error) {
	if d.doc == nil {
		return nil, errors.Wrapf(errors.ErrInvalidHandle, "%s is not bound to a document", &d.Base)
	}
	e, err := CreateObject(d.doc, "XRECORD", map[string]interface{}{attrOwner: d.Handle()})
	if err != nil {
		return nil, err
	}
	if err := d.Add(key, e); err != nil {
		return nil, err
	}
	return e.(*XRecord), nil
}
