package entity

import (
	"strings"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
)

// ExtensionDict links an entity to a hard owned DICTIONARY object, stored
// as "{ACAD_XDICTIONARY" application data. The dictionary is not shared:
// every copy of the owner gets its own copy of the dictionary, destroying
// the owner destroys the dictionary.
type ExtensionDict struct {
	// dictionary handle of the first loading stage
	handle    string
	dict      *Dictionary
	destroyed bool
}

// xdictFromTags loads [(102, "{ACAD_XDICTIONARY"), (360, handle), (102, "}")]
func xdictFromTags(data tag.Tags) (*ExtensionDict, error) {
	if len(data) != 3 || data[1].Code != tag.XDict {
		return nil, errors.NewStructureError("invalid %s application data", AcadXDictionary)
	}
	return &ExtensionDict{handle: strings.ToUpper(data[1].Str())}, nil
}

func newExtensionDict(doc Doc, owner string) (*ExtensionDict, error) {
	e, err := CreateObject(doc, "DICTIONARY", map[string]interface{}{
		attrOwner:    owner,
		"hard_owned": 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create extension dictionary")
	}
	return &ExtensionDict{dict: e.(*Dictionary)}, nil
}

// Dictionary returns the underlying DICTIONARY object
func (x *ExtensionDict) Dictionary() (*Dictionary, error) {
	if x.destroyed {
		return nil, errors.Wrap(errors.ErrDestroyed, "extension dictionary")
	}
	if x.dict == nil {
		return nil, errors.NewNotFoundError("extension dictionary #%s is not resolved", x.handle)
	}
	return x.dict, nil
}

// Handle returns the handle of the underlying DICTIONARY object
func (x *ExtensionDict) Handle() string {
	if x.dict != nil {
		return x.dict.Handle()
	}
	return x.handle
}

// IsAlive is false after destroy. An unresolved handle is alive.
func (x *ExtensionDict) IsAlive() bool {
	return !x.destroyed
}

func (x *ExtensionDict) hasLiveDictionary() bool {
	return !x.destroyed && x.dict != nil && x.dict.IsAlive()
}

// Get returns entry key
func (x *ExtensionDict) Get(key string) (Entity, error) {
	d, err := x.Dictionary()
	if err != nil {
		return nil, err
	}
	return d.Get(key)
}

// Has reports entry key
func (x *ExtensionDict) Has(key string) bool {
	return x.hasLiveDictionary() && x.dict.Has(key)
}

// Keys returns the entry keys in insertion order
func (x *ExtensionDict) Keys() []string {
	if !x.hasLiveDictionary() {
		return nil
	}
	return x.dict.Keys()
}

// Len returns the count of entries
func (x *ExtensionDict) Len() int {
	if !x.hasLiveDictionary() {
		return 0
	}
	return x.dict.Len()
}

// Add adds e as entry key, only DXF objects are allowed
func (x *ExtensionDict) Add(key string, e Entity) error {
	d, err := x.Dictionary()
	if err != nil {
		return err
	}
	return d.Add(key, e)
}

// Remove deletes entry key and destroys the referenced object
func (x *ExtensionDict) Remove(key string) error {
	d, err := x.Dictionary()
	if err != nil {
		return err
	}
	return d.Remove(key)
}

// Discard removes entry key without destroying the referenced object
func (x *ExtensionDict) Discard(key string) {
	if x.hasLiveDictionary() {
		x.dict.Discard(key)
	}
}

// Link adds e as entry name and sets the owner of e
func (x *ExtensionDict) Link(name string, e Entity) error {
	d, err := x.Dictionary()
	if err != nil {
		return err
	}
	return d.TakeOwnership(name, e)
}

// AddXRecord creates a new XRECORD as entry name
func (x *ExtensionDict) AddXRecord(name string) (*XRecord, error) {
	d, err := x.Dictionary()
	if err != nil {
		return nil, err
	}
	return d.AddXRecord(name)
}

// AddDictionary creates a new DICTIONARY as entry name
func (x *ExtensionDict) AddDictionary(name string, hardOwned bool) (*Dictionary, error) {
	d, err := x.Dictionary()
	if err != nil {
		return nil, err
	}
	return d.AddDictionary(name, hardOwned)
}

func (x *ExtensionDict) updateOwner(handle string) {
	if !x.hasLiveDictionary() {
		return
	}
	if err := x.dict.SetOwner(handle); err != nil {
		logger.ComponentLogger("dxf.entity").Debugw("Invalid extension dictionary owner",
			logger.FieldOwner, handle,
			logger.FieldError, err.Error(),
		)
	}
}

// loadResources resolves the dictionary handle of the first loading stage
func (x *ExtensionDict) loadResources(db Database) {
	if x.destroyed || x.dict != nil || x.handle == "" {
		return
	}
	e, err := db.Lookup(x.handle)
	if err == nil {
		if d, ok := e.(*Dictionary); ok && d.IsAlive() {
			x.dict = d
			return
		}
	}
	logger.ComponentLogger("dxf.entity").Debugw("Unresolved extension dictionary",
		logger.FieldHandle, x.handle,
	)
}

func (x *ExtensionDict) export(w tag.Writer) error {
	if err := tag.WriteTag2(w, tag.AppData, AcadXDictionary); err != nil {
		return err
	}
	if err := tag.WriteTag2(w, tag.XDict, x.Handle()); err != nil {
		return err
	}
	return tag.WriteTag2(w, tag.AppData, "}")
}

// copy deep copies the dictionary, the copy and its entries are virtual
// until the owner of the copy is bound
func (x *ExtensionDict) copy(s CopySettings) (*ExtensionDict, error) {
	d, err := x.Dictionary()
	if err != nil {
		return nil, err
	}
	clone, err := Copy(d, s)
	if err != nil {
		return nil, err
	}
	return &ExtensionDict{dict: clone.(*Dictionary)}, nil
}

func (x *ExtensionDict) destroy() {
	if x.hasLiveDictionary() {
		d := x.dict
		if d.doc != nil && d.IsBound() {
			if err := d.doc.Objects().DeleteEntity(d); err != nil {
				Destroy(d)
			}
		} else {
			Destroy(d)
		}
	}
	x.dict = nil
	x.handle = ""
	x.destroyed = true
}
