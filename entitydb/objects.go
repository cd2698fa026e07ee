package entitydb

import (
	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

// Objects is the container of the DXF objects of a document, all
// non-graphic entities like DICTIONARY and XRECORD in insertion order
type Objects struct {
	db       *DB
	entities []entity.Entity
}

// NewObjects creates an empty container which deletes entities from db
func NewObjects(db *DB) *Objects {
	return &Objects{db: db}
}

// HasHandle reports a live object with handle
func (o *Objects) HasHandle(handle string) bool {
	handle = normalizeHandle(handle)
	for _, e := range o.entities {
		if e.IsAlive() && e.Handle() == handle {
			return true
		}
	}
	return false
}

// AddObject appends a bound object, adding an object twice is a no-op
func (o *Objects) AddObject(e entity.Entity) error {
	if !e.IsAlive() {
		return errors.Wrap(errors.ErrDestroyed, "add object")
	}
	if e.Handle() == "" {
		return errors.Wrapf(errors.ErrInvalidHandle, "object %s without handle", e.DXFType())
	}
	for _, existing := range o.entities {
		if existing == e {
			return nil
		}
	}
	o.entities = append(o.entities, e)
	return nil
}

// DeleteEntity removes e from the container and the database and destroys
// it
func (o *Objects) DeleteEntity(e entity.Entity) error {
	for i, existing := range o.entities {
		if existing == e {
			o.entities = append(o.entities[:i], o.entities[i+1:]...)
			break
		}
	}
	o.db.DeleteEntity(e)
	return nil
}

// Entities returns the live objects in insertion order
func (o *Objects) Entities() []entity.Entity {
	live := make([]entity.Entity, 0, len(o.entities))
	for _, e := range o.entities {
		if e.IsAlive() {
			live = append(live, e)
		}
	}
	return live
}

// Len returns the count of live objects
func (o *Objects) Len() int {
	return len(o.Entities())
}

// Purge removes destroyed objects
func (o *Objects) Purge() {
	o.entities = o.Entities()
}

// Export writes all live objects
func (o *Objects) Export(w tag.Writer) error {
	for _, e := range o.Entities() {
		if err := entity.Export(e, w); err != nil {
			return err
		}
	}
	return nil
}
