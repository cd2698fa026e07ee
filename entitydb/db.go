// Package entitydb maps handles to entities and holds the documents which
// bind entities: the entity database, the handle generator and the objects
// container.
package entitydb

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
)

// DB is the entity database of a document. It is not safe for concurrent
// use.
type DB struct {
	entities map[string]entity.Entity
	handles  *Generator
	logger   *zap.SugaredLogger
}

// Item is a handle and the entity stored under the handle
type Item struct {
	Handle string
	Entity entity.Entity
}

// New creates an empty entity database, seed is the first handle to issue
func New(seed string, log *zap.SugaredLogger) (*DB, error) {
	if log == nil {
		log = logger.ComponentLogger("dxf.entitydb")
	}
	gen, err := NewGenerator(seed)
	if err != nil {
		return nil, errors.Wrap(err, "handle seed")
	}
	return &DB{
		entities: make(map[string]entity.Entity),
		handles:  gen,
		logger:   log,
	}, nil
}

// Handles returns the handle generator
func (db *DB) Handles() *Generator {
	return db.handles
}

func normalizeHandle(handle string) string {
	return strings.ToUpper(strings.TrimSpace(handle))
}

// Insert stores e under handle. A handle bound to another live entity is
// an errors.ErrDuplicateHandle, storing the same entity again is a no-op.
func (db *DB) Insert(handle string, e entity.Entity) error {
	handle = normalizeHandle(handle)
	if _, err := parseHandle(handle); err != nil {
		return err
	}
	if !e.IsAlive() {
		return errors.Wrapf(errors.ErrDestroyed, "insert #%s", handle)
	}
	if existing, ok := db.entities[handle]; ok && existing.IsAlive() && existing != e {
		return errors.NewDuplicateHandleError(handle)
	}
	db.entities[handle] = e
	return nil
}

// Lookup returns the live entity stored under handle
func (db *DB) Lookup(handle string) (entity.Entity, error) {
	e, ok := db.entities[normalizeHandle(handle)]
	if !ok || !e.IsAlive() {
		return nil, errors.NewNotFoundError("entity #%s", handle)
	}
	return e, nil
}

// Has reports a live entity stored under handle
func (db *DB) Has(handle string) bool {
	e, ok := db.entities[normalizeHandle(handle)]
	return ok && e.IsAlive()
}

// Remove unbinds handle, the entity is not destroyed
func (db *DB) Remove(handle string) error {
	handle = normalizeHandle(handle)
	if _, ok := db.entities[handle]; !ok {
		return errors.NewNotFoundError("entity #%s", handle)
	}
	delete(db.entities, handle)
	return nil
}

// NextHandle returns the next unused handle of the generator
func (db *DB) NextHandle() string {
	for {
		handle := db.handles.Next()
		if _, used := db.entities[handle]; !used {
			return handle
		}
	}
}

// Add stores e under its own handle, entities without handle get a new
// one. Adding the same entity again keeps a single entry.
func (db *DB) Add(e entity.Entity) error {
	if !e.IsAlive() {
		return errors.Wrap(errors.ErrDestroyed, "add entity")
	}
	handle := e.Handle()
	if handle == "" {
		handle = db.NextHandle()
		if err := e.UpdateHandle(handle); err != nil {
			return err
		}
	}
	return db.Insert(handle, e)
}

// Discard removes e from the database and clears its handle, e is not
// destroyed
func (db *DB) Discard(e entity.Entity) {
	if !e.IsAlive() {
		return
	}
	handle := normalizeHandle(e.Handle())
	if stored, ok := db.entities[handle]; ok && stored == e {
		delete(db.entities, handle)
	}
	e.DXF().Discard("handle")
}

// DeleteEntity removes e from the database and destroys it
func (db *DB) DeleteEntity(e entity.Entity) {
	if !e.IsAlive() {
		return
	}
	handle := normalizeHandle(e.Handle())
	if stored, ok := db.entities[handle]; ok && stored == e {
		delete(db.entities, handle)
	}
	entity.Destroy(e)
}

// ResetHandle moves e to handle, returns false if handle is already used
func (db *DB) ResetHandle(e entity.Entity, handle string) (bool, error) {
	handle = normalizeHandle(handle)
	if _, err := parseHandle(handle); err != nil {
		return false, err
	}
	if db.Has(handle) {
		return false, nil
	}
	db.Discard(e)
	if err := e.UpdateHandle(handle); err != nil {
		return false, err
	}
	return true, db.Add(e)
}

// Duplicate copies e with settings, stores the copy under a new handle and
// binds it to the document of e. DXF objects are added to the objects
// container of the document.
func (db *DB) Duplicate(e entity.Entity, s entity.CopySettings) (entity.Entity, error) {
	owner, ok := e.(interface{ Doc() entity.Doc })
	if !ok || owner.Doc() == nil {
		return nil, errors.Newf("duplicate %s: entity is not bound to a document", e.DXFType())
	}
	doc := owner.Doc()
	clone, err := entity.Copy(e, s)
	if err != nil {
		return nil, err
	}
	if err := clone.UpdateHandle(db.NextHandle()); err != nil {
		return nil, err
	}
	if err := entity.Bind(clone, doc); err != nil {
		return nil, err
	}
	if g, ok := clone.(interface{ IsGraphic() bool }); ok && g.IsGraphic() {
		return clone, nil
	}
	if err := doc.Objects().AddObject(clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// Purge removes destroyed entities
func (db *DB) Purge() int {
	var count int
	for handle, e := range db.entities {
		if !e.IsAlive() {
			delete(db.entities, handle)
			count++
		}
	}
	if count > 0 {
		db.logger.Debugw("Purged destroyed entities", logger.FieldCount, count)
	}
	return count
}

// Len returns the count of stored entries including destroyed entities,
// call Purge first for an exact count
func (db *DB) Len() int {
	return len(db.entities)
}

// Keys returns the handles of live entities in ascending order
func (db *DB) Keys() []string {
	keys := make([]string, 0, len(db.entities))
	for handle, e := range db.entities {
		if e.IsAlive() {
			keys = append(keys, handle)
		}
	}
	sortHandles(keys)
	return keys
}

// Values returns the live entities in ascending handle order
func (db *DB) Values() []entity.Entity {
	keys := db.Keys()
	values := make([]entity.Entity, len(keys))
	for i, handle := range keys {
		values[i] = db.entities[handle]
	}
	return values
}

// Items returns the live entities and their handles in ascending handle
// order
func (db *DB) Items() []Item {
	keys := db.Keys()
	items := make([]Item, len(keys))
	for i, handle := range keys {
		items[i] = Item{Handle: handle, Entity: db.entities[handle]}
	}
	return items
}

// DXFTypesInUse returns the sorted DXF types of live entities
func (db *DB) DXFTypesInUse() []string {
	set := make(map[string]bool)
	for _, e := range db.entities {
		if e.IsAlive() {
			set[e.DXFType()] = true
		}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// MaxHandle returns the highest handle in use, "" for an empty database
func (db *DB) MaxHandle() string {
	var max uint64
	for handle := range db.entities {
		if value, err := parseHandle(handle); err == nil && value > max {
			max = value
		}
	}
	if max == 0 {
		return ""
	}
	return formatHandle(max)
}

// Audit repairs the database: entries with invalid handles are removed,
// entries stored under a handle other than the entity handle are moved,
// destroyed entities are purged. Afterwards all live entities are audited.
func (db *DB) Audit(report *entity.AuditReport) {
	trash := db.Trashcan()
	for handle, e := range db.entities {
		if !e.IsAlive() {
			continue
		}
		if _, err := parseHandle(handle); err != nil {
			report.Fixed(entity.AuditInvalidEntityHandle, e, "removed entity with invalid handle #%s from database", handle)
			trash.Add(handle)
			continue
		}
		if e.Handle() == handle {
			continue
		}
		// stored under a stale key
		delete(db.entities, handle)
		own := normalizeHandle(e.Handle())
		if _, err := parseHandle(own); err != nil {
			report.Fixed(entity.AuditInvalidEntityHandle, e, "removed entity with invalid handle #%s from database", own)
			entity.Destroy(e)
			continue
		}
		if err := db.Insert(own, e); err != nil {
			report.Fixed(entity.AuditInvalidEntityHandle, e, "removed entity with duplicate handle #%s from database", own)
			entity.Destroy(e)
			continue
		}
		report.Fixed(entity.AuditInvalidEntityHandle, e, "moved entity from #%s to its own handle #%s", handle, own)
	}
	trash.Clear()
	db.Purge()

	for _, e := range db.Values() {
		entity.Audit(e, db, report)
	}
}

// Trashcan collects handles of entities to delete, safe to use while
// iterating the database
type Trashcan struct {
	db      *DB
	handles []string
}

// Trashcan returns an empty trashcan of db
func (db *DB) Trashcan() *Trashcan {
	return &Trashcan{db: db}
}

// Add marks handle for deletion
func (t *Trashcan) Add(handle string) {
	t.handles = append(t.handles, handle)
}

// Len returns the count of marked handles
func (t *Trashcan) Len() int {
	return len(t.handles)
}

// Clear destroys the marked entities and removes their handles
func (t *Trashcan) Clear() {
	for _, handle := range t.handles {
		e, ok := t.db.entities[handle]
		if !ok {
			continue
		}
		delete(t.db.entities, handle)
		if e.IsAlive() {
			entity.Destroy(e)
		}
	}
	t.handles = nil
}

// sortHandles sorts hex handles by value, invalid handles last
func sortHandles(handles []string) {
	sort.Slice(handles, func(i, j int) bool {
		a, errA := parseHandle(handles[i])
		b, errB := parseHandle(handles[j])
		switch {
		case errA != nil && errB != nil:
			return handles[i] < handles[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a < b
	})
}
