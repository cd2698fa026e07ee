package entitydb

import (
	"io"

	"go.uber.org/zap"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
	"github.com/teranos/dxfcore/xtags"
)

// Document is the scope of an entity database: it binds entities, holds the
// objects container and drives the two loading stages. A Document is not
// safe for concurrent use.
type Document struct {
	version      version.Version
	db           *DB
	objects      *Objects
	loading      bool
	copySettings entity.CopySettings
	loadOpts     entity.LoadOptions
	readOpts     tag.ReadOptions
	legacyRepair bool
	logger       *zap.SugaredLogger
}

// NewDocument creates an empty document of DXF version v with the default
// copy and load settings
func NewDocument(v version.Version, seed string, log *zap.SugaredLogger) (*Document, error) {
	if v == "" {
		v = version.Latest
	}
	db, err := New(seed, log)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.ComponentLogger("dxf.loader")
	}
	return &Document{
		version:      v,
		db:           db,
		objects:      NewObjects(db),
		copySettings: entity.DefaultCopySettings(),
		loadOpts:     entity.DefaultLoadOptions(),
		legacyRepair: true,
		logger:       log,
	}, nil
}

// NewDocumentFromConfig creates an empty document configured by cfg
func NewDocumentFromConfig(cfg *am.Config, log *zap.SugaredLogger) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	doc, err := NewDocument(cfg.WriterVersion(), cfg.GetHandleSeed(), log)
	if err != nil {
		return nil, err
	}
	doc.copySettings = cfg.CopySettings()
	doc.loadOpts = cfg.LoadOptions()
	doc.readOpts = cfg.TagReadOptions()
	doc.legacyRepair = cfg.Reader.LegacyRepair
	return doc, nil
}

// DXFVersion returns the DXF version of the document
func (d *Document) DXFVersion() version.Version {
	return d.version
}

// EntityDB returns the entity database
func (d *Document) EntityDB() entity.Database {
	return d.db
}

// DB returns the entity database
func (d *Document) DB() *DB {
	return d.db
}

// Objects returns the objects container
func (d *Document) Objects() entity.Container {
	return d.objects
}

// ObjectsContainer returns the objects container
func (d *Document) ObjectsContainer() *Objects {
	return d.objects
}

// IsLoading reports the first loading stage
func (d *Document) IsLoading() bool {
	return d.loading
}

// CopySettings returns the settings used by Duplicate
func (d *Document) CopySettings() entity.CopySettings {
	return d.copySettings
}

// NewObject creates a DXF object bound to the document
func (d *Document) NewObject(dxftype string, attribs map[string]interface{}) (entity.Entity, error) {
	return entity.CreateObject(d, dxftype, attribs)
}

// Add binds a new entity to the document, DXF objects are added to the
// objects container
func (d *Document) Add(e entity.Entity) error {
	if err := entity.Bind(e, d); err != nil {
		return err
	}
	if isGraphic(e) {
		return nil
	}
	return d.objects.AddObject(e)
}

// Duplicate copies e with the copy settings of the document and binds the
// copy
func (d *Document) Duplicate(e entity.Entity) (entity.Entity, error) {
	return d.db.Duplicate(e, d.copySettings)
}

// Delete removes e from the document and destroys it
func (d *Document) Delete(e entity.Entity) error {
	if isGraphic(e) {
		d.db.DeleteEntity(e)
		return nil
	}
	return d.objects.DeleteEntity(e)
}

func isGraphic(e entity.Entity) bool {
	g, ok := e.(interface{ IsGraphic() bool })
	return ok && g.IsGraphic()
}

// structural group types of a DXF file, not entities
var fileStructure = map[string]bool{
	"SECTION": true,
	"ENDSEC":  true,
	"TABLE":   true,
	"ENDTAB":  true,
	"CLASS":   true,
	"EOF":     true,
}

// Read loads the entities of an ASCII DXF stream
func (d *Document) Read(r io.Reader) ([]*entity.LoadReport, error) {
	tags, err := tag.ReadASCII(r, d.readOpts)
	if err != nil {
		return nil, err
	}
	return d.LoadTags(tags)
}

// LoadTags splits raw or typed tags into entities at (0, ...) tags, compiles
// and loads them. The structure tags of a DXF file are skipped.
func (d *Document) LoadTags(tags tag.Tags) ([]*entity.LoadReport, error) {
	var blocks []*xtags.Block
	for _, group := range tags.GroupBy(tag.Structure) {
		if group[0].Code != tag.Structure || fileStructure[group.DXFType()] {
			continue
		}
		compiled, err := tag.Compile(group)
		if err != nil {
			d.logger.Warnw("Skipped entity with invalid tags",
				logger.FieldDXFType, group.DXFType(),
				logger.FieldError, err.Error(),
			)
			continue
		}
		block, err := d.Classify(compiled)
		if err != nil {
			d.logger.Warnw("Skipped entity with invalid structure",
				logger.FieldDXFType, group.DXFType(),
				logger.FieldError, err.Error(),
			)
			continue
		}
		blocks = append(blocks, block)
	}
	return d.LoadEntities(blocks)
}

// Classify splits the typed tags of one entity into a block. DXF R12
// documents flatten subclass markers when legacy repair is on.
func (d *Document) Classify(tags tag.Tags) (*xtags.Block, error) {
	if d.legacyRepair && d.version.IsLegacy() {
		return xtags.ClassifyLegacy(tags)
	}
	return xtags.Classify(tags)
}

// LoadEntities loads classified blocks in two stages. The first stage
// loads all entities and stores them in the database, entities with a
// duplicate or without handle get a new handle after the generator is
// reseeded above the highest loaded handle. The second stage resolves
// handles between entities. Entities with structure errors are skipped.
func (d *Document) LoadEntities(blocks []*xtags.Block) ([]*entity.LoadReport, error) {
	d.loading = true
	reports := make([]*entity.LoadReport, 0, len(blocks))
	loaded := make([]entity.Entity, 0, len(blocks))
	var pending []entity.Entity

	for _, block := range blocks {
		e, report, err := entity.Load(block, d, d.loadOpts)
		if err != nil {
			if !errors.IsStructureError(err) {
				d.loading = false
				return reports, err
			}
			d.logger.Warnw("Skipped entity with structure error",
				logger.FieldDXFType, block.DXFType(),
				logger.FieldError, err.Error(),
			)
			continue
		}
		reports = append(reports, report)
		loaded = append(loaded, e)
		if e.Handle() == "" {
			pending = append(pending, e)
			continue
		}
		if err := d.db.Insert(e.Handle(), e); err != nil {
			d.logger.Warnw("Reassigned duplicate handle",
				logger.FieldDXFType, e.DXFType(),
				logger.FieldHandle, e.Handle(),
			)
			pending = append(pending, e)
		}
	}

	if max := d.db.MaxHandle(); max != "" {
		d.db.handles.advancePast(max)
	}
	for _, e := range pending {
		if err := e.UpdateHandle(d.db.NextHandle()); err != nil {
			d.loading = false
			return reports, err
		}
		if err := d.db.Add(e); err != nil {
			d.loading = false
			return reports, err
		}
	}
	for _, e := range loaded {
		if !isGraphic(e) {
			if err := d.objects.AddObject(e); err != nil {
				d.loading = false
				return reports, err
			}
		}
	}
	d.loading = false

	for _, e := range loaded {
		if err := entity.PostLoad(e, d); err != nil {
			return reports, errors.Wrapf(err, "post load %s(#%s)", e.DXFType(), e.Handle())
		}
	}
	d.logger.Debugw("Loaded entities",
		logger.FieldCount, len(loaded),
		logger.FieldVersion, d.version.String(),
	)
	return reports, nil
}

// Export writes all live entities in ascending handle order
func (d *Document) Export(w tag.Writer) error {
	for _, e := range d.db.Values() {
		if err := entity.Export(e, w); err != nil {
			return errors.Wrapf(err, "export %s(#%s)", e.DXFType(), e.Handle())
		}
	}
	return nil
}

// Audit repairs the entity database and all entities
func (d *Document) Audit() *entity.AuditReport {
	report := &entity.AuditReport{}
	d.db.Audit(report)
	d.objects.Purge()
	return report
}
