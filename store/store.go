// Package store persists entity databases as named snapshots in SQLite.
//
// A snapshot holds the tag stream of every live entity, CBOR encoded, and
// the handle high-water mark of the generator. Restore loads the entities
// into a new document whose generator continues behind that mark, so
// handles created after a restore never collide with stored ones.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/db"
	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/entitydb"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
	"github.com/teranos/dxfcore/xtags"
)

// FormatVersion is written to every snapshot
const FormatVersion = "1.0.0"

// snapshots of all 1.x formats can be read
const supportedFormats = "^1.0"

// SnapshotInfo describes a stored snapshot
type SnapshotInfo struct {
	Name          string
	FormatVersion string
	DXFVersion    version.Version
	// HandleSeed is the next handle of the generator at save time
	HandleSeed  string
	EntityCount int
	CreatedAt   time.Time
}

// StoredEntity is the tag stream of one entity
type StoredEntity struct {
	Handle  string
	DXFType string
	Tags    tag.Tags
}

// Snapshot is a loaded snapshot
type Snapshot struct {
	Info     SnapshotInfo
	Entities []StoredEntity
}

// SnapshotStore reads and writes snapshots. It is safe for concurrent use,
// documents passed to it are not.
type SnapshotStore struct {
	db      *sql.DB
	codec   *codec
	formats *semver.Constraints
	logger  *zap.SugaredLogger
}

// NewSnapshotStore creates a store on a migrated database. If log is nil
// the "dxf.store" component logger is used.
func NewSnapshotStore(sqlDB *sql.DB, log *zap.SugaredLogger) (*SnapshotStore, error) {
	if sqlDB == nil {
		return nil, errors.New("snapshot store requires a database")
	}
	if log == nil {
		log = logger.ComponentLogger("dxf.store")
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	formats, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot format constraint")
	}
	return &SnapshotStore{db: sqlDB, codec: c, formats: formats, logger: log}, nil
}

// Open opens the configured snapshot database, applies the migrations and
// returns a store owning the connection
func Open(cfg *am.Config, log *zap.SugaredLogger) (*SnapshotStore, error) {
	sqlDB, err := db.OpenWithMigrations(cfg.GetStorePath(), log)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot store")
	}
	s, err := NewSnapshotStore(sqlDB, log)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// encodeEntities exports the live entities of doc in handle order
func (s *SnapshotStore) encodeEntities(doc *entitydb.Document) ([]StoredEntity, [][]byte, error) {
	opts := tag.WriterOptions{Version: doc.DXFVersion(), WithHandles: true}
	var (
		stored []StoredEntity
		blobs  [][]byte
	)
	for _, e := range doc.DB().Values() {
		c := tag.NewCollector(opts)
		if err := entity.Export(e, c); err != nil {
			return nil, nil, errors.Wrapf(err, "export %s(#%s)", e.DXFType(), e.Handle())
		}
		// types the document version can not store
		if len(c.Tags()) == 0 {
			continue
		}
		data, err := s.codec.encode(c.Tags())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "encode %s(#%s)", e.DXFType(), e.Handle())
		}
		stored = append(stored, StoredEntity{Handle: e.Handle(), DXFType: e.DXFType(), Tags: c.Tags()})
		blobs = append(blobs, data)
	}
	return stored, blobs, nil
}

// Save stores the live entities of doc as snapshot name, an existing
// snapshot of that name is replaced
func (s *SnapshotStore) Save(ctx context.Context, name string, doc *entitydb.Document) (*SnapshotInfo, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidValue, "empty snapshot name")
	}
	stored, blobs, err := s.encodeEntities(doc)
	if err != nil {
		return nil, err
	}
	info := &SnapshotInfo{
		Name:          name,
		FormatVersion: FormatVersion,
		DXFVersion:    doc.DXFVersion(),
		HandleSeed:    doc.DB().Handles().Current(),
		EntityCount:   len(stored),
		CreatedAt:     time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.wrap(err, "begin save of %s", name)
	}
	if err := s.replace(ctx, tx, info, stored, blobs); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, s.wrap(err, "commit snapshot %s", name)
	}

	s.log(ctx, name).Infow("Saved snapshot",
		logger.FieldCount, info.EntityCount,
		logger.FieldVersion, info.DXFVersion.String(),
		"handle_seed", info.HandleSeed,
	)
	return info, nil
}

func (s *SnapshotStore) replace(ctx context.Context, tx *sql.Tx, info *SnapshotInfo, stored []StoredEntity, blobs [][]byte) error {
	// explicit, foreign_keys is a per connection pragma
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_entities WHERE snapshot = ?", info.Name); err != nil {
		return s.wrap(err, "clear entities of %s", info.Name)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", info.Name); err != nil {
		return s.wrap(err, "clear snapshot %s", info.Name)
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (name, format_version, dxf_version, handle_seed, entity_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		info.Name, info.FormatVersion, string(info.DXFVersion), info.HandleSeed, info.EntityCount, info.CreatedAt,
	)
	if err != nil {
		return s.wrap(err, "insert snapshot %s", info.Name)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO snapshot_entities (snapshot, handle, dxftype, position, tags) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return s.wrap(err, "prepare entity insert")
	}
	defer stmt.Close()
	for i, e := range stored {
		if _, err := stmt.ExecContext(ctx, info.Name, e.Handle, e.DXFType, i, blobs[i]); err != nil {
			return s.wrap(err, "insert %s(#%s)", e.DXFType, e.Handle)
		}
	}
	return nil
}

// Info returns the description of snapshot name
func (s *SnapshotStore) Info(ctx context.Context, name string) (*SnapshotInfo, error) {
	info := &SnapshotInfo{Name: name}
	var dxfVersion string
	err := s.db.QueryRowContext(ctx,
		"SELECT format_version, dxf_version, handle_seed, entity_count, created_at FROM snapshots WHERE name = ?",
		name,
	).Scan(&info.FormatVersion, &dxfVersion, &info.HandleSeed, &info.EntityCount, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("snapshot %q", name)
	}
	if err != nil {
		return nil, s.wrap(err, "query snapshot %s", name)
	}
	info.DXFVersion = version.Version(dxfVersion)
	return info, nil
}

// checkFormat refuses snapshots written by an incompatible format
func (s *SnapshotStore) checkFormat(info *SnapshotInfo) error {
	v, err := semver.NewVersion(info.FormatVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrVersion, "snapshot %q: invalid format version %q", info.Name, info.FormatVersion)
	}
	if !s.formats.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrVersion, "snapshot %q: format %s", info.Name, info.FormatVersion),
			"this build reads snapshot formats %s", supportedFormats,
		)
	}
	return nil
}

// Load reads snapshot name with its entities in handle order
func (s *SnapshotStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	info, err := s.Info(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.checkFormat(info); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT handle, dxftype, tags FROM snapshot_entities WHERE snapshot = ? ORDER BY position",
		name,
	)
	if err != nil {
		return nil, s.wrap(err, "query entities of %s", name)
	}
	defer rows.Close()

	snapshot := &Snapshot{Info: *info}
	for rows.Next() {
		var (
			e    StoredEntity
			data []byte
		)
		if err := rows.Scan(&e.Handle, &e.DXFType, &data); err != nil {
			return nil, s.wrap(err, "scan entity of %s", name)
		}
		if e.Tags, err = s.codec.decode(data); err != nil {
			return nil, errors.Wrapf(err, "%s(#%s) in snapshot %s", e.DXFType, e.Handle, name)
		}
		snapshot.Entities = append(snapshot.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "read entities of %s", name)
	}
	if len(snapshot.Entities) != info.EntityCount {
		return nil, errors.Wrapf(errors.ErrStructure, "snapshot %q: %d of %d entities stored",
			name, len(snapshot.Entities), info.EntityCount)
	}
	return snapshot, nil
}

// Restore loads snapshot name into a new document. The generator of the
// document continues at the stored high-water mark.
func (s *SnapshotStore) Restore(ctx context.Context, name string, log *zap.SugaredLogger) (*entitydb.Document, error) {
	snapshot, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	doc, err := entitydb.NewDocument(snapshot.Info.DXFVersion, snapshot.Info.HandleSeed, log)
	if err != nil {
		return nil, errors.Wrapf(err, "restore %s", name)
	}
	blocks := make([]*xtags.Block, 0, len(snapshot.Entities))
	for _, e := range snapshot.Entities {
		block, err := doc.Classify(e.Tags)
		if err != nil {
			return nil, errors.Wrapf(err, "restore %s(#%s)", e.DXFType, e.Handle)
		}
		blocks = append(blocks, block)
	}
	if _, err := doc.LoadEntities(blocks); err != nil {
		return nil, errors.Wrapf(err, "restore %s", name)
	}
	s.log(ctx, name).Infow("Restored snapshot",
		logger.FieldCount, len(blocks),
		"next_handle", doc.DB().Handles().Current(),
	)
	return doc, nil
}

// List returns all snapshots ordered by name
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, format_version, dxf_version, handle_seed, entity_count, created_at FROM snapshots ORDER BY name")
	if err != nil {
		return nil, s.wrap(err, "list snapshots")
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			info       SnapshotInfo
			dxfVersion string
		)
		if err := rows.Scan(&info.Name, &info.FormatVersion, &dxfVersion, &info.HandleSeed, &info.EntityCount, &info.CreatedAt); err != nil {
			return nil, s.wrap(err, "scan snapshot")
		}
		info.DXFVersion = version.Version(dxfVersion)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "list snapshots")
	}
	return infos, nil
}

// Delete removes snapshot name
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap(err, "begin delete of %s", name)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_entities WHERE snapshot = ?", name); err != nil {
		tx.Rollback()
		return s.wrap(err, "delete entities of %s", name)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		tx.Rollback()
		return s.wrap(err, "delete snapshot %s", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return errors.NewNotFoundError("snapshot %q", name)
	}
	if err := tx.Commit(); err != nil {
		return s.wrap(err, "commit delete of %s", name)
	}
	s.log(ctx, name).Infow("Deleted snapshot")
	return nil
}

// log returns the store logger with the snapshot name and the fields of ctx
func (s *SnapshotStore) log(ctx context.Context, name string) *zap.SugaredLogger {
	return logger.FromContext(logger.WithSnapshot(ctx, name), s.logger)
}

// wrap adds context and maps driver errors of a closed database to
// db.ErrDatabaseClosed
func (s *SnapshotStore) wrap(err error, format string, args ...interface{}) error {
	if db.IsDatabaseClosed(err) && !errors.Is(err, db.ErrDatabaseClosed) {
		err = errors.WithSecondaryError(db.ErrDatabaseClosed, err)
	}
	return errors.Wrapf(err, format, args...)
}
