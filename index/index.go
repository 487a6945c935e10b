// Package index copies a loaded LDtk project into a SQLite database so
// tools can query levels, layers, entities and field values with SQL.
package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/milk9111/ldtk/schema"
)

const createTables = `
create table if not exists level (
	uid integer primary key,
	iid text not null,
	identifier text not null,
	world_iid text,
	world_x integer not null,
	world_y integer not null,
	px_wid integer not null,
	px_hei integer not null,
	external_rel_path text
);
create table if not exists layer (
	level_uid integer not null,
	iid text not null,
	identifier text not null,
	type text not null,
	c_wid integer not null,
	c_hei integer not null,
	grid_size integer not null
);
create table if not exists entity (
	level_uid integer not null,
	layer_iid text not null,
	iid text not null,
	identifier text not null,
	px_x integer not null,
	px_y integer not null,
	width integer not null,
	height integer not null
);
create table if not exists field (
	owner_iid text not null,
	identifier text not null,
	type text not null,
	value_json text not null
);
create index if not exists idx_entity_identifier on entity(identifier);
create index if not exists idx_field_owner on field(owner_iid);
`

// DB is a SQLite database holding one imported project.
type DB struct {
	*sqlx.DB
}

// Open opens or creates the SQLite database at path and makes sure its
// tables exist.
func Open(path string) (*DB, error) {
	d, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(createTables); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("index: create tables in %s: %w", path, err)
	}
	return &DB{DB: d}, nil
}

type LevelRow struct {
	UID             int            `db:"uid"`
	Iid             string         `db:"iid"`
	Identifier      string         `db:"identifier"`
	WorldIid        sql.NullString `db:"world_iid"`
	WorldX          int            `db:"world_x"`
	WorldY          int            `db:"world_y"`
	PxWid           int            `db:"px_wid"`
	PxHei           int            `db:"px_hei"`
	ExternalRelPath sql.NullString `db:"external_rel_path"`
}

type LayerRow struct {
	LevelUID   int    `db:"level_uid"`
	Iid        string `db:"iid"`
	Identifier string `db:"identifier"`
	Type       string `db:"type"`
	CWid       int    `db:"c_wid"`
	CHei       int    `db:"c_hei"`
	GridSize   int    `db:"grid_size"`
}

type EntityRow struct {
	LevelUID   int    `db:"level_uid"`
	LayerIid   string `db:"layer_iid"`
	Iid        string `db:"iid"`
	Identifier string `db:"identifier"`
	PxX        int    `db:"px_x"`
	PxY        int    `db:"px_y"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
}

// FieldRow is one field instance. OwnerIid is the iid of the level or
// entity the field belongs to and ValueJSON is its __value as LDtk writes it.
type FieldRow struct {
	OwnerIid   string `db:"owner_iid"`
	Identifier string `db:"identifier"`
	Type       string `db:"type"`
	ValueJSON  string `db:"value_json"`
}

// Import replaces the contents of the database with p. Every level of p,
// including the levels of its worlds, must be fully loaded; stubs are
// rejected because their layers are unknown. Level uids are the level
// table's key, so a project that reuses a uid is rejected as well. A
// rejected project leaves the database untouched.
func (db *DB) Import(ctx context.Context, p *schema.Project) error {
	rows, err := collect(p)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"level", "layer", "entity", "field"} {
		if _, err := tx.ExecContext(ctx, "delete from "+table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, "level", `insert into level (uid, iid, identifier, world_iid, world_x, world_y, px_wid, px_hei, external_rel_path)
		values (:uid, :iid, :identifier, :world_iid, :world_x, :world_y, :px_wid, :px_hei, :external_rel_path)`, rows.levels); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "layer", `insert into layer (level_uid, iid, identifier, type, c_wid, c_hei, grid_size)
		values (:level_uid, :iid, :identifier, :type, :c_wid, :c_hei, :grid_size)`, rows.layers); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "entity", `insert into entity (level_uid, layer_iid, iid, identifier, px_x, px_y, width, height)
		values (:level_uid, :layer_iid, :iid, :identifier, :px_x, :px_y, :width, :height)`, rows.entities); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, "field", `insert into field (owner_iid, identifier, type, value_json)
		values (:owner_iid, :identifier, :type, :value_json)`, rows.fields); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}

func insertAll[T any](ctx context.Context, tx *sqlx.Tx, table, query string, rows []T) error {
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("index: prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("index: insert %s: %w", table, err)
		}
	}
	return nil
}

type projectRows struct {
	levels   []LevelRow
	layers   []LayerRow
	entities []EntityRow
	fields   []FieldRow
}

func collect(p *schema.Project) (*projectRows, error) {
	rows := &projectRows{}
	seen := make(map[int]string)
	add := func(worldIid string, lvl *schema.Level) error {
		if lvl.IsStub() {
			return fmt.Errorf("index: level %q (uid %d) is an unresolved stub", lvl.Identifier, lvl.UID)
		}
		if other, ok := seen[lvl.UID]; ok {
			return fmt.Errorf("index: level %q reuses uid %d of level %q", lvl.Identifier, lvl.UID, other)
		}
		seen[lvl.UID] = lvl.Identifier
		row := LevelRow{
			UID:        lvl.UID,
			Iid:        lvl.Iid,
			Identifier: lvl.Identifier,
			WorldIid:   sql.NullString{String: worldIid, Valid: worldIid != ""},
			WorldX:     lvl.WorldX,
			WorldY:     lvl.WorldY,
			PxWid:      lvl.PxWid,
			PxHei:      lvl.PxHei,
		}
		if lvl.ExternalRelPath != nil {
			row.ExternalRelPath = sql.NullString{String: *lvl.ExternalRelPath, Valid: true}
		}
		rows.levels = append(rows.levels, row)
		if err := rows.addFields(lvl.Iid, lvl.FieldInstances); err != nil {
			return err
		}

		for i := range lvl.LayerInstances {
			layer := &lvl.LayerInstances[i]
			rows.layers = append(rows.layers, LayerRow{
				LevelUID:   lvl.UID,
				Iid:        layer.Iid,
				Identifier: layer.Identifier,
				Type:       string(layer.Type),
				CWid:       layer.CWid,
				CHei:       layer.CHei,
				GridSize:   layer.GridSize,
			})
			for j := range layer.EntityInstances {
				e := &layer.EntityInstances[j]
				rows.entities = append(rows.entities, EntityRow{
					LevelUID:   lvl.UID,
					LayerIid:   layer.Iid,
					Iid:        e.Iid,
					Identifier: e.Identifier,
					PxX:        e.Px[0],
					PxY:        e.Px[1],
					Width:      e.Width,
					Height:     e.Height,
				})
				if err := rows.addFields(e.Iid, e.FieldInstances); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i := range p.Levels {
		if err := add("", &p.Levels[i]); err != nil {
			return nil, err
		}
	}
	for _, w := range p.Worlds {
		for i := range w.Levels {
			if err := add(w.Iid, &w.Levels[i]); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

func (r *projectRows) addFields(owner string, fields []schema.FieldInstance) error {
	for _, f := range fields {
		value, err := schema.MarshalFieldValue(f.Value)
		if err != nil {
			return fmt.Errorf("index: field %q of %s: %w", f.Identifier, owner, err)
		}
		r.fields = append(r.fields, FieldRow{
			OwnerIid:   owner,
			Identifier: f.Identifier,
			Type:       f.Type,
			ValueJSON:  string(value),
		})
	}
	return nil
}

// Levels returns every imported level ordered by uid.
func (db *DB) Levels(ctx context.Context) ([]LevelRow, error) {
	levels := []LevelRow{}
	err := db.SelectContext(ctx, &levels, `
		select
			uid, iid, identifier, world_iid, world_x, world_y, px_wid, px_hei, external_rel_path
		from
			level
		order by
			uid
	`)
	if err != nil {
		return nil, fmt.Errorf("index: select levels: %w", err)
	}
	return levels, nil
}

// Layers returns the layers of the level with the given uid, top layer first.
func (db *DB) Layers(ctx context.Context, levelUID int) ([]LayerRow, error) {
	layers := []LayerRow{}
	err := db.SelectContext(ctx, &layers, `
		select
			level_uid, iid, identifier, type, c_wid, c_hei, grid_size
		from
			layer
		where
			level_uid = ?
		order by
			rowid
	`, levelUID)
	if err != nil {
		return nil, fmt.Errorf("index: select layers: %w", err)
	}
	return layers, nil
}

// EntitiesByIdentifier returns every entity instance of the given entity
// definition, in import order.
func (db *DB) EntitiesByIdentifier(ctx context.Context, identifier string) ([]EntityRow, error) {
	entities := []EntityRow{}
	err := db.SelectContext(ctx, &entities, `
		select
			level_uid, layer_iid, iid, identifier, px_x, px_y, width, height
		from
			entity
		where
			identifier = ?
		order by
			rowid
	`, identifier)
	if err != nil {
		return nil, fmt.Errorf("index: select entities: %w", err)
	}
	return entities, nil
}

// Fields returns the field instances owned by the level or entity with the
// given iid.
func (db *DB) Fields(ctx context.Context, ownerIid string) ([]FieldRow, error) {
	fields := []FieldRow{}
	err := db.SelectContext(ctx, &fields, `
		select
			owner_iid, identifier, type, value_json
		from
			field
		where
			owner_iid = ?
		order by
			rowid
	`, ownerIid)
	if err != nil {
		return nil, fmt.Errorf("index: select fields: %w", err)
	}
	return fields, nil
}

// Counts returns the number of rows in each table.
func (db *DB) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"level", "layer", "entity", "field"} {
		var n int
		if err := db.GetContext(ctx, &n, "select count(*) from "+table); err != nil {
			return nil, fmt.Errorf("index: count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
