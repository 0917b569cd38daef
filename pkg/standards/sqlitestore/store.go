// Package sqlitestore implements standards.Source on a SQLite database.
// The layout mirrors the upstream standards workbooks: a wide flange table
// keyed by (standard, pressure class, face, nominal size) and a generic
// dimension table for shells, cones, heads, nozzles and rings.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	_ "modernc.org/sqlite"

	"vesselcad/pkg/standards"
)

// Store is a read-mostly standards source over a SQLite file. Each Store
// owns its *sql.DB; stores over different table versions can coexist.
type Store struct {
	db *sql.DB
}

var _ standards.Source = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS flanges (
	standard       TEXT NOT NULL,
	pressure_class TEXT NOT NULL,
	face           TEXT NOT NULL DEFAULT '',
	dn             REAL NOT NULL,
	D              REAL,
	K              REAL,
	T              REAL,
	C              REAL,
	Y              REAL,
	f              REAL,
	holes          REAL,
	hole_dia       REAL,
	groove_dia     REAL,
	groove_depth   REAL,
	notes          TEXT,
	image          TEXT
);
CREATE INDEX IF NOT EXISTS idx_flanges_key
	ON flanges(standard, pressure_class, face, dn);

CREATE TABLE IF NOT EXISTS dimensions (
	family          TEXT NOT NULL,
	pressure_class  TEXT NOT NULL,
	face            TEXT NOT NULL DEFAULT '',
	dn              REAL NOT NULL,
	diameter        REAL,
	diameter_top    REAL,
	diameter_base   REAL,
	height          REAL,
	length          REAL,
	width           REAL,
	thickness       REAL,
	crown_radius    REAL,
	knuckle_radius  REAL,
	straight_flange REAL,
	"offset"        REAL,
	notes           TEXT,
	image           TEXT
);
CREATE INDEX IF NOT EXISTS idx_dimensions_key
	ON dimensions(family, pressure_class, face, dn);
`

// flangeCols and dimensionCols are the value columns scanned into record
// fields, in SELECT order.
var flangeCols = []string{"D", "K", "T", "C", "Y", "f", "holes", "hole_dia", "groove_dia", "groove_depth"}

var dimensionCols = []string{
	"diameter", "diameter_top", "diameter_base", "height", "length", "width",
	"thickness", "crown_radius", "knuckle_radius", "straight_flange", "offset",
}

// Open opens (creating if necessary) a store at path. ":memory:" yields an
// ephemeral store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Exact implements standards.Source. It searches both tables; a family lives
// in exactly one of them, and rows from either count toward the uniqueness
// invariant.
func (s *Store) Exact(ctx context.Context, spec standards.StandardPartSpec) ([]standards.DimensionRecord, error) {
	var out []standards.DimensionRecord
	for _, tbl := range []tableDef{flangeTable, dimensionTable} {
		rows, err := s.queryTable(ctx, tbl, spec, "=", spec.NominalSize, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Bracket implements standards.Source.
func (s *Store) Bracket(ctx context.Context, spec standards.StandardPartSpec) (*standards.DimensionRecord, *standards.DimensionRecord, error) {
	var below, above *standards.DimensionRecord
	for _, tbl := range []tableDef{flangeTable, dimensionTable} {
		lo, err := s.queryTable(ctx, tbl, spec, "<", spec.NominalSize, -1)
		if err != nil {
			return nil, nil, err
		}
		if len(lo) > 0 && (below == nil || lo[0].Spec.NominalSize > below.Spec.NominalSize) {
			below = &lo[0]
		}
		hi, err := s.queryTable(ctx, tbl, spec, ">", spec.NominalSize, 1)
		if err != nil {
			return nil, nil, err
		}
		if len(hi) > 0 && (above == nil || hi[0].Spec.NominalSize < above.Spec.NominalSize) {
			above = &hi[0]
		}
	}
	return below, above, nil
}

// tableDef describes one physical table.
type tableDef struct {
	name    string
	keyCol  string // family column name
	valCols []string
}

var (
	flangeTable    = tableDef{name: "flanges", keyCol: "standard", valCols: flangeCols}
	dimensionTable = tableDef{name: "dimensions", keyCol: "family", valCols: dimensionCols}
)

// queryTable selects rows whose dn satisfies `dn <op> size`. order -1 picks
// the greatest matching dn, +1 the least, 0 all matches in dn order.
func (s *Store) queryTable(ctx context.Context, tbl tableDef, spec standards.StandardPartSpec, op string, size float64, order int) ([]standards.DimensionRecord, error) {
	cols := "dn"
	for _, c := range tbl.valCols {
		cols += ", \"" + c + "\""
	}
	q := fmt.Sprintf(
		`SELECT %s, notes, image FROM %s WHERE %s = ? AND pressure_class = ? AND face = ? AND dn %s ?`,
		cols, tbl.name, tbl.keyCol, op)
	switch order {
	case -1:
		q += " ORDER BY dn DESC LIMIT 1"
	case 1:
		q += " ORDER BY dn ASC LIMIT 1"
	default:
		q += " ORDER BY dn ASC"
	}

	rows, err := s.db.QueryContext(ctx, q, spec.Family, spec.PressureClass, spec.FaceType, size)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query %s: %w", tbl.name, err)
	}
	defer rows.Close()

	var out []standards.DimensionRecord
	for rows.Next() {
		var dn float64
		vals := make([]sql.NullFloat64, len(tbl.valCols))
		var notes, image sql.NullString

		dest := make([]any, 0, len(tbl.valCols)+3)
		dest = append(dest, &dn)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		dest = append(dest, &notes, &image)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan %s: %w", tbl.name, err)
		}

		rec := standards.DimensionRecord{
			Spec: standards.StandardPartSpec{
				Family:        spec.Family,
				PressureClass: spec.PressureClass,
				FaceType:      spec.FaceType,
				NominalSize:   dn,
			},
			Units:  standards.CanonicalUnit,
			Fields: make(map[string]standards.Value),
			Image:  image.String,
		}
		// NULL columns stay absent: the wide tables carry every column for
		// every part kind, and an inapplicable column is not a null field of
		// the part's record.
		for i, c := range tbl.valCols {
			if vals[i].Valid {
				rec.Fields[c] = standards.Num(vals[i].Float64)
			}
		}
		if notes.Valid && notes.String != "" {
			rec.Fields["notes"] = standards.Text(notes.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// CSV import
// ---------------------------------------------------------------------------

// ImportCSV loads rows from a CSV stream into the named table ("flanges" or
// "dimensions"). The header row names the columns; unknown columns are
// rejected, empty cells become NULL. Returns the number of imported rows.
func (s *Store) ImportCSV(ctx context.Context, table string, r io.Reader) (int, error) {
	var tbl tableDef
	switch table {
	case flangeTable.name:
		tbl = flangeTable
	case dimensionTable.name:
		tbl = dimensionTable
	default:
		return 0, fmt.Errorf("sqlitestore: unknown import table %q", table)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: read csv header: %w", err)
	}
	// true: numeric column, false: text column.
	numeric := map[string]bool{
		tbl.keyCol: false, "pressure_class": false, "face": false,
		"notes": false, "image": false, "dn": true,
	}
	for _, c := range tbl.valCols {
		numeric[c] = true
	}
	for _, c := range header {
		if _, ok := numeric[c]; !ok {
			return 0, fmt.Errorf("sqlitestore: unknown column %q for table %s", c, table)
		}
	}

	placeholders := ""
	quoted := ""
	for i, c := range header {
		if i > 0 {
			placeholders += ", "
			quoted += ", "
		}
		placeholders += "?"
		quoted += "\"" + c + "\""
	}
	stmtText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl.name, quoted, placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, stmtText)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: prepare import: %w", err)
	}
	defer stmt.Close()

	n := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("sqlitestore: read csv row %d: %w", n+1, err)
		}
		args := make([]any, len(row))
		for i, cell := range row {
			switch {
			case cell == "":
				args[i] = nil
			case numeric[header[i]]:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return 0, fmt.Errorf("sqlitestore: csv row %d column %q: %w", n+1, header[i], err)
				}
				args[i] = v
			default:
				args[i] = cell
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("sqlitestore: insert csv row %d: %w", n+1, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlitestore: commit import: %w", err)
	}
	return n, nil
}
