package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS _runs (
	run_id     TEXT PRIMARY KEY,
	book_name  TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS _units (
	run_id     TEXT NOT NULL REFERENCES _runs(run_id),
	unit_name  TEXT NOT NULL,
	unit_index INTEGER NOT NULL,
	status     TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	rejected   INTEGER NOT NULL,
	stage      TEXT NOT NULL,
	reason     TEXT NOT NULL,
	table_name TEXT NOT NULL,
	PRIMARY KEY (run_id, unit_name)
);
CREATE TABLE IF NOT EXISTS _fields (
	run_id        TEXT NOT NULL REFERENCES _runs(run_id),
	unit_name     TEXT NOT NULL,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	original_name TEXT NOT NULL,
	field_type    TEXT NOT NULL,
	optional      INTEGER NOT NULL,
	description   TEXT NOT NULL,
	PRIMARY KEY (run_id, unit_name, position)
);
`

// OpenSQLite opens (or creates) the SQLite database at path and ensures the
// bookkeeping tables exist.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// WriteSQLite opens the database at path and stores r with SaveRun.
func WriteSQLite(ctx context.Context, path string, r *models.OverallResult) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return SaveRun(ctx, db, r)
}

// SaveRun stores r in one transaction: a _runs row, one _units row per unit,
// the schema of every unit in _fields, and the records of each successful
// unit in a table of its own.
func SaveRun(ctx context.Context, db *sql.DB, r *models.OverallResult) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO _runs (run_id, book_name, created_at) VALUES (?, ?, ?)`,
		r.RunID, r.BookName, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	tables := unitTables(r)
	for _, s := range r.Summary() {
		status := "failed"
		if s.OK {
			status = "ok"
		}
		table := tables[s.UnitName]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO _units (run_id, unit_name, unit_index, status, row_count, rejected, stage, reason, table_name)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, s.UnitName, s.Index, status, s.Rows, s.Rejected, s.Stage, s.Reason, table,
		); err != nil {
			return fmt.Errorf("insert unit %q: %w", s.UnitName, err)
		}

		if schema := r.Schemas[s.UnitName]; schema != nil {
			for i, fd := range schema.Fields {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO _fields (run_id, unit_name, position, name, original_name, field_type, optional, description)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					r.RunID, s.UnitName, i+1, fd.Name, fd.OriginalName, string(fd.Type), fd.Optional, fd.Description,
				); err != nil {
					return fmt.Errorf("insert field %q.%q: %w", s.UnitName, fd.Name, err)
				}
			}
		}
	}

	for _, u := range r.OrderedUnits() {
		if err := saveUnitRecords(ctx, tx, tables[u.UnitName], u); err != nil {
			return fmt.Errorf("store unit %q: %w", u.UnitName, err)
		}
	}

	return tx.Commit()
}

func saveUnitRecords(ctx context.Context, tx *sql.Tx, table string, u *models.UnitResult) error {
	cols := []string{`"_row" INTEGER NOT NULL`}
	names := u.Schema.FieldNames()
	quoted := []string{`"_row"`}
	for _, fd := range u.Schema.Fields {
		cols = append(cols, fmt.Sprintf("%s %s", quoteIdent(fd.Name), sqliteType(fd.Type)))
		quoted = append(quoted, quoteIdent(fd.Name))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range u.Records {
		args := append([]any{i + 1}, rec.Values(names)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return nil
}

// UnitTableName is the table holding a unit's records for one run.
func UnitTableName(runID, unit string) string {
	short := strings.ReplaceAll(runID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return models.NormalizeFieldName(unit) + "__" + short
}

// unitTables assigns every successful unit a distinct table name. Units whose
// names normalize alike get a numeric suffix in source order.
func unitTables(r *models.OverallResult) map[string]string {
	out := make(map[string]string, len(r.Units))
	used := make(map[string]bool, len(r.Units))
	for _, u := range r.OrderedUnits() {
		base := UnitTableName(r.RunID, u.UnitName)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		out[u.UnitName] = name
	}
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func sqliteType(t models.FieldType) string {
	switch t {
	case models.TypeInteger, models.TypeBoolean:
		return "INTEGER"
	case models.TypeFloat:
		return "REAL"
	}
	return "TEXT"
}
