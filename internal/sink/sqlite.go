package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/martech-cli/internal/table"
)

// SQLiteSink writes the fact table to a SQLite database, replacing the
// target table on every write.
type SQLiteSink struct {
	db        *sql.DB
	tableName string
}

// NewSQLiteSink opens (or creates) a SQLite database at the given path.
func NewSQLiteSink(dsn, tableName string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sink: open sqlite")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sink: set journal mode")
	}
	return &SQLiteSink{db: db, tableName: tableName}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Write replaces the target table with the given snapshot. Zero-row tables
// still produce the table with its full schema.
func (s *SQLiteSink) Write(ctx context.Context, t *table.Table) error {
	cols := t.Cols()
	if len(cols) == 0 {
		return eris.New("sink: table has no columns")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sink: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, s.tableName)); err != nil {
		return eris.Wrap(err, "sink: drop table")
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(s.tableName, cols)); err != nil {
		return eris.Wrap(err, "sink: create table")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		s.tableName, quoteJoin(cols), placeholders)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return eris.Wrap(err, "sink: prepare insert")
	}
	defer stmt.Close()

	for i := 0; i < t.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx, t.Row(i)...); err != nil {
			return eris.Wrapf(err, "sink: insert row %d", i)
		}
	}

	return eris.Wrap(tx.Commit(), "sink: commit")
}

func createTableSQL(name string, cols []string) string {
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%q %s", col, sqliteType(col))
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s)`, name, strings.Join(defs, ", "))
}

func sqliteType(col string) string {
	switch {
	case intCols[col]:
		return "INTEGER"
	case floatCols[col]:
		return "REAL"
	case dateCols[col]:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func quoteJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
