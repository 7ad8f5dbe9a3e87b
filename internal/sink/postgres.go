package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/martech-cli/internal/table"
)

// Pool is the subset of pgxpool.Pool the Postgres sink uses. pgxmock
// satisfies it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresSink writes the fact table to Postgres, replacing the target table
// on every write. Rows are loaded with the COPY protocol.
type PostgresSink struct {
	pool      Pool
	tableName string
}

// NewPostgres connects to Postgres and returns a sink targeting tableName.
func NewPostgres(ctx context.Context, connString, tableName string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "sink: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "sink: ping postgres")
	}
	return &PostgresSink{pool: pool, tableName: tableName}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool, tableName string) *PostgresSink {
	return &PostgresSink{pool: pool, tableName: tableName}
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

// Write replaces the target table with the given snapshot inside one
// transaction.
func (s *PostgresSink) Write(ctx context.Context, t *table.Table) error {
	cols := t.Cols()
	if len(cols) == 0 {
		return eris.New("sink: table has no columns")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "sink: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, s.tableName)); err != nil {
		return eris.Wrap(err, "sink: drop table")
	}
	if _, err := tx.Exec(ctx, pgCreateTableSQL(s.tableName, cols)); err != nil {
		return eris.Wrap(err, "sink: create table")
	}

	if t.NumRows() > 0 {
		rows := make([][]any, t.NumRows())
		for i := range rows {
			rows[i] = t.Row(i)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{s.tableName}, cols, pgx.CopyFromRows(rows))
		if err != nil {
			return eris.Wrapf(err, "sink: COPY INTO %s", s.tableName)
		}
		if n != int64(len(rows)) {
			return eris.Errorf("sink: COPY wrote %d of %d rows", n, len(rows))
		}
	}

	return eris.Wrap(tx.Commit(ctx), "sink: commit")
}

func pgCreateTableSQL(name string, cols []string) string {
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%q %s", col, pgType(col))
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s)`, name, strings.Join(defs, ", "))
}

func pgType(col string) string {
	switch {
	case intCols[col]:
		return "BIGINT"
	case floatCols[col]:
		return "DOUBLE PRECISION"
	case dateCols[col]:
		return "DATE"
	default:
		return "TEXT"
	}
}
