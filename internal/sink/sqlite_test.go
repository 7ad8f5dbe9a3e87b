package sink

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/table"
)

func factFixture(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("client_id", "date", "platform", "clicks", "spend_usd")
	require.NoError(t, tb.AppendRow("C101", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "google_ads", int64(10), 5.25))
	require.NoError(t, tb.AppendRow("C102", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "web_traffic", int64(0), 0.0))
	return tb
}

func TestSQLiteSink_WriteAndReadBack(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "facts.db")
	s, err := NewSQLiteSink(dsn, "campaign_facts")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), factFixture(t)))

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "campaign_facts"`).Scan(&n))
	assert.Equal(t, 2, n)

	var clicks int64
	require.NoError(t, db.QueryRow(`SELECT clicks FROM "campaign_facts" WHERE client_id = 'C101'`).Scan(&clicks))
	assert.Equal(t, int64(10), clicks)
}

func TestSQLiteSink_WriteReplacesPriorSnapshot(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "facts.db")
	s, err := NewSQLiteSink(dsn, "campaign_facts")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, factFixture(t)))

	small := table.New("client_id")
	require.NoError(t, small.AppendRow("C999"))
	require.NoError(t, s.Write(ctx, small))

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "campaign_facts"`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteSink_EmptyTableKeepsSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "facts.db")
	s, err := NewSQLiteSink(dsn, "campaign_facts")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), table.New("client_id", "clicks")))

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "campaign_facts"`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSQLiteSink_NoColumnsIsError(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "facts.db")
	s, err := NewSQLiteSink(dsn, "campaign_facts")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Write(context.Background(), table.New()))
}
