package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/table"
)

func clientDim(t *testing.T) *table.Table {
	t.Helper()
	clients := table.New("client_id", "name", "industry", "account_manager", "signup_date")
	require.NoError(t, clients.AppendRow("C101", "Summit Group", "Tech", "Jordan Avery",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, clients.AppendRow("C102", "Harbor Labs", "Retail", "Casey Morgan", nil))
	return clients
}

func TestClientJoiner_MatchedRowsGetAttributes(t *testing.T) {
	fact := table.New("client_id", "clicks")
	require.NoError(t, fact.AppendRow("C101", int64(5)))

	out, err := NewClientJoiner().Join(fact, clientDim(t))
	require.NoError(t, err)

	assert.Equal(t, "Summit Group", out.Get(0, "name"))
	assert.Equal(t, "Tech", out.Get(0, "industry"))
	assert.Equal(t, "Jordan Avery", out.Get(0, "account_manager"))
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), out.Get(0, "signup_date"))
}

func TestClientJoiner_UnmatchedRowsGetUnknown(t *testing.T) {
	fact := table.New("client_id", "clicks")
	require.NoError(t, fact.AppendRow("C999", int64(1)))

	out, err := NewClientJoiner().Join(fact, clientDim(t))
	require.NoError(t, err)

	assert.Equal(t, "Unknown", out.Get(0, "name"))
	assert.Equal(t, "Unknown", out.Get(0, "industry"))
	assert.Equal(t, "Unknown", out.Get(0, "account_manager"))
	assert.Nil(t, out.Get(0, "signup_date"))
}

func TestClientJoiner_KeysMatchAcrossTypes(t *testing.T) {
	// Numeric fact key joins against a string roster key.
	fact := table.New("client_id")
	require.NoError(t, fact.AppendRow(int64(101)))

	clients := table.New("client_id", "name", "industry", "account_manager", "signup_date")
	require.NoError(t, clients.AppendRow("101", "Numeric Co", "SaaS", "Riley Bennett", nil))

	out, err := NewClientJoiner().Join(fact, clients)
	require.NoError(t, err)
	assert.Equal(t, "Numeric Co", out.Get(0, "name"))
}

func TestClientJoiner_MissingClientsIsError(t *testing.T) {
	fact := table.New("client_id")
	require.NoError(t, fact.AppendRow("C101"))

	_, err := NewClientJoiner().Join(fact, nil)
	assert.Error(t, err)

	_, err = NewClientJoiner().Join(fact, table.New("client_id"))
	assert.Error(t, err)
}

func TestClientJoiner_DuplicateClientKeepsFirst(t *testing.T) {
	fact := table.New("client_id")
	require.NoError(t, fact.AppendRow("C101"))

	clients := table.New("client_id", "name", "industry", "account_manager", "signup_date")
	require.NoError(t, clients.AppendRow("C101", "First", "Tech", "A", nil))
	require.NoError(t, clients.AppendRow("C101", "Second", "Retail", "B", nil))

	out, err := NewClientJoiner().Join(fact, clients)
	require.NoError(t, err)
	assert.Equal(t, "First", out.Get(0, "name"))
}
