package transform

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/table"
)

// clientAttrCols are the attributes the joiner copies from the client
// dimension onto each fact row.
var clientAttrCols = []string{"name", "industry", "account_manager", "signup_date"}

// ClientJoiner left-joins the fact table onto the client dimension.
type ClientJoiner struct{}

// NewClientJoiner creates a ClientJoiner.
func NewClientJoiner() *ClientJoiner {
	return &ClientJoiner{}
}

// Join left-joins fact rows onto clients by client_id, coercing both keys to
// string. Every fact row is retained; unmatched rows get "Unknown" for the
// string client attributes and a null signup_date. A missing or empty client
// dimension is a hard failure: client identity is mandatory for the join.
func (j *ClientJoiner) Join(fact, clients *table.Table) (*table.Table, error) {
	if clients == nil || clients.NumRows() == 0 {
		return nil, eris.New("join: client dimension is missing or empty")
	}
	if fact == nil {
		return nil, eris.New("join: fact table is nil")
	}

	byID := make(map[string]int, clients.NumRows())
	for i := 0; i < clients.NumRows(); i++ {
		id := keyString(clients.Get(i, "client_id"))
		if id == "" {
			continue
		}
		if _, dup := byID[id]; !dup {
			byID[id] = i
		}
	}

	out := fact.Clone()
	out.AddCol("name", nil)
	out.AddCol("industry", nil)
	out.AddCol("account_manager", nil)
	out.AddCol("signup_date", nil)

	unmatched := 0
	for i := 0; i < out.NumRows(); i++ {
		id := keyString(out.Get(i, "client_id"))
		ci, ok := byID[id]
		if !ok {
			unmatched++
			out.Set(i, "name", "Unknown")
			out.Set(i, "industry", "Unknown")
			out.Set(i, "account_manager", "Unknown")
			// signup_date stays null: a string sentinel would poison the
			// date column for matched rows.
			continue
		}
		for _, col := range clientAttrCols {
			out.Set(i, col, clients.Get(ci, col))
		}
	}

	if unmatched > 0 {
		zap.L().Warn("join: fact rows had no matching client", zap.Int("rows", unmatched))
	}
	return out, nil
}
