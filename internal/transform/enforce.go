package transform

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/table"
)

// Warning records one value that could not be coerced to its column's
// declared type. The row is retained; the value becomes the type's null
// representation (or the count default).
type Warning struct {
	Column string
	Row    int
	Value  string
	Reason string
}

// Enforcer coerces every standardized column to its declared semantic type.
type Enforcer struct {
	kinds map[string]model.Kind
}

// NewEnforcer creates an Enforcer using the canonical column-type table.
func NewEnforcer() *Enforcer {
	return &Enforcer{kinds: model.ColumnKinds}
}

// Apply coerces each typed column of the table, best-effort. Invalid values
// become the type's null representation and are reported as warnings; count
// columns are then filled to 0 and cast to integer. The special
// avg_session_duration_str column is parsed into avg_session_duration_seconds
// and dropped.
func (e *Enforcer) Apply(t *table.Table) (*table.Table, []Warning) {
	out := t.Clone()
	var warns []Warning

	for _, col := range out.Cols() {
		kind, ok := e.kinds[col]
		if !ok {
			continue
		}
		warns = append(warns, coerceColumn(out, col, kind)...)
	}

	if out.HasCol("avg_session_duration_str") {
		warns = append(warns, coerceDurations(out)...)
	}

	if len(warns) > 0 {
		zap.L().Warn("enforce: coerced invalid values to defaults", zap.Int("count", len(warns)))
	}
	return out, warns
}

// coerceColumn coerces one column in place and returns value-level warnings.
func coerceColumn(t *table.Table, col string, kind model.Kind) []Warning {
	var warns []Warning
	n := t.NumRows()

	for i := 0; i < n; i++ {
		v := t.Get(i, col)
		if table.IsNull(v) {
			continue
		}

		switch kind {
		case model.KindString:
			if _, ok := v.(string); !ok {
				t.Set(i, col, keyString(v))
			}

		case model.KindDate:
			d, ok := parseDate(v)
			if !ok {
				warns = append(warns, Warning{Column: col, Row: i, Value: keyString(v), Reason: "unparseable date"})
				t.Set(i, col, nil)
				continue
			}
			t.Set(i, col, d)

		case model.KindInt, model.KindFloat:
			f, ok := parseNumeric(v)
			if !ok {
				warns = append(warns, Warning{Column: col, Row: i, Value: keyString(v), Reason: "non-numeric value"})
				t.Set(i, col, math.NaN())
				continue
			}
			t.Set(i, col, f)
		}
	}

	// Count columns: null → 0, cast to integer.
	if kind == model.KindInt && model.CountColumns[col] {
		for i := 0; i < n; i++ {
			f, ok := table.AsFloat(t.Get(i, col))
			if !ok {
				t.Set(i, col, int64(0))
				continue
			}
			t.Set(i, col, int64(f))
		}
	}
	return warns
}

// coerceDurations parses avg_session_duration_str (HH:MM:SS or MM:SS) into
// an integer avg_session_duration_seconds column and drops the string column.
// Unparseable values fill to 0.
func coerceDurations(t *table.Table) []Warning {
	var warns []Warning

	t.AddCol("avg_session_duration_seconds", int64(0))
	for i := 0; i < t.NumRows(); i++ {
		v := t.Get(i, "avg_session_duration_str")
		if table.IsNull(v) {
			continue
		}
		secs, ok := parseDuration(v)
		if !ok {
			warns = append(warns, Warning{
				Column: "avg_session_duration_str",
				Row:    i,
				Value:  keyString(v),
				Reason: "unparseable duration",
			})
			continue
		}
		t.Set(i, "avg_session_duration_seconds", secs)
	}
	t.Drop("avg_session_duration_str")
	return warns
}
