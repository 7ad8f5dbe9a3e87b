package transform

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/table"
)

// Combiner concatenates per-channel standardized tables into one fact table
// with the fixed supercolumn set.
type Combiner struct{}

// NewCombiner creates a Combiner.
func NewCombiner() *Combiner {
	return &Combiner{}
}

// Combine discards nil/empty channel tables, concatenates the rest row-wise
// in canonical channel order, fills absent supercolumns with null, and then
// applies the fill policy (counts/money → 0, rates → 0.0, text → "Unknown").
// When every input is empty or absent the result is an empty table that
// still carries the full canonical column set.
func (c *Combiner) Combine(sources map[string]*table.Table) *table.Table {
	var parts []*table.Table
	for _, channel := range channelOrder(sources) {
		t := sources[channel]
		if t == nil || t.NumRows() == 0 {
			continue
		}
		parts = append(parts, t)
	}

	out := table.New(model.FactColumns...)
	if len(parts) == 0 {
		zap.L().Warn("combine: no non-empty fact tables to combine")
		return out
	}

	for _, part := range parts {
		for i := 0; i < part.NumRows(); i++ {
			vals := make([]any, len(model.FactColumns))
			for j, col := range model.FactColumns {
				vals[j] = part.Get(i, col)
			}
			_ = out.AppendRow(vals...)
		}
	}

	fillNumeric(out, model.NumericFillColumns)
	fillRates(out, model.RateFillColumns)
	fillText(out, model.TextFillColumns)
	return out
}

// channelOrder yields the fact platforms first, then any other source keys,
// so concatenation order is deterministic.
func channelOrder(sources map[string]*table.Table) []string {
	seen := make(map[string]bool, len(sources))
	var order []string
	for _, ch := range model.FactPlatforms {
		if _, ok := sources[ch]; ok {
			order = append(order, ch)
			seen[ch] = true
		}
	}
	for _, ch := range sortedKeys(sources) {
		if !seen[ch] {
			order = append(order, ch)
		}
	}
	return order
}

// fillNumeric fills nulls with 0, then types the whole column: integer when
// every value is integral, float otherwise.
func fillNumeric(t *table.Table, cols []string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			continue
		}
		integral := true
		for i := 0; i < t.NumRows(); i++ {
			v := t.Get(i, col)
			if table.IsNull(v) {
				t.Set(i, col, int64(0))
				continue
			}
			if _, ok := table.AsInt(v); !ok {
				integral = false
			}
		}
		for i := 0; i < t.NumRows(); i++ {
			if integral {
				if n, ok := table.AsInt(t.Get(i, col)); ok {
					t.Set(i, col, n)
				}
			} else if f, ok := table.AsFloat(t.Get(i, col)); ok {
				t.Set(i, col, f)
			}
		}
	}
}

// fillRates fills nulls with 0.0 and forces every value to float.
func fillRates(t *table.Table, cols []string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			f, ok := table.AsFloat(t.Get(i, col))
			if !ok || math.IsInf(f, 0) {
				t.Set(i, col, 0.0)
				continue
			}
			t.Set(i, col, f)
		}
	}
}

// fillText fills null categorical/text cells with the "Unknown" sentinel.
func fillText(t *table.Table, cols []string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			if table.IsNull(t.Get(i, col)) {
				t.Set(i, col, "Unknown")
			}
		}
	}
}
