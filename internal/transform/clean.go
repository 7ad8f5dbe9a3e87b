package transform

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/table"
)

// Cleaner runs column standardization and type enforcement over a set of
// per-source tables.
type Cleaner struct {
	std *Standardizer
	enf *Enforcer
}

// NewCleaner builds a Cleaner. A nil mappings argument uses the defaults.
func NewCleaner(m Mappings) *Cleaner {
	return &Cleaner{std: NewStandardizer(m), enf: NewEnforcer()}
}

// Clean standardizes and type-enforces each present source table. Nil tables
// are logged and skipped; empty tables pass through untouched so downstream
// stages see a consistent key set.
func (c *Cleaner) Clean(sources map[string]*table.Table) (map[string]*table.Table, []Warning) {
	log := zap.L()
	cleaned := make(map[string]*table.Table, len(sources))
	var warns []Warning

	for _, name := range sortedKeys(sources) {
		t := sources[name]
		if t == nil {
			log.Error("clean: source table is missing", zap.String("source", name))
			continue
		}
		if t.NumRows() == 0 {
			log.Warn("clean: source table is empty", zap.String("source", name))
			cleaned[name] = t
			continue
		}

		std := c.std.Apply(t, name)
		enforced, w := c.enf.Apply(std)
		cleaned[name] = enforced
		warns = append(warns, w...)
		log.Info("clean: source cleaned",
			zap.String("source", name),
			zap.Int("rows", enforced.NumRows()),
			zap.Int("warnings", len(w)),
		)
	}
	return cleaned, warns
}

func sortedKeys(m map[string]*table.Table) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
