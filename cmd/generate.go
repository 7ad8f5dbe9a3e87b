package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/martech-cli/internal/gen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic raw dataset",
	Long:  "Writes synthetic channel exports, a client roster, and a revenue ledger into the raw data directory for local development.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, err := time.Parse("2006-01-02", cfg.Gen.Start)
		if err != nil {
			return eris.Wrapf(err, "generate: parse start date %q", cfg.Gen.Start)
		}

		g := gen.New(gen.Config{
			OutDir:  cfg.Gen.OutDir,
			Clients: cfg.Gen.Clients,
			Days:    cfg.Gen.Days,
			Start:   start,
			Seed:    cfg.Gen.Seed,
		})
		return g.Generate()
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
