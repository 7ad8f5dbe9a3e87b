package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/martech-cli/internal/report"
	"github.com/sells-group/martech-cli/internal/table"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate reports from the persisted fact table",
	Long:  "Reads the fact table back from the configured sink and rebuilds the summary and lift reports without re-running the pipeline.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			t   *table.Table
			err error
		)
		switch cfg.Sink.Format {
		case "sqlite":
			t, err = report.LoadFromSQLite(cfg.Sink.Path, cfg.Sink.Table)
		case "csv":
			t, err = report.LoadFromCSV(cfg.Sink.Path)
		default:
			return eris.Errorf("report: reload not supported for sink format %q", cfg.Sink.Format)
		}
		if err != nil {
			return err
		}

		gen := report.NewGenerator(cfg.Report.OutDir)
		if err := gen.Generate(t); err != nil {
			return err
		}
		_, err = gen.Lift(t)
		return err
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
