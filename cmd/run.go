package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/martech-cli/internal/pipeline"
)

var (
	runOutput string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full batch pipeline once",
	Long:  "Ingests all raw sources, builds the attributed fact table, writes it to the configured sink, and generates reports.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if runFormat != "" {
			cfg.Sink.Format = runFormat
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sk, err := buildSink(ctx)
		if err != nil {
			return err
		}
		defer sk.Close() //nolint:errcheck

		opts, err := pipelineOptions()
		if err != nil {
			return err
		}

		res, err := pipeline.New(opts, st, sk).Run(ctx)
		if err != nil {
			return err
		}

		out := os.Stdout
		if runOutput != "" {
			f, err := os.Create(runOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOutput, "output", "", "write the run summary JSON to a file instead of stdout")
	runCmd.Flags().StringVar(&runFormat, "format", "", "override the sink format (sqlite, postgres, csv)")
	rootCmd.AddCommand(runCmd)
}
