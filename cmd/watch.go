package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/pipeline"
	"github.com/sells-group/martech-cli/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the raw data directory and re-run on changes",
	Long:  "Blocks, re-running the full pipeline whenever raw source files settle after a change. Stop with Ctrl-C.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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
		p := pipeline.New(opts, st, sk)

		w := watch.New(watch.Options{
			Dir:              cfg.Watch.Dir,
			Debounce:         time.Duration(cfg.Watch.DebounceSecs) * time.Second,
			MaxRunsPerMinute: cfg.Watch.MaxRunsPerMin,
		}, func(ctx context.Context) error {
			res, err := p.Run(ctx)
			if err != nil {
				return err
			}
			zap.L().Info("watch: run finished",
				zap.String("run_id", res.RunID),
				zap.Int("rows", res.Rows),
			)
			return nil
		})

		return w.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
