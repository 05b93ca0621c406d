package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rulemerge/pkg/merge"
)

func newWatchCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Merge now, then again on an interval and whenever the source list changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, cfg, err := setup(cmd, *cfgFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return runner.Watch(ctx, cfg.Watch.Interval, func(report *merge.Report) {
				printSummary(out, report)
			})
		},
	}
	cmd.Flags().String("interval", "", "re-run interval such as 6h; 0 disables periodic runs")
	return cmd
}
