package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/sheet"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <input.xlsx> <output.xlsx>",
	Short: "Resolve missing attributes for a spreadsheet of records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := buildEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := sheet.ReadRecords(args[0])
		if err != nil {
			return err
		}

		j := e.Registry.Create(records)
		zap.L().Info("starting resolution",
			zap.String("job", j.ID),
			zap.Int("records", len(records)),
		)

		err = e.Orchestrator.Run(ctx, j, func(snap model.ProgressSnapshot) {
			if snap.Finished || snap.Completed%5 == 0 {
				zap.L().Info("progress",
					zap.Int("completed", snap.Completed),
					zap.Int("total", snap.Total),
					zap.Int("success", snap.Success),
					zap.Int("fail", snap.Fail),
				)
			}
		})
		if err != nil {
			return eris.Wrap(err, "resolution cancelled")
		}

		if e.Store != nil {
			if err := e.Store.SaveJob(cmd.Context(), j); err != nil {
				zap.L().Warn("saving job history", zap.Error(err))
			}
		}

		if err := sheet.WriteRecords(args[1], j.Records); err != nil {
			return err
		}

		snap := j.Progress.Snapshot()
		zap.L().Info("resolution complete",
			zap.String("job", j.ID),
			zap.Int("success", snap.Success),
			zap.Int("fail", snap.Fail),
			zap.String("output", args[1]),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
