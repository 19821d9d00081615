package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/decode"
	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/resolve"
	"github.com/sells-group/toolspec-cli/internal/sheet"
)

// decodeCmd runs the part-number pattern decoder as an explicit,
// standalone stage: no network, best-effort fill from encoding
// conventions only.
var decodeCmd = &cobra.Command{
	Use:   "decode <input.xlsx> <output.xlsx>",
	Short: "Fill attributes from part-number encoding conventions (offline)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := sheet.ReadRecords(args[0])
		if err != nil {
			return err
		}

		j := model.NewJob("decode", records)
		resolve.Decode(j, decode.Decode)

		if err := sheet.WriteRecords(args[1], j.Records); err != nil {
			return err
		}

		zap.L().Info("decode complete",
			zap.Int("records", len(records)),
			zap.String("output", args[1]),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
