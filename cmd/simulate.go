package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/observability"
	"github.com/xkilldash9x/dropzone/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	var outPath string

	simulateCmd := &cobra.Command{
		Use:   "simulate SCENARIO...",
		Short: "Replay scripted drags and check the resulting order",
		Long:  `Loads each YAML scenario, replays its mouse and keyboard steps against a fresh board and engine, and reports the drop results and the final card order. Exits non-zero when any expectation fails.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := config.Get()

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to open output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			runner := simulation.NewRunner(cfg, logger)
			failed := 0
			for _, path := range args {
				s, err := simulation.LoadFile(path)
				if err != nil {
					return err
				}
				report, err := runner.Run(ctx, s)
				if err != nil {
					return fmt.Errorf("scenario %s: %w", s.Name, err)
				}
				if err := writeReport(out, report, cfg.Simulate.ReportFormat); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				if !report.Passed {
					failed++
					logger.Warn("Scenario failed.", zap.String("scenario", s.Name), zap.Strings("failures", report.Failures))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}

	flags := simulateCmd.Flags()
	flags.StringP("format", "f", "text", "report format: text or json")
	flags.Bool("humanize", false, "move the pointer along human-like curved paths")
	flags.Int64("seed", 1, "seed for humanized paths")
	flags.Int("steps", 12, "pointer moves per straight drag")
	flags.StringVarP(&outPath, "out", "o", "", "write the report to a file instead of stdout")

	_ = viper.BindPFlag("simulate.report_format", flags.Lookup("format"))
	_ = viper.BindPFlag("simulate.humanize", flags.Lookup("humanize"))
	_ = viper.BindPFlag("simulate.seed", flags.Lookup("seed"))
	_ = viper.BindPFlag("simulate.steps_per_move", flags.Lookup("steps"))

	return simulateCmd
}

func writeReport(w io.Writer, report *simulation.Report, format string) error {
	if format == "json" {
		return report.WriteJSON(w)
	}
	return report.WriteText(w)
}
