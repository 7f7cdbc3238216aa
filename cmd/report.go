// cmd/report.go
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/dropzone/internal/simulation"
)

func newReportCmd() *cobra.Command {
	var inPath string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved JSON simulation report as text",
		Long:  `Reads a report written by "simulate --format json" and prints it in the text format, including the per-column order diff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}
			defer f.Close()

			// simulate writes one document per scenario.
			dec := json.NewDecoder(f)
			for {
				var report simulation.Report
				if err := dec.Decode(&report); err == io.EOF {
					return nil
				} else if err != nil {
					return fmt.Errorf("failed to parse report %s: %w", inPath, err)
				}
				if err := report.WriteText(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
		},
	}

	reportCmd.Flags().StringVar(&inPath, "in", "", "path of the JSON report (required)")
	_ = reportCmd.MarkFlagRequired("in")

	return reportCmd
}
