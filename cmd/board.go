package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/observability"
	"github.com/xkilldash9x/dropzone/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var scenarioPath string
	var printOrders bool

	boardCmd := &cobra.Command{
		Use:         "board",
		Short:       "Open an interactive board",
		Long:        `Opens a board in the terminal. Cards can be dragged with the mouse, or focused with the arrow keys and lifted with space. The board's columns come from a scenario file when --scenario is set.`,
		Annotations: map[string]string{consoleAnnotation: "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			cfg := config.Get()

			b, err := buildBoard(scenarioPath, logger)
			if err != nil {
				return err
			}
			model, err := tui.New(tui.Options{Config: cfg, Logger: logger, Board: b})
			if err != nil {
				return err
			}
			if err := tui.Run(model); err != nil {
				return fmt.Errorf("board exited: %w", err)
			}
			if printOrders {
				fmt.Fprint(cmd.OutOrStdout(), tui.FormatOrders(model.Orders()))
			}
			return nil
		},
	}

	boardCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file to take the columns from")
	boardCmd.Flags().BoolVar(&printOrders, "print", false, "print the final card order on exit")
	return boardCmd
}
