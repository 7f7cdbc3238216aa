// File: cmd/factory.go
package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/internal/board"
	"github.com/xkilldash9x/dropzone/internal/simulation"
)

// demoColumns is the board shown when no scenario is given.
var demoColumns = []board.ColumnSpec{
	{ID: "backlog", Title: "Backlog", Items: []string{"Write docs", "Triage issues", "Fix flaky test", "Profile scroller", "Audit deps", "Plan release", "Update examples"}, Scrollable: true},
	{ID: "doing", Title: "Doing", Items: []string{"Keyboard drag", "Drop animation"}, CombineEnabled: true},
	{ID: "review", Title: "Review", Items: []string{"Virtual lists"}},
	{ID: "done", Title: "Done", Items: []string{"Collision model"}},
}

// buildBoard builds the board for the interactive view, from a scenario file
// when one is given.
func buildBoard(path string, logger *zap.Logger) (*board.Board, error) {
	layout := board.DefaultLayout()
	columns := demoColumns

	if path != "" {
		s, err := simulation.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if s.Layout != nil {
			layout = *s.Layout
		}
		columns = s.Columns
		logger.Info("Loaded board from scenario.", zap.String("scenario", s.Name), zap.Int("columns", len(columns)))
	}

	b, err := board.New(layout, columns, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}
	return b, nil
}
