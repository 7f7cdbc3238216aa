package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/simulation"
)

const scenarioYAML = `
name: smoke
layout:
  left: 0
  top: 0
  column_width: 20
  column_height: 40
  item_height: 8
  gap: 2
  viewport_width: 200
  viewport_height: 60
columns:
  - id: todo
    items: [a, b, c]
steps:
  - action: drag
    card: a
    column: todo
    index: 2
expect:
  orders:
    todo: [b, c, a]
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))
	return path
}

func TestBuildBoard(t *testing.T) {
	t.Run("demo board", func(t *testing.T) {
		b, err := buildBoard("", zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, b.ColumnIDs(), len(demoColumns))
	})

	t.Run("from scenario", func(t *testing.T) {
		b, err := buildBoard(writeScenario(t), zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"todo": {"a", "b", "c"}}, b.Orders())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := buildBoard(filepath.Join(t.TempDir(), "nope.yaml"), zap.NewNop())
		assert.Error(t, err)
	})
}

func TestReportCmd_RendersSavedReports(t *testing.T) {
	// -- Setup --
	s, err := simulation.LoadFile(writeScenario(t))
	require.NoError(t, err)
	report, err := simulation.NewRunner(config.Default(), zap.NewNop()).Run(context.Background(), s)
	require.NoError(t, err)

	var saved bytes.Buffer
	require.NoError(t, writeReport(&saved, report, "json"))
	require.NoError(t, writeReport(&saved, report, "json"))
	in := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(in, saved.Bytes(), 0o644))

	// -- Execution --
	cmd := newReportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--in", in})
	require.NoError(t, cmd.Execute())

	// -- Assertions --
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("PASS smoke")))
	assert.Contains(t, out.String(), "+ a")
}

func TestWriteReport_Formats(t *testing.T) {
	report := &simulation.Report{Name: "x", Passed: true}

	var text, js bytes.Buffer
	require.NoError(t, writeReport(&text, report, "text"))
	require.NoError(t, writeReport(&js, report, "json"))

	assert.Contains(t, text.String(), "PASS x")
	assert.Contains(t, js.String(), `"passed": true`)
}
