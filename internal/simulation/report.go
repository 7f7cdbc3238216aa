package simulation

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/xkilldash9x/dropzone/api/schemas"
)

// StepReport is what one step did.
type StepReport struct {
	Number       int                 `json:"number"`
	Step         Step                `json:"step"`
	Result       *schemas.DropResult `json:"result,omitempty"`
	DropDuration float64             `json:"dropDuration,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Report summarizes a scenario run.
type Report struct {
	Name     string              `json:"name"`
	Passed   bool                `json:"passed"`
	Frames   int                 `json:"frames"`
	Before   map[string][]string `json:"before"`
	After    map[string][]string `json:"after"`
	Steps    []StepReport        `json:"steps"`
	Failures []string            `json:"failures,omitempty"`
}

func (r *Report) check(expect Expectation) {
	for _, column := range sortedKeys(expect.Orders) {
		want := expect.Orders[column]
		got := r.After[column]
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if !reflect.DeepEqual(want, got) {
			r.Failures = append(r.Failures, fmt.Sprintf("column %s: want %v, got %v", column, want, got))
		}
	}
	r.Passed = len(r.Failures) == 0
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a human readable report with a per-column order diff.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(&sb, "%s %s (%d steps, %d frames)\n", status, r.Name, len(r.Steps), r.Frames)

	for _, s := range r.Steps {
		fmt.Fprintf(&sb, "  %2d. %s\n", s.Number, describeStep(s))
	}

	columns := sortedKeys(r.Before)
	for _, c := range sortedKeys(r.After) {
		if _, ok := r.Before[c]; !ok {
			columns = append(columns, c)
		}
	}
	for _, c := range columns {
		diff := OrderDiff(r.Before[c], r.After[c])
		if diff == "" {
			continue
		}
		fmt.Fprintf(&sb, "  %s:\n", c)
		for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}

	for _, f := range r.Failures {
		fmt.Fprintf(&sb, "  ! %s\n", f)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func describeStep(s StepReport) string {
	desc := s.Step.Action
	if s.Step.Card != "" {
		desc += " " + s.Step.Card
	}
	if s.Error != "" {
		return desc + ": error: " + s.Error
	}
	res := s.Result
	if res == nil {
		return desc
	}
	switch {
	case res.Combine != nil:
		desc += fmt.Sprintf(": combined with %s", res.Combine.DraggableID)
	case res.Destination != nil:
		desc += fmt.Sprintf(": %s -> %s[%d] (%s)", res.Source.DroppableID, res.Destination.DroppableID, res.Destination.Index, strings.ToLower(string(res.Reason)))
	default:
		desc += fmt.Sprintf(": %s, no destination", strings.ToLower(string(res.Reason)))
	}
	if s.DropDuration > 0 {
		desc += fmt.Sprintf(", animated %.2fs", s.DropDuration)
	}
	return desc
}

// OrderDiff renders the change between two card orders as a line diff, or
// the empty string when nothing moved.
func OrderDiff(before, after []string) string {
	if reflect.DeepEqual(before, after) {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
		}
	}
	return sb.String()
}

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
