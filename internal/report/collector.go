package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/gnolang/voidcaster/internal/types"
)

// Collector records findings as issues for machine-readable output.
type Collector struct {
	issues []types.Issue
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) MissingCast(file, fn string, at types.Location) error {
	c.issues = append(c.issues, types.Issue{
		Rule:       types.RuleMissingCast,
		Filename:   file,
		Function:   fn,
		Message:    fmt.Sprintf("Missing cast to void when calling function %s.", fn),
		Suggestion: "(void)" + fn + "(...)",
		Severity:   types.SeverityError,
		Start:      at,
		End:        at,
	})
	return nil
}

func (c *Collector) SuperfluousCast(file, fn string, cast types.Extent) error {
	c.issues = append(c.issues, types.Issue{
		Rule:       types.RuleSuperfluousCast,
		Filename:   file,
		Function:   fn,
		Message:    fmt.Sprintf("Pointless cast to void when calling function %s.", fn),
		Suggestion: fn + "(...)",
		Severity:   types.SeverityError,
		Start:      cast.Start,
		End:        cast.End,
	})
	return nil
}

func (c *Collector) Unresolved(file, fn string, at types.Location) {
	c.issues = append(c.issues, types.Issue{
		Rule:     types.RuleUnresolved,
		Filename: file,
		Function: fn,
		Message:  fmt.Sprintf("can't check call to %s (can't find original definition)", fn),
		Severity: types.SeverityWarning,
		Start:    at,
		End:      at,
	})
}

// Issues returns the recorded issues in report order.
func (c *Collector) Issues() []types.Issue { return c.issues }

// ByFile groups the issues by file name, each group sorted by position.
func (c *Collector) ByFile() map[string][]types.Issue {
	grouped := make(map[string][]types.Issue)
	for _, issue := range c.issues {
		grouped[issue.Filename] = append(grouped[issue.Filename], issue)
	}
	for _, issues := range grouped {
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].Start.Less(issues[j].Start)
		})
	}
	return grouped
}

// WriteJSON writes the issues grouped by file as a JSON object.
func (c *Collector) WriteJSON(w io.Writer) error {
	d, err := json.Marshal(c.ByFile())
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	if _, err := w.Write(d); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
