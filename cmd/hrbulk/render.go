package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

func kv(label string, value any) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + fmt.Sprint(value)
}

func renderSummary(s report.Summary, artifacts []string) string {
	rate := okStyle
	if s.FailureCount > 0 {
		rate = failStyle
	}
	lines := []string{
		titleStyle.Render("Bulk Operation Summary"),
		kv("Operation ID", s.OperationID),
		kv("Operation", s.Operation),
		kv("Total", s.Total),
		kv("Successful", okStyle.Render(fmt.Sprint(s.SuccessCount))),
		kv("Failed", failStyle.Render(fmt.Sprint(s.FailureCount))),
		kv("Success rate", rate.Render(fmt.Sprintf("%.1f%%", s.SuccessRate))),
	}
	if len(s.Examples) > 0 {
		lines = append(lines, "", labelStyle.Render("Example failures"))
		for _, e := range s.Examples {
			lines = append(lines, "  "+failStyle.Render("• ")+e)
		}
	}
	if len(s.Notes) > 0 {
		lines = append(lines, "", labelStyle.Render("Notes"))
		for _, n := range s.Notes {
			lines = append(lines, "  "+n)
		}
	}
	if len(artifacts) > 0 {
		lines = append(lines, "", labelStyle.Render("Artifacts"))
		for _, p := range artifacts {
			lines = append(lines, "  "+p)
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderInspection(op constants.Operation, r inspect.Report) string {
	if !r.Success {
		return boxStyle.Render(titleStyle.Render("Inspection failed") + "\n" + failStyle.Render(r.Error))
	}

	lines := []string{
		titleStyle.Render("File Structure"),
		kv("File", r.Path),
		kv("Operation", op),
		kv("Rows", r.TotalRows),
		kv("Columns", r.TotalColumns),
		"",
		labelStyle.Render("Suggested mappings"),
	}

	fields := make([]constants.Field, 0, len(r.SuggestedMappings))
	for f := range r.SuggestedMappings {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	for _, f := range fields {
		m := r.SuggestedMappings[f]
		lines = append(lines, fmt.Sprintf("  %-16s ← %-24s %5.1f%%", f, m.Column, m.Confidence()))
	}
	for _, col := range r.Unmapped {
		line := "  " + failStyle.Render("unmapped") + " " + col
		if hints := r.Hints[col]; len(hints) > 0 {
			line += labelStyle.Render(" (closest: " + strings.Join(hints, ", ") + ")")
		}
		lines = append(lines, line)
	}

	cs := r.ConfidenceSummary
	dq := r.DataQuality
	lines = append(lines,
		"",
		kv("Confidence", fmt.Sprintf("high %d, medium %d, low %d", cs.High, cs.Medium, cs.Low)),
		kv("Missing cells", dq.TotalMissingValues),
		kv("Incomplete rows", dq.RowsWithMissing),
		kv("Duplicate rows", dq.DuplicateRows),
		kv("Empty rows", dq.EmptyRows),
	)
	for _, issue := range r.CleaningNeeded {
		lines = append(lines, "  "+failStyle.Render("needs cleaning")+fmt.Sprintf(" %s (%s): %s", issue.Field, issue.Column, issue.Issue))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
