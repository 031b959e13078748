// Package render formats view model data for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/codecoach/client/internal/storage"
	"github.com/codecoach/client/internal/summary"
	"github.com/codecoach/client/types"
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9b59b6"))
)

var verdictColors = map[types.Verdict]lipgloss.Color{
	types.VerdictAccepted:            "#2ecc71",
	types.VerdictWrongAnswer:         "#e74c3c",
	types.VerdictRuntimeError:        "#e67e22",
	types.VerdictTimeLimitExceeded:   "#f1c40f",
	types.VerdictMemoryLimitExceeded: "#f1c40f",
	types.VerdictCompileError:        "#e056fd",
}

// Verdict renders v in its status color. Unknown verdicts are shown as-is.
func Verdict(v types.Verdict) string {
	color, ok := verdictColors[v]
	if !ok {
		color = "#e056fd"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(string(v))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			// row 0 is the header row
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})
}

func field(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func ProblemList(problems []types.ProblemSummary) string {
	if len(problems) == 0 {
		return mutedStyle.Render("No problems found.")
	}
	t := newTable("ID", "Title", "Difficulty", "Tags")
	for _, p := range problems {
		t.Row(p.ProblemID, p.Title, string(p.Difficulty), strings.Join(p.Tags, ", "))
	}
	return t.String()
}

func ProblemDetail(p types.ProblemDetail) string {
	lines := []string{
		titleStyle.Render(p.Title),
		field("ID", p.ProblemID),
		field("Difficulty", string(p.Difficulty)),
		field("Tags", strings.Join(p.Tags, ", ")),
		field("Test cases", fmt.Sprintf("%d", len(p.TestCases))),
	}
	if p.Description != "" {
		lines = append(lines, "", p.Description)
	}
	if p.CodeStub != "" {
		lines = append(lines, "", labelStyle.Render("Code stub:"), p.CodeStub)
	}
	return strings.Join(lines, "\n")
}

// Evaluation renders the verdict header and the per-test table. When
// failingOnly is set only the non-accepted tests are listed.
func Evaluation(resp types.EvaluationResponse, s summary.Summary, failingOnly bool) string {
	lines := []string{
		fmt.Sprintf("%s %s  %s",
			labelStyle.Render("Verdict:"), Verdict(s.OverallStatus),
			mutedStyle.Render(fmt.Sprintf("%d/%d passed", s.Passed, s.Total))),
		field("Max time", fmt.Sprintf("%d ms", s.MaxTimeMs)),
		field("Max memory", fmt.Sprintf("%d KB", s.MaxMemoryKb)),
	}
	if resp.SubmissionID != "" {
		lines = append(lines, field("Submission", resp.SubmissionID))
	}
	if s.Worst != nil && !s.Worst.Status.IsAccepted() {
		lines = append(lines, field("Worst test", fmt.Sprintf("#%s %s (%d ms)", s.Worst.ID, s.Worst.Status.Short(), s.Worst.TimeMs)))
	}
	if strings.TrimSpace(resp.CompileLog) != "" {
		lines = append(lines, "", labelStyle.Render("Compile log:"), resp.CompileLog)
	}

	tests := resp.Tests
	if failingOnly {
		tests = s.FailingTests
	}
	if len(tests) > 0 {
		t := newTable("Test", "Status", "Time", "Memory")
		for _, tr := range tests {
			t.Row(tr.ID, Verdict(tr.Status), fmt.Sprintf("%d ms", tr.TimeMs), memory(tr.MemoryKb))
		}
		lines = append(lines, "", t.String())
	}
	return strings.Join(lines, "\n")
}

// Transcript is the plain text run log handed to the analyzer as console
// output. It carries no styling.
func Transcript(resp types.EvaluationResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall: %s\n", resp.OverallStatus)
	for _, tr := range resp.Tests {
		fmt.Fprintf(&b, "Test %s: %s (%d ms)\n", tr.ID, tr.Status, tr.TimeMs)
		if log := strings.TrimSpace(tr.RuntimeLog); log != "" {
			fmt.Fprintf(&b, "  %s\n", log)
		}
	}
	return b.String()
}

func Analysis(res types.AnalysisResult) string {
	if !res.Success {
		return fmt.Sprintf("%s %s", Verdict("Failed"), res.Error)
	}
	lines := []string{
		field("Complexity", res.Complexity),
		field("Algorithm", res.AlgorithmType),
		field("Nested loops", fmt.Sprintf("%d", res.Details.NestedLoops)),
		field("Recursive", fmt.Sprintf("%t", res.Details.IsRecursive)),
	}
	if res.Details.AverageRatio != 0 {
		lines = append(lines, field("Average ratio", fmt.Sprintf("%.2f", res.Details.AverageRatio)))
	}
	if res.Explanation != "" {
		lines = append(lines, "", res.Explanation)
	}
	if len(res.Suggestions) > 0 {
		lines = append(lines, "", labelStyle.Render("Suggestions:"))
		for _, s := range res.Suggestions {
			lines = append(lines, "  - "+s)
		}
	}
	return strings.Join(lines, "\n")
}

func JournalEntries(entries []types.JournalEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No journal entries.")
	}
	t := newTable("ID", "When", "Kind", "Problem", "Result")
	for _, e := range entries {
		t.Row(e.ID.String(), e.CreatedAt.Local().Format("2006-01-02 15:04"), string(e.Kind), e.ProblemID, entryResult(e))
	}
	return t.String()
}

func Reports(objects []storage.ObjectInfo) string {
	if len(objects) == 0 {
		return mutedStyle.Render("No archived reports.")
	}
	t := newTable("Key", "Stored", "Size")
	for _, o := range objects {
		t.Row(o.Key, o.LastModified.Local().Format("2006-01-02 15:04"), fmt.Sprintf("%d B", o.Size))
	}
	return t.String()
}

func JournalEntry(e types.JournalEntry) string {
	lines := []string{
		field("ID", e.ID.String()),
		field("When", e.CreatedAt.Local().Format("2006-01-02 15:04:05")),
		field("Kind", string(e.Kind)),
		field("Problem", e.ProblemID),
		field("Result", entryResult(e)),
		field("Source SHA-256", e.SourceSHA256),
	}
	if e.Kind == types.EntryEvaluation {
		lines = append(lines,
			field("Language", e.Language),
			field("Max time", fmt.Sprintf("%d ms", e.MaxTimeMs)),
			field("Max memory", fmt.Sprintf("%d KB", e.MaxMemoryKb)),
		)
		if len(e.FailingTests) > 0 {
			lines = append(lines, field("Failing tests", strings.Join(e.FailingTests, ", ")))
		}
	}
	if e.ReportKey != "" {
		lines = append(lines, field("Report", e.ReportKey))
	}
	return strings.Join(lines, "\n")
}

func entryResult(e types.JournalEntry) string {
	switch e.Kind {
	case types.EntryAnalysis:
		if !e.AnalysisSuccess {
			return "failed: " + e.AnalysisError
		}
		return e.Complexity
	default:
		return fmt.Sprintf("%s %d/%d", e.Verdict, e.Passed, e.Total)
	}
}

func memory(kb *int) string {
	if kb == nil {
		return "-"
	}
	return fmt.Sprintf("%d KB", *kb)
}
