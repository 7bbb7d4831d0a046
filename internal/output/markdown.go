package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/avelar/critique/internal/analysis"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analysis.Report) error {
	fmt.Fprintf(w, "## Critique Code Review: `%s`\n\n", report.Filename)

	if report.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", report.Summary)
	}

	// Summary table
	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| High     | %d    |\n", report.HighSeverityIssues)
	fmt.Fprintf(w, "| Medium   | %d    |\n", report.MediumSeverityIssues)
	fmt.Fprintf(w, "| Low      | %d    |\n", report.LowSeverityIssues)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", report.TotalIssues)

	if report.TotalIssues == 0 && len(report.Recommendations) == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	// Collapsible sections by severity
	grouped := groupBySeverity(report.Issues)
	for _, sev := range []analysis.Severity{analysis.SeverityHigh, analysis.SeverityMedium, analysis.SeverityLow} {
		issues := grouped[sev]
		if len(issues) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n", severityIcon(sev), label, len(issues))

		sort.Slice(issues, func(i, j int) bool {
			return issues[i].Line < issues[j].Line
		})

		for _, issue := range issues {
			fmt.Fprintf(w, "### Line %d: %s\n\n", issue.Line, issue.Message)
			fmt.Fprintf(w, "**%s** | Confidence: %.0f%%\n\n", issue.Type, issue.Confidence*100)
			if issue.CodeSnippet != "" {
				fmt.Fprintf(w, "```%s\n%s\n```\n\n", report.Language, issue.CodeSnippet)
			}
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "**Suggestion:**\n\n> %s\n\n", strings.ReplaceAll(issue.Suggestion, "\n", "\n> "))
			}
			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>Recommendations (%d)</summary>\n\n", len(report.Recommendations))
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "- **%s** (impact: %s, effort: %s): %s\n", rec.Area, rec.Impact, rec.Effort, rec.Message)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	fmt.Fprintf(w, "*Analyzed %d chunk(s) in %.1fs, confidence %.0f%%*\n",
		report.ChunksAnalyzed, report.ProcessingTime, report.Confidence*100)

	return nil
}
