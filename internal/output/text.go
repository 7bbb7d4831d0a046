package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/avelar/critique/internal/analysis"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Critique Code Review — %s\n", report.Filename)
	ew.printf("Language: %s | Chunks: %d | Confidence: %.0f%%\n",
		report.Language, report.ChunksAnalyzed, report.Confidence*100)
	ew.println(strings.Repeat("─", 60))

	if report.Summary != "" {
		for _, line := range wrapText(report.Summary, 70) {
			ew.printf("%s\n", line)
		}
		ew.println(strings.Repeat("─", 60))
	}

	ew.printf("Issues: %d total", report.TotalIssues)
	if report.TotalIssues > 0 {
		ew.printf(" (%d high, %d medium, %d low)",
			report.HighSeverityIssues,
			report.MediumSeverityIssues,
			report.LowSeverityIssues,
		)
	}
	ew.println("")

	if report.TotalIssues == 0 && len(report.Recommendations) == 0 {
		ew.println("\nNo issues found. Looks good!")
		return ew.err
	}

	// Group by severity (high first)
	grouped := groupBySeverity(report.Issues)
	for _, sev := range []analysis.Severity{analysis.SeverityHigh, analysis.SeverityMedium, analysis.SeverityLow} {
		issues := grouped[sev]
		if len(issues) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		ew.printf("\n%s %s\n", severityIcon(sev), label)
		ew.println(strings.Repeat("─", 40))

		sort.Slice(issues, func(i, j int) bool {
			return issues[i].Line < issues[j].Line
		})

		for _, issue := range issues {
			ew.printf("\n  line %d  [%s]\n", issue.Line, issue.Type)
			for _, line := range wrapText(issue.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if issue.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(issue.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	if len(report.Recommendations) > 0 {
		ew.printf("\nRecommendations (%d)\n", len(report.Recommendations))
		ew.println(strings.Repeat("─", 40))
		for _, rec := range report.Recommendations {
			ew.printf("\n  [%s] impact: %s, effort: %s\n", rec.Area, rec.Impact, rec.Effort)
			for _, line := range wrapText(rec.Message, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %.1fs\n", report.ProcessingTime)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func groupBySeverity(issues []analysis.Issue) map[analysis.Severity][]analysis.Issue {
	m := make(map[analysis.Severity][]analysis.Issue)
	for _, issue := range issues {
		m[issue.Severity] = append(m[issue.Severity], issue)
	}
	return m
}

func severityIcon(s analysis.Severity) string {
	switch s {
	case analysis.SeverityHigh:
		return "[!!]"
	case analysis.SeverityMedium:
		return "[!]"
	case analysis.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
