package analysis

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func testAggregator() *Aggregator {
	n := 0
	return &Aggregator{NewReportID: func() string {
		n++
		return "report-1"
	}}
}

func issueFixture(typ IssueType, sev Severity, line int, msg string) Issue {
	i := Issue{
		Type:       typ,
		Severity:   sev,
		Line:       line,
		Message:    msg,
		Suggestion: "fix it",
		Confidence: 0.9,
	}
	i.ID = issueID(i)
	return i
}

func TestAggregate_Empty(t *testing.T) {
	a := testAggregator()
	report := a.Aggregate(nil, "main.py", "python", 100)

	if report.Summary != "No analysis results to aggregate" {
		t.Errorf("Summary = %q", report.Summary)
	}
	if report.ReportID != "report-1" {
		t.Errorf("ReportID = %q", report.ReportID)
	}
	if report.Filename != "main.py" || report.Language != "python" || report.FileSize != 100 {
		t.Errorf("metadata = %q/%q/%d", report.Filename, report.Language, report.FileSize)
	}
	if report.TotalIssues != 0 || len(report.Issues) != 0 || len(report.Recommendations) != 0 {
		t.Error("empty aggregation should produce no issues or recommendations")
	}
}

func TestAggregate_SingleResultPassthrough(t *testing.T) {
	result := Result{
		Summary: "One problem found.",
		Issues: []Issue{
			issueFixture(IssueSecurity, SeverityHigh, 3, "SQL injection"),
			issueFixture(IssueStyle, SeverityLow, 9, "Unused import"),
		},
		Recommendations: []Recommendation{{Area: AreaTesting, Message: "Add tests"}},
		Confidence:      0.85,
		ProcessingTime:  1.2,
	}

	a := testAggregator()
	report := a.Aggregate([]Result{result}, "main.py", "python", 100)

	if report.Summary != "One problem found." {
		t.Errorf("Summary = %q, want passthrough", report.Summary)
	}
	if report.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", report.Confidence)
	}
	if report.ProcessingTime != 1.2 {
		t.Errorf("ProcessingTime = %v, want 1.2", report.ProcessingTime)
	}
	if report.ChunksAnalyzed != 1 {
		t.Errorf("ChunksAnalyzed = %d, want 1", report.ChunksAnalyzed)
	}
	if report.TotalIssues != 2 || report.HighSeverityIssues != 1 || report.LowSeverityIssues != 1 {
		t.Errorf("counts = %d total, %d high, %d low", report.TotalIssues, report.HighSeverityIssues, report.LowSeverityIssues)
	}
}

func TestAggregate_DeduplicatesAcrossChunks(t *testing.T) {
	shared := issueFixture(IssueSecurity, SeverityHigh, 3, "SQL injection via string formatting")
	r1 := Result{Summary: "a", Issues: []Issue{shared}, Confidence: 0.8, ProcessingTime: 1}
	r2 := Result{Summary: "b", Issues: []Issue{shared}, Confidence: 0.6, ProcessingTime: 2}

	a := testAggregator()
	report := a.Aggregate([]Result{r1, r2}, "main.py", "python", 100)

	if report.TotalIssues != 1 {
		t.Fatalf("TotalIssues = %d, want 1 after dedup", report.TotalIssues)
	}
	if report.HighSeverityIssues != 1 {
		t.Errorf("HighSeverityIssues = %d, want 1", report.HighSeverityIssues)
	}
	if report.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want mean 0.7", report.Confidence)
	}
	if report.ProcessingTime != 3 {
		t.Errorf("ProcessingTime = %v, want sum 3", report.ProcessingTime)
	}
	if report.Summary != "Analysis of 2 code chunks completed. Found 1 issue: 1 high severity." {
		t.Errorf("Summary = %q", report.Summary)
	}
}

func TestAggregate_DedupCollapsesNearIdenticalMessages(t *testing.T) {
	a := issueFixture(IssueBug, SeverityMedium, 5, "Off by  one error")
	b := issueFixture(IssueBug, SeverityMedium, 40, "off by one ERROR")
	agg := testAggregator()
	report := agg.Aggregate([]Result{
		{Summary: "a", Issues: []Issue{a}},
		{Summary: "b", Issues: []Issue{b}},
	}, "f.go", "go", 10)

	if report.TotalIssues != 1 {
		t.Fatalf("TotalIssues = %d, want 1", report.TotalIssues)
	}
	// first seen wins
	if report.Issues[0].Line != 5 {
		t.Errorf("Line = %d, want 5", report.Issues[0].Line)
	}
}

func TestAggregate_DedupIdempotent(t *testing.T) {
	result := Result{
		Summary: "s",
		Issues: []Issue{
			issueFixture(IssueSecurity, SeverityHigh, 1, "first"),
			issueFixture(IssueBug, SeverityLow, 2, "second"),
		},
		Recommendations: []Recommendation{{Area: AreaTesting, Message: "Add tests"}},
		Confidence:      0.8,
	}

	a := &Aggregator{NewReportID: func() string { return "fixed" }}
	once := a.Aggregate([]Result{result, result}, "f.go", "go", 10)
	twice := a.Aggregate([]Result{result, result, result}, "f.go", "go", 10)

	if !reflect.DeepEqual(once.Issues, twice.Issues) {
		t.Errorf("issue sets differ:\n%v\n%v", once.Issues, twice.Issues)
	}
	if !reflect.DeepEqual(once.Recommendations, twice.Recommendations) {
		t.Errorf("recommendation sets differ")
	}
	if len(once.Issues) != 2 || len(once.Recommendations) != 1 {
		t.Errorf("got %d issues, %d recommendations", len(once.Issues), len(once.Recommendations))
	}
}

func TestAggregate_CountsSumToTotal(t *testing.T) {
	results := []Result{
		{Summary: "a", Issues: []Issue{
			issueFixture(IssueSecurity, SeverityHigh, 1, "one"),
			issueFixture(IssueBug, SeverityMedium, 2, "two"),
		}},
		{Summary: "b", Issues: []Issue{
			issueFixture(IssueStyle, SeverityLow, 3, "three"),
			issueFixture(IssueStyle, SeverityLow, 4, "four"),
		}},
	}

	a := testAggregator()
	report := a.Aggregate(results, "f.go", "go", 10)

	sum := report.HighSeverityIssues + report.MediumSeverityIssues + report.LowSeverityIssues
	if report.TotalIssues != sum {
		t.Errorf("TotalIssues = %d, bucket sum = %d", report.TotalIssues, sum)
	}
	if report.TotalIssues != 4 {
		t.Errorf("TotalIssues = %d, want 4", report.TotalIssues)
	}
}

func TestSynthesizeSummary(t *testing.T) {
	tests := []struct {
		name                           string
		chunks, issues, high, med, low int
		recs                           int
		want                           string
	}{
		{
			name: "no issues", chunks: 1,
			want: "Analysis of 1 code chunk completed. No issues found.",
		},
		{
			name: "mixed severities", chunks: 3, issues: 4, high: 1, med: 2, low: 1, recs: 2,
			want: "Analysis of 3 code chunks completed. Found 4 issues: 1 high, 2 medium, 1 low severity. 2 improvement recommendations provided.",
		},
		{
			name: "single issue single rec", chunks: 2, issues: 1, high: 1, recs: 1,
			want: "Analysis of 2 code chunks completed. Found 1 issue: 1 high severity. 1 improvement recommendation provided.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := synthesizeSummary(tt.chunks, tt.issues, tt.high, tt.med, tt.low, tt.recs)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Hello   World  ", "hello world"},
		{"UPPER", "upper"},
		{"tab\tand\nnewline", "tab and newline"},
	}
	for _, tt := range tests {
		if got := normalizeMessage(tt.input); got != tt.want {
			t.Errorf("normalizeMessage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// The 50th rune is multi-byte, so a byte-wise cut would split it.
	msg := strings.Repeat("x", 49) + "éz"
	got := normalizeMessage(msg)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated message is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("x", 49) + "é"; got != want {
		t.Errorf("normalizeMessage = %q, want %q", got, want)
	}
}

func TestNewAggregator_UniqueReportIDs(t *testing.T) {
	a := NewAggregator()
	r1 := a.Aggregate(nil, "f.go", "go", 0)
	r2 := a.Aggregate(nil, "f.go", "go", 0)
	if r1.ReportID == "" || r1.ReportID == r2.ReportID {
		t.Errorf("report IDs should be unique and non-empty: %q, %q", r1.ReportID, r2.ReportID)
	}
}
