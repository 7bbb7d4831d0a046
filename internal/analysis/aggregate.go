package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Aggregator merges chunk-level Results into a single file-level Report.
type Aggregator struct {
	// NewReportID generates report identifiers. Defaults to random UUIDs;
	// injectable for deterministic tests.
	NewReportID func() string
}

// NewAggregator returns an Aggregator with UUID report IDs.
func NewAggregator() *Aggregator {
	return &Aggregator{NewReportID: uuid.NewString}
}

// Aggregate combines results into one Report. Issues and recommendations
// are deduplicated by content signature with the first-seen entry winning;
// severity counts are recomputed from the deduplicated set so their sum
// always equals TotalIssues. Confidence is the mean of the per-chunk
// confidences before deduplication; processing time is the sum.
func (a *Aggregator) Aggregate(results []Result, filename, language string, fileSize int) Report {
	report := Report{
		ReportID:        a.NewReportID(),
		Filename:        filename,
		Language:        language,
		FileSize:        fileSize,
		ChunksAnalyzed:  len(results),
		Issues:          []Issue{},
		Recommendations: []Recommendation{},
	}

	if len(results) == 0 {
		report.Summary = "No analysis results to aggregate"
		return report
	}

	if len(results) == 1 {
		r := results[0]
		report.Summary = r.Summary
		report.Issues = append(report.Issues, r.Issues...)
		report.Recommendations = append(report.Recommendations, r.Recommendations...)
		report.Confidence = r.Confidence
		report.ProcessingTime = r.ProcessingTime
		report.fillCounts()
		return report
	}

	var allIssues []Issue
	var allRecs []Recommendation
	var totalConfidence, totalTime float64
	for _, r := range results {
		allIssues = append(allIssues, r.Issues...)
		allRecs = append(allRecs, r.Recommendations...)
		totalConfidence += r.Confidence
		totalTime += r.ProcessingTime
	}

	report.Issues = append(report.Issues, dedupeIssues(allIssues)...)
	report.Recommendations = append(report.Recommendations, dedupeRecommendations(allRecs)...)
	report.Confidence = totalConfidence / float64(len(results))
	report.ProcessingTime = totalTime
	report.fillCounts()
	report.Summary = synthesizeSummary(
		len(results),
		report.TotalIssues,
		report.HighSeverityIssues,
		report.MediumSeverityIssues,
		report.LowSeverityIssues,
		len(report.Recommendations),
	)
	return report
}

// fillCounts recomputes the severity counts from the issue set. TotalIssues
// is always the sum of the three buckets, never stored independently.
func (r *Report) fillCounts() {
	var high, medium, low int
	for _, i := range r.Issues {
		switch i.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	r.HighSeverityIssues = high
	r.MediumSeverityIssues = medium
	r.LowSeverityIssues = low
	r.TotalIssues = high + medium + low
}

func dedupeIssues(issues []Issue) []Issue {
	seen := make(map[string]bool)
	unique := make([]Issue, 0, len(issues))
	for _, i := range issues {
		sig := issueSignature(i)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		unique = append(unique, i)
	}
	return unique
}

func dedupeRecommendations(recs []Recommendation) []Recommendation {
	seen := make(map[string]bool)
	unique := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		sig := recommendationSignature(r)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		unique = append(unique, r)
	}
	return unique
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func issueSignature(i Issue) string {
	return fmt.Sprintf("%s:%s:%s", i.Type, i.Severity, normalizeMessage(i.Message))
}

func recommendationSignature(r Recommendation) string {
	return fmt.Sprintf("%s:%s", r.Area, normalizeMessage(r.Message))
}

// normalizeMessage lower-cases, collapses internal whitespace, and keeps
// only the first 50 characters so near-identical phrasings collapse.
func normalizeMessage(msg string) string {
	normalized := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(msg)), " ")
	if runes := []rune(normalized); len(runes) > 50 {
		normalized = string(runes[:50])
	}
	return normalized
}

func synthesizeSummary(chunks, issues, high, medium, low, recs int) string {
	parts := []string{
		fmt.Sprintf("Analysis of %d code chunk%s completed.", chunks, plural(chunks)),
	}

	if issues > 0 {
		var severities []string
		if high > 0 {
			severities = append(severities, fmt.Sprintf("%d high", high))
		}
		if medium > 0 {
			severities = append(severities, fmt.Sprintf("%d medium", medium))
		}
		if low > 0 {
			severities = append(severities, fmt.Sprintf("%d low", low))
		}
		parts = append(parts, fmt.Sprintf("Found %d issue%s: %s severity.",
			issues, plural(issues), strings.Join(severities, ", ")))
	} else {
		parts = append(parts, "No issues found.")
	}

	if recs > 0 {
		parts = append(parts, fmt.Sprintf("%d improvement recommendation%s provided.", recs, plural(recs)))
	}

	return strings.Join(parts, " ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
