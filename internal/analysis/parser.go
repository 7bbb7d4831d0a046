package analysis

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultConfidenceThreshold is the minimum confidence an issue needs
	// to survive parsing.
	DefaultConfidenceThreshold = 0.3
	// DefaultMaxIssues caps issues accepted per chunk.
	DefaultMaxIssues = 20
	// DefaultMaxRecommendations caps recommendations accepted per chunk.
	DefaultMaxRecommendations = 10

	// defaultIssueConfidence is assumed when the provider omits the field.
	defaultIssueConfidence = 0.8
	// recommendationConfidence stands in for recommendations, which carry
	// no confidence of their own.
	recommendationConfidence = 0.8

	fallbackSummary = "Analysis completed with parsing errors"
)

// Parser converts raw LLM text into a validated Result. The zero value is
// not usable; construct with NewParser.
type Parser struct {
	ConfidenceThreshold float64
	MaxIssues           int
	MaxRecommendations  int
}

// NewParser returns a Parser with the default caps and threshold.
func NewParser() *Parser {
	return &Parser{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		MaxIssues:           DefaultMaxIssues,
		MaxRecommendations:  DefaultMaxRecommendations,
	}
}

// rawResult mirrors the JSON schema requested from providers.
type rawResult struct {
	Summary         string              `json:"summary"`
	Issues          []rawIssue          `json:"issues"`
	Recommendations []rawRecommendation `json:"recommendations"`
}

type rawIssue struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Line        int      `json:"line"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion"`
	CodeSnippet string   `json:"code_snippet"`
	Confidence  *float64 `json:"confidence"`
}

type rawRecommendation struct {
	Area     string   `json:"area"`
	Message  string   `json:"message"`
	Impact   string   `json:"impact"`
	Effort   string   `json:"effort"`
	Examples []string `json:"examples"`
}

// Parse normalizes raw provider output into a Result. It never returns an
// error: unparseable input yields a fallback Result with confidence 0.1 and
// empty issue/recommendation lists. Identical input always yields an
// identical Result apart from the caller-supplied processingTime.
func (p *Parser) Parse(raw string, processingTime float64) Result {
	cleaned := cleanJSONResponse(raw)

	var data rawResult
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Result{
			Summary:         fallbackSummary,
			Issues:          []Issue{},
			Recommendations: []Recommendation{},
			Confidence:      0.1,
			ProcessingTime:  processingTime,
		}
	}

	issues := p.parseIssues(data.Issues)
	recs := p.parseRecommendations(data.Recommendations)

	summary := strings.TrimSpace(data.Summary)
	if summary == "" {
		summary = "Analysis completed"
	}

	return Result{
		Summary:         summary,
		Issues:          issues,
		Recommendations: recs,
		Confidence:      overallConfidence(issues, recs),
		ProcessingTime:  processingTime,
	}
}

// cleanJSONResponse strips Markdown code fences and any prose surrounding
// the JSON object body.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}

	if start := strings.Index(s, "{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndex(s, "}"); end >= 0 {
		s = s[:end+1]
	}

	return strings.TrimSpace(s)
}

func (p *Parser) parseIssues(raw []rawIssue) []Issue {
	if len(raw) > p.MaxIssues {
		raw = raw[:p.MaxIssues]
	}

	issues := make([]Issue, 0, len(raw))
	for _, r := range raw {
		confidence := defaultIssueConfidence
		if r.Confidence != nil {
			confidence = clamp01(*r.Confidence)
		}
		if confidence < p.ConfidenceThreshold {
			continue
		}

		message := strings.TrimSpace(r.Message)
		suggestion := strings.TrimSpace(r.Suggestion)
		if message == "" || suggestion == "" {
			continue
		}

		issue := Issue{
			Type:        NormalizeIssueType(r.Type),
			Severity:    NormalizeSeverity(r.Severity),
			Line:        max(0, r.Line),
			Message:     message,
			Suggestion:  suggestion,
			CodeSnippet: r.CodeSnippet,
			Confidence:  confidence,
		}
		issue.ID = issueID(issue)
		issues = append(issues, issue)
	}
	return issues
}

func (p *Parser) parseRecommendations(raw []rawRecommendation) []Recommendation {
	if len(raw) > p.MaxRecommendations {
		raw = raw[:p.MaxRecommendations]
	}

	recs := make([]Recommendation, 0, len(raw))
	for _, r := range raw {
		message := strings.TrimSpace(r.Message)
		if message == "" {
			continue
		}

		var examples []string
		for _, ex := range r.Examples {
			if ex = strings.TrimSpace(ex); ex != "" {
				examples = append(examples, ex)
			}
		}
		if len(examples) > 5 {
			examples = examples[:5]
		}

		rec := Recommendation{
			Area:     NormalizeArea(r.Area),
			Message:  message,
			Impact:   NormalizeLevel(r.Impact),
			Effort:   NormalizeLevel(r.Effort),
			Examples: examples,
		}
		rec.ID = recommendationID(rec)
		recs = append(recs, rec)
	}
	return recs
}

// overallConfidence blends issue and recommendation confidence: issues alone
// use their mean, recommendations alone use a fixed constant, both use a
// 70/30 blend favoring issues, and neither yields a neutral 0.5.
func overallConfidence(issues []Issue, recs []Recommendation) float64 {
	if len(issues) == 0 && len(recs) == 0 {
		return 0.5
	}

	var issueConfidence float64
	if len(issues) > 0 {
		for _, i := range issues {
			issueConfidence += i.Confidence
		}
		issueConfidence /= float64(len(issues))
	}

	switch {
	case len(issues) > 0 && len(recs) > 0:
		return clamp01(issueConfidence*0.7 + recommendationConfidence*0.3)
	case len(issues) > 0:
		return clamp01(issueConfidence)
	default:
		return recommendationConfidence
	}
}

// issueID derives a stable ID from issue content so identical raw input
// always parses to identical output.
func issueID(i Issue) string {
	data := fmt.Sprintf("%s:%s:%d:%s", i.Type, i.Severity, i.Line, i.Message)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

func recommendationID(r Recommendation) string {
	data := fmt.Sprintf("%s:%s", r.Area, r.Message)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
