package analysis

// Severity is the three-level priority assigned to a detected issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// IssueType classifies what kind of problem an issue describes.
type IssueType string

const (
	IssueSecurity        IssueType = "security"
	IssueBug             IssueType = "bug"
	IssuePerformance     IssueType = "performance"
	IssueStyle           IssueType = "style"
	IssueMaintainability IssueType = "maintainability"
	IssueUnknown         IssueType = "unknown"
)

// Area classifies what part of the code a recommendation targets.
type Area string

const (
	AreaReadability Area = "readability"
	AreaModularity  Area = "modularity"
	AreaPerformance Area = "performance"
	AreaSecurity    Area = "security"
	AreaTesting     Area = "testing"
	AreaGeneral     Area = "general"
)

// Level grades the impact or effort of a recommendation.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Issue is a single validated problem found in a chunk. Issues with an empty
// message or suggestion are never constructed; the Parser drops them.
type Issue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Line        int       `json:"line"`
	Message     string    `json:"message"`
	Suggestion  string    `json:"suggestion"`
	CodeSnippet string    `json:"codeSnippet,omitempty"`
	Confidence  float64   `json:"confidence"`
}

// Recommendation is a validated improvement suggestion.
type Recommendation struct {
	ID       string   `json:"id"`
	Area     Area     `json:"area"`
	Message  string   `json:"message"`
	Impact   Level    `json:"impact"`
	Effort   Level    `json:"effort"`
	Examples []string `json:"examples,omitempty"`
}

// Result is the normalized analysis of a single chunk.
type Result struct {
	Summary         string           `json:"summary"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	Confidence      float64          `json:"confidence"`
	ProcessingTime  float64          `json:"processingTime"`
}

// Report is the file-level aggregation of one or more chunk Results.
type Report struct {
	ReportID             string           `json:"reportId"`
	Filename             string           `json:"filename"`
	Language             string           `json:"language"`
	FileSize             int              `json:"fileSize"`
	ChunksAnalyzed       int              `json:"chunksAnalyzed"`
	Summary              string           `json:"summary"`
	Issues               []Issue          `json:"issues"`
	Recommendations      []Recommendation `json:"recommendations"`
	TotalIssues          int              `json:"totalIssues"`
	HighSeverityIssues   int              `json:"highSeverityIssues"`
	MediumSeverityIssues int              `json:"mediumSeverityIssues"`
	LowSeverityIssues    int              `json:"lowSeverityIssues"`
	Confidence           float64          `json:"confidence"`
	ProcessingTime       float64          `json:"processingTime"`
}
