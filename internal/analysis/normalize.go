package analysis

import "strings"

// Synonym tables mapping the strings LLMs actually emit onto the closed enum
// sets. Unknown strings fall back to a defined default rather than being
// rejected. Kept as data so the mappings are trivially testable.

var issueTypeSynonyms = map[string]IssueType{
	"security":        IssueSecurity,
	"vulnerability":   IssueSecurity,
	"bug":             IssueBug,
	"error":           IssueBug,
	"defect":          IssueBug,
	"performance":     IssuePerformance,
	"optimization":    IssuePerformance,
	"efficiency":      IssuePerformance,
	"style":           IssueStyle,
	"readability":     IssueStyle,
	"formatting":      IssueStyle,
	"maintainability": IssueMaintainability,
	"maintenance":     IssueMaintainability,
}

var severitySynonyms = map[string]Severity{
	"high":     SeverityHigh,
	"critical": SeverityHigh,
	"major":    SeverityHigh,
	"medium":   SeverityMedium,
	"moderate": SeverityMedium,
	"normal":   SeverityMedium,
	"low":      SeverityLow,
	"minor":    SeverityLow,
	"trivial":  SeverityLow,
}

var areaSynonyms = map[string]Area{
	"readability":   AreaReadability,
	"style":         AreaReadability,
	"formatting":    AreaReadability,
	"documentation": AreaReadability,
	"modularity":    AreaModularity,
	"structure":     AreaModularity,
	"organization":  AreaModularity,
	"performance":   AreaPerformance,
	"optimization":  AreaPerformance,
	"efficiency":    AreaPerformance,
	"security":      AreaSecurity,
	"testing":       AreaTesting,
	"test":          AreaTesting,
	"tests":         AreaTesting,
	"general":       AreaGeneral,
}

var levelSynonyms = map[string]Level{
	"high":        LevelHigh,
	"large":       LevelHigh,
	"significant": LevelHigh,
	"major":       LevelHigh,
	"medium":      LevelMedium,
	"moderate":    LevelMedium,
	"normal":      LevelMedium,
	"low":         LevelLow,
	"small":       LevelLow,
	"minor":       LevelLow,
	"trivial":     LevelLow,
}

// NormalizeIssueType maps a raw type string to an IssueType, defaulting to
// IssueUnknown.
func NormalizeIssueType(s string) IssueType {
	if t, ok := issueTypeSynonyms[normKey(s)]; ok {
		return t
	}
	return IssueUnknown
}

// NormalizeSeverity maps a raw severity string to a Severity, defaulting to
// SeverityMedium.
func NormalizeSeverity(s string) Severity {
	if sev, ok := severitySynonyms[normKey(s)]; ok {
		return sev
	}
	return SeverityMedium
}

// NormalizeArea maps a raw area string to an Area, defaulting to AreaGeneral.
func NormalizeArea(s string) Area {
	if a, ok := areaSynonyms[normKey(s)]; ok {
		return a
	}
	return AreaGeneral
}

// NormalizeLevel maps a raw impact/effort string to a Level, defaulting to
// LevelMedium.
func NormalizeLevel(s string) Level {
	if l, ok := levelSynonyms[normKey(s)]; ok {
		return l
	}
	return LevelMedium
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
