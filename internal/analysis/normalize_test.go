package analysis

import "testing"

func TestNormalizeIssueType(t *testing.T) {
	tests := []struct {
		input string
		want  IssueType
	}{
		{"security", IssueSecurity},
		{"vulnerability", IssueSecurity},
		{"bug", IssueBug},
		{"error", IssueBug},
		{"defect", IssueBug},
		{"performance", IssuePerformance},
		{"optimization", IssuePerformance},
		{"style", IssueStyle},
		{"readability", IssueStyle},
		{"maintainability", IssueMaintainability},
		{"SECURITY", IssueSecurity},
		{"  Bug  ", IssueBug},
		{"something else", IssueUnknown},
		{"", IssueUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeIssueType(tt.input); got != tt.want {
			t.Errorf("NormalizeIssueType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"high", SeverityHigh},
		{"critical", SeverityHigh},
		{"major", SeverityHigh},
		{"medium", SeverityMedium},
		{"moderate", SeverityMedium},
		{"low", SeverityLow},
		{"minor", SeverityLow},
		{"trivial", SeverityLow},
		{"Critical", SeverityHigh},
		{"bogus", SeverityMedium},
		{"", SeverityMedium},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.input); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeArea(t *testing.T) {
	tests := []struct {
		input string
		want  Area
	}{
		{"readability", AreaReadability},
		{"style", AreaReadability},
		{"documentation", AreaReadability},
		{"modularity", AreaModularity},
		{"structure", AreaModularity},
		{"performance", AreaPerformance},
		{"security", AreaSecurity},
		{"testing", AreaTesting},
		{"test", AreaTesting},
		{"tests", AreaTesting},
		{"general", AreaGeneral},
		{"unheard of", AreaGeneral},
		{"", AreaGeneral},
	}
	for _, tt := range tests {
		if got := NormalizeArea(tt.input); got != tt.want {
			t.Errorf("NormalizeArea(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"high", LevelHigh},
		{"significant", LevelHigh},
		{"large", LevelHigh},
		{"medium", LevelMedium},
		{"low", LevelLow},
		{"small", LevelLow},
		{"whatever", LevelMedium},
		{"", LevelMedium},
	}
	for _, tt := range tests {
		if got := NormalizeLevel(tt.input); got != tt.want {
			t.Errorf("NormalizeLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
