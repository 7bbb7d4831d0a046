package redact

import (
	"regexp"
	"sort"
	"strings"
)

// Finding describes one redacted span. The matched value itself is not
// retained.
type Finding struct {
	Category    string  `json:"category"`
	Line        int     `json:"line"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Placeholder string  `json:"placeholder"`
	Confidence  float64 `json:"confidence"`
}

type pattern struct {
	category    string
	re          *regexp.Regexp
	placeholder string
	confidence  float64
}

// patterns is ordered: earlier entries are the more specific shapes. On
// identical spans the higher-confidence finding wins regardless of order.
var patterns = []pattern{
	{"api_key", regexp.MustCompile(`(?i)api[_-]?key["'\s]*[:=]["'\s]*[a-zA-Z0-9_\-]{20,}`), "[API_KEY_REDACTED]", 0.9},
	{"api_key", regexp.MustCompile(`(?i)\bkey["'\s]*[:=]["'\s]*[a-zA-Z0-9_\-]{32,}`), "[API_KEY_REDACTED]", 0.7},
	{"secret_key", regexp.MustCompile(`(?i)secret[_-]?key["'\s]*[:=]["'\s]*[a-zA-Z0-9_\-+/=]{20,}`), "[SECRET_KEY_REDACTED]", 0.9},
	{"password", regexp.MustCompile(`(?i)(password|passwd)["'\s]*[:=]["'\s]*[^\s"']{8,}`), "[PASSWORD_REDACTED]", 0.8},
	{"password", regexp.MustCompile(`(?i)\bpwd["'\s]*[:=]["'\s]*[^\s"']{8,}`), "[PASSWORD_REDACTED]", 0.7},
	{"token", regexp.MustCompile(`(?i)access[_-]?token["'\s]*[:=]["'\s]*[a-zA-Z0-9_\-+/=]{20,}`), "[ACCESS_TOKEN_REDACTED]", 0.9},
	{"token", regexp.MustCompile(`(?i)bearer["'\s]*[:=\s]["'\s]*[a-zA-Z0-9._\-+/=]{20,}`), "[BEARER_TOKEN_REDACTED]", 0.9},
	{"token", regexp.MustCompile(`(?i)\btoken["'\s]*[:=]["'\s]*[a-zA-Z0-9_\-+/=]{20,}`), "[TOKEN_REDACTED]", 0.8},
	{"jwt", regexp.MustCompile(`eyJ[a-zA-Z0-9_\-+/=]+\.eyJ[a-zA-Z0-9_\-+/=]+\.[a-zA-Z0-9_\-+/=]+`), "[JWT_TOKEN_REDACTED]", 0.95},
	{"aws_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "[AWS_ACCESS_KEY_REDACTED]", 0.95},
	{"aws_secret", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key["'\s]*[:=]["'\s]*[a-zA-Z0-9+/]{40}`), "[AWS_SECRET_KEY_REDACTED]", 0.9},
	{"github_token", regexp.MustCompile(`gh[pou]_[a-zA-Z0-9]{36}`), "[GITHUB_TOKEN_REDACTED]", 0.95},
	{"private_key", regexp.MustCompile(`(?s)-----BEGIN (RSA |EC )?PRIVATE KEY-----.*?-----END (RSA |EC )?PRIVATE KEY-----`), "[PRIVATE_KEY_REDACTED]", 0.99},
	{"database_url", regexp.MustCompile(`(?i)(database|db)[_-]?url["'\s]*[:=]["'\s]*[a-zA-Z]+://[^\s"']+`), "[DATABASE_URL_REDACTED]", 0.8},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[EMAIL_REDACTED]", 0.6},
	{"ip_address", regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`), "[IP_ADDRESS_REDACTED]", 0.5},
}

// ScanAndRedact scans content for secrets and returns the redacted text
// along with the findings, sorted by position. The input is never mutated.
func ScanAndRedact(content string) (string, []Finding) {
	findings := Detect(content)
	return Apply(content, findings), findings
}

// Detect returns findings for all probable secrets in content, with
// same-span duplicates collapsed to the highest-confidence category.
func Detect(content string) []Finding {
	lines := strings.Split(content, "\n")
	bySpan := make(map[[2]int]Finding)

	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(content, -1) {
			start, end := loc[0], loc[1]
			line := strings.Count(content[:start], "\n") + 1

			var lineContent string
			if line <= len(lines) {
				lineContent = lines[line-1]
			}
			if likelyPlaceholder(lineContent, content[start:end]) {
				continue
			}

			f := Finding{
				Category:    p.category,
				Line:        line,
				Start:       start,
				End:         end,
				Placeholder: p.placeholder,
				Confidence:  p.confidence,
			}
			span := [2]int{start, end}
			if existing, ok := bySpan[span]; !ok || f.Confidence > existing.Confidence {
				bySpan[span] = f
			}
		}
	}

	findings := make([]Finding, 0, len(bySpan))
	for _, f := range bySpan {
		findings = append(findings, f)
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].Start < findings[j].Start })
	return findings
}

// Apply substitutes each finding's span with its placeholder, working in
// reverse position order so earlier offsets stay valid.
func Apply(content string, findings []Finding) string {
	if len(findings) == 0 {
		return content
	}

	ordered := make([]Finding, len(findings))
	copy(ordered, findings)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	redacted := content
	for _, f := range ordered {
		if f.Start < 0 || f.End > len(redacted) || f.Start > f.End {
			continue
		}
		redacted = redacted[:f.Start] + f.Placeholder + redacted[f.End:]
	}
	return redacted
}

var exampleIndicators = []string{
	"example", "sample", "test", "demo", "placeholder", "your_",
	"replace", "change", "todo", "fixme", "xxx", "yyy", "zzz",
}

var dummyLiterals = []string{"test123", "password123", "secret123", "key123"}

// likelyPlaceholder reports whether a match is probably example or
// placeholder material rather than a live credential.
func likelyPlaceholder(lineContent, value string) bool {
	lineLower := strings.ToLower(lineContent)
	valueLower := strings.ToLower(value)

	for _, word := range exampleIndicators {
		if strings.Contains(lineLower, word) || strings.Contains(valueLower, word) {
			return true
		}
	}

	if len(value) > 10 && distinctChars(value) <= 3 {
		return true
	}

	for _, dummy := range dummyLiterals {
		if strings.Contains(valueLower, dummy) {
			return true
		}
	}

	return false
}

func distinctChars(s string) int {
	seen := make(map[rune]bool)
	for _, r := range s {
		seen[r] = true
	}
	return len(seen)
}
