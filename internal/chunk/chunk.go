package chunk

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMaxTokens is the per-chunk token budget.
	DefaultMaxTokens = 3000
	// minBoundaryChars is the minimum accumulated size before a boundary
	// line is allowed to close the current chunk.
	minBoundaryChars = 100
	// fallbackLines is the chunk size for languages without a boundary
	// detector.
	fallbackLines = 50
)

// Chunk is a contiguous line range of a source file. Immutable once created.
type Chunk struct {
	Content   string
	StartLine int
	EndLine   int
	Context   string
	Language  string
}

// EstimateTokens is the default token-count heuristic: roughly one token per
// four characters.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Splitter divides source text into chunks that fit a token budget.
type Splitter struct {
	// MaxTokens is the per-chunk budget; zero means DefaultMaxTokens.
	MaxTokens int
	// Estimate counts tokens; nil means EstimateTokens.
	Estimate func(string) int
}

// NewSplitter returns a Splitter with the default budget and estimator.
func NewSplitter() *Splitter {
	return &Splitter{MaxTokens: DefaultMaxTokens, Estimate: EstimateTokens}
}

func (s *Splitter) budget() int {
	if s.MaxTokens > 0 {
		return s.MaxTokens
	}
	return DefaultMaxTokens
}

func (s *Splitter) estimate(text string) int {
	if s.Estimate != nil {
		return s.Estimate(text)
	}
	return EstimateTokens(text)
}

// Split divides content into chunks. The result is never empty, chunks are
// ordered by start line, and consecutive chunks are contiguous: chunk i+1
// starts on the line after chunk i ends.
func (s *Splitter) Split(content, language string) []Chunk {
	lines := splitLines(content)

	if s.estimate(content) <= s.budget() {
		return []Chunk{{
			Content:   content,
			StartLine: 1,
			EndLine:   max(1, len(lines)),
			Context:   "Complete file",
			Language:  language,
		}}
	}

	canonical, boundary := detectorFor(language)
	if boundary == nil {
		return s.splitByLines(lines, language)
	}
	return s.splitByBoundaries(lines, canonical, boundary)
}

// splitByBoundaries accumulates lines into the current chunk, flushing when
// a declaration boundary follows a substantial block or when the token
// budget is exceeded mid-block.
func (s *Splitter) splitByBoundaries(lines []string, language string, boundary func(string) bool) []Chunk {
	var chunks []Chunk
	var current []string
	start := 1

	for i, line := range lines {
		n := i + 1

		if boundary(line) && len(current) > 0 && len(strings.Join(current, "\n")) > minBoundaryChars {
			chunks = append(chunks, Chunk{
				Content:   strings.Join(current, "\n"),
				StartLine: start,
				EndLine:   n - 1,
				Context:   fmt.Sprintf("Code block ending before line %d", n),
				Language:  language,
			})
			current = []string{line}
			start = n
			continue
		}

		current = append(current, line)

		// Budget exceeded before any boundary: split here, keeping the
		// current line as the start of the next chunk.
		if len(current) > 1 && s.estimate(strings.Join(current, "\n")) > s.budget() {
			chunks = append(chunks, Chunk{
				Content:   strings.Join(current[:len(current)-1], "\n"),
				StartLine: start,
				EndLine:   n - 1,
				Context:   fmt.Sprintf("Code block split at line %d", n),
				Language:  language,
			})
			current = []string{line}
			start = n
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{
			Content:   strings.Join(current, "\n"),
			StartLine: start,
			EndLine:   len(lines),
			Context:   "Final code block",
			Language:  language,
		})
	}

	return chunks
}

func (s *Splitter) splitByLines(lines []string, language string) []Chunk {
	var chunks []Chunk
	for i := 0; i < len(lines); i += fallbackLines {
		end := min(i+fallbackLines, len(lines))
		chunks = append(chunks, Chunk{
			Content:   strings.Join(lines[i:end], "\n"),
			StartLine: i + 1,
			EndLine:   end,
			Context:   fmt.Sprintf("Lines %d-%d", i+1, end),
			Language:  language,
		})
	}
	return chunks
}

var (
	jsBoundaryRe = regexp.MustCompile(`^\s*((async\s+)?function\b|class\b|(const|let|var)\s+\w+\s*=)`)
	jsMethodRe   = regexp.MustCompile(`^\s*\w+\s*\([^)]*\)\s*\{`)
	javaTypeRe   = regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?(class|interface)\b`)
	javaMethodRe = regexp.MustCompile(`^\s*(public|private|protected)\s+.*\s+\w+\s*\([^)]*\)\s*\{?`)
	goMethodRe   = regexp.MustCompile(`^\s*func\s+\([^)]*\)\s+\w+`)
)

// detectorFor maps a language tag to its canonical name and boundary
// detector. Languages without a detector get a nil func and fall back to
// line-count chunking.
func detectorFor(language string) (string, func(string) bool) {
	switch strings.ToLower(language) {
	case "python", "py":
		return "python", pythonBoundary
	case "javascript", "js", "typescript", "ts":
		return "javascript", jsBoundary
	case "java":
		return "java", javaBoundary
	case "go", "golang":
		return "go", goBoundary
	default:
		return language, nil
	}
}

func pythonBoundary(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "def ") ||
		strings.HasPrefix(t, "class ") ||
		strings.HasPrefix(t, "async def ")
}

func jsBoundary(line string) bool {
	return jsBoundaryRe.MatchString(line) || jsMethodRe.MatchString(line)
}

func javaBoundary(line string) bool {
	return javaTypeRe.MatchString(line) || javaMethodRe.MatchString(line)
}

func goBoundary(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "func ") ||
		strings.HasPrefix(t, "type ") ||
		goMethodRe.MatchString(line)
}

// splitLines splits on newlines without producing a trailing empty line for
// newline-terminated content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
