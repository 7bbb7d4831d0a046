package chunk

import (
	"fmt"
	"strings"
	"testing"
)

func pythonSource(funcs int) string {
	var b strings.Builder
	for i := 0; i < funcs; i++ {
		fmt.Fprintf(&b, "def handler_%d(request):\n", i)
		fmt.Fprintf(&b, "    value = request.get(%q)\n", fmt.Sprintf("key_%d", i))
		b.WriteString("    if value is None:\n")
		b.WriteString("        raise ValueError(\"missing\")\n")
		b.WriteString("    return process(value)\n")
		b.WriteString("\n")
	}
	return b.String()
}

func TestSplit_SmallFileSingleChunk(t *testing.T) {
	content := "print('hi')\n"
	s := NewSplitter()
	chunks := s.Split(content, "python")

	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Content != content {
		t.Errorf("Content = %q, want original", c.Content)
	}
	if c.StartLine != 1 || c.EndLine != 1 {
		t.Errorf("lines = %d-%d, want 1-1", c.StartLine, c.EndLine)
	}
	if c.Context != "Complete file" {
		t.Errorf("Context = %q", c.Context)
	}
	if c.Language != "python" {
		t.Errorf("Language = %q", c.Language)
	}
}

func TestSplit_EmptyContent(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("", "go")

	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 1 {
		t.Errorf("lines = %d-%d, want 1-1", chunks[0].StartLine, chunks[0].EndLine)
	}
}

func TestSplit_Idempotent(t *testing.T) {
	content := pythonSource(2)
	s := NewSplitter()

	a := s.Split(content, "python")
	b := s.Split(content, "python")
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs", i)
		}
	}
}

func TestSplit_ChunksAreContiguous(t *testing.T) {
	content := pythonSource(6)
	lines := len(splitLines(content))

	s := &Splitter{MaxTokens: 40}
	chunks := s.Split(content, "python")

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].StartLine != 1 {
		t.Errorf("first chunk starts at %d, want 1", chunks[0].StartLine)
	}
	if chunks[len(chunks)-1].EndLine != lines {
		t.Errorf("last chunk ends at %d, want %d", chunks[len(chunks)-1].EndLine, lines)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartLine != chunks[i-1].EndLine+1 {
			t.Errorf("chunk %d starts at %d, previous ended at %d",
				i, chunks[i].StartLine, chunks[i-1].EndLine)
		}
	}
}

func TestSplit_BoundaryContexts(t *testing.T) {
	content := pythonSource(4)
	s := &Splitter{MaxTokens: 50}
	chunks := s.Split(content, "python")

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if last.Context != "Final code block" {
		t.Errorf("last Context = %q", last.Context)
	}
	for _, c := range chunks[:len(chunks)-1] {
		if !strings.HasPrefix(c.Context, "Code block") {
			t.Errorf("Context = %q, want a code block description", c.Context)
		}
	}
}

func TestSplit_CanonicalLanguageName(t *testing.T) {
	content := pythonSource(4)
	s := &Splitter{MaxTokens: 50}
	for _, tag := range []string{"python", "py", "PYTHON"} {
		chunks := s.Split(content, tag)
		for _, c := range chunks {
			if c.Language != "python" {
				t.Errorf("Split(%q) chunk Language = %q, want python", tag, c.Language)
			}
		}
	}
}

func TestSplit_UnknownLanguageFallsBackToLineBlocks(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "line %d with some padding text to use tokens\n", i)
	}

	s := &Splitter{MaxTokens: 100}
	chunks := s.Split(b.String(), "cobol")

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	wantRanges := [][2]int{{1, 50}, {51, 100}, {101, 120}}
	for i, c := range chunks {
		if c.StartLine != wantRanges[i][0] || c.EndLine != wantRanges[i][1] {
			t.Errorf("chunk %d = %d-%d, want %d-%d", i, c.StartLine, c.EndLine, wantRanges[i][0], wantRanges[i][1])
		}
		want := fmt.Sprintf("Lines %d-%d", wantRanges[i][0], wantRanges[i][1])
		if c.Context != want {
			t.Errorf("chunk %d Context = %q, want %q", i, c.Context, want)
		}
		if c.Language != "cobol" {
			t.Errorf("chunk %d Language = %q", i, c.Language)
		}
	}
}

func TestSplit_OversizedBlockSplitsMidBlock(t *testing.T) {
	// One giant function body with no internal boundaries.
	var b strings.Builder
	b.WriteString("def huge():\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "    total += compute_partial_result(%d)\n", i)
	}

	s := &Splitter{MaxTokens: 60}
	chunks := s.Split(b.String(), "python")

	if len(chunks) < 2 {
		t.Fatalf("expected mid-block split, got %d chunk(s)", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Context, "Code block split at line ") {
		t.Errorf("Context = %q, want mid-block split description", chunks[0].Context)
	}
}

func TestBoundaryDetectors(t *testing.T) {
	tests := []struct {
		language string
		line     string
		want     bool
	}{
		{"python", "def foo():", true},
		{"python", "async def foo():", true},
		{"python", "class Foo:", true},
		{"python", "    return 1", false},
		{"javascript", "function foo() {", true},
		{"javascript", "async function foo() {", true},
		{"javascript", "class Foo {", true},
		{"javascript", "const handler = (req) => {}", true},
		{"javascript", "  return x;", false},
		{"java", "public class Foo {", true},
		{"java", "    private int count(String s) {", true},
		{"java", "        i++;", false},
		{"go", "func main() {", true},
		{"go", "func (s *Server) Start() error {", true},
		{"go", "type Config struct {", true},
		{"go", "\treturn nil", false},
	}
	for _, tt := range tests {
		_, boundary := detectorFor(tt.language)
		if boundary == nil {
			t.Fatalf("no detector for %q", tt.language)
		}
		if got := boundary(tt.line); got != tt.want {
			t.Errorf("%s boundary(%q) = %v, want %v", tt.language, tt.line, got, tt.want)
		}
	}
}

func TestDetectorFor_Aliases(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"py", "python"},
		{"js", "javascript"},
		{"ts", "javascript"},
		{"typescript", "javascript"},
		{"golang", "go"},
		{"ruby", "ruby"},
	}
	for _, tt := range tests {
		got, detector := detectorFor(tt.tag)
		if got != tt.want {
			t.Errorf("detectorFor(%q) = %q, want %q", tt.tag, got, tt.want)
		}
		if tt.tag == "ruby" && detector != nil {
			t.Error("ruby should have no boundary detector")
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"a\n\nb\n", 3},
	}
	for _, tt := range tests {
		if got := len(splitLines(tt.input)); got != tt.want {
			t.Errorf("splitLines(%q) = %d lines, want %d", tt.input, got, tt.want)
		}
	}
}
