package providers

import (
	"fmt"
	"strings"

	"github.com/avelar/critique/internal/chunk"
)

// buildAnalysisPrompt constructs the structured-analysis prompt for a chunk.
// closing is the backend-specific final instruction; the providers differ in
// how firmly they must be told to emit bare JSON.
func buildAnalysisPrompt(c chunk.Chunk, actx AnalysisContext, closing string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a senior software engineer conducting a code review. Analyze the provided %s code for:
1. Security vulnerabilities and risks
2. Code quality and readability issues
3. Performance and efficiency concerns
4. Best practices and style violations
5. Modularity and maintainability improvements
`, actx.Language)

	if len(actx.FocusAreas) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s\n", strings.Join(actx.FocusAreas, ", "))
	}

	fmt.Fprintf(&b, "\nCode to analyze (lines %d-%d):\n```%s\n%s\n```\n", c.StartLine, c.EndLine, actx.Language, c.Content)

	if c.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", c.Context)
	}

	b.WriteString(`
Return your analysis as a JSON object with this exact structure:
{
  "summary": "Brief 2-3 sentence overview",
  "issues": [
    {
      "type": "security|bug|performance|style|maintainability",
      "severity": "high|medium|low",
      "line": number,
      "message": "Description of the issue",
      "suggestion": "Specific fix recommendation",
      "code_snippet": "Relevant code context",
      "confidence": 0.95
    }
  ],
  "recommendations": [
    {
      "area": "readability|modularity|performance|security|testing",
      "message": "Improvement suggestion",
      "impact": "high|medium|low",
      "effort": "high|medium|low",
      "examples": ["example1", "example2"]
    }
  ]
}

`)
	b.WriteString(closing)

	return b.String()
}

const (
	openaiClosing = "Ensure the response is valid JSON only, no additional text."
	geminiClosing = "Respond with valid JSON only, no additional text or formatting."
)
