package prompt

import (
	"fmt"
	"strings"

	"github.com/pairreview/pairreview/internal/provider"
)

// FormatSuggestionsDigest renders prior-level suggestions (or, in an
// aggregation pass, the full union of voice suggestions) as a compact
// markdown list for inclusion in a later level's prompt. Returns "" for an
// empty slice so callers can gate a section on it directly.
func FormatSuggestionsDigest(suggestions []provider.Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, s := range suggestions {
		sb.WriteString("- ")
		sb.WriteString(s.File)
		if s.Line != nil {
			fmt.Fprintf(&sb, ":%d", *s.Line)
			if s.LineEnd != nil && *s.LineEnd != *s.Line {
				fmt.Fprintf(&sb, "-%d", *s.LineEnd)
			}
		}
		if s.Type != "" {
			fmt.Fprintf(&sb, " [%s]", s.Type)
		}
		if s.Title != "" {
			sb.WriteString(" ")
			sb.WriteString(s.Title)
		}
		if s.Body != "" {
			sb.WriteString(": ")
			sb.WriteString(truncateBody(s.Body, 300))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}

// OutputFormatInstructions describes the wire format a provider subprocess
// must emit on stdout: one JSON object per event, matching the kinds and
// fields internal/provider's stream parser recognizes. Every provider
// adapter's argv is expected to steer its underlying tool toward this
// shape (directly, or via a translation layer in the adapter itself).
func OutputFormatInstructions() string {
	return `## Output Format

Emit your findings as a stream of JSON objects, one per line (or as a
single JSON array of such objects). Do not include any other text.

Each object has a "kind" field, one of:

- "file_start": {"kind": "file_start", "file": "path/to/file"}
- "suggestion": {"kind": "suggestion", "file": "path/to/file", "line": 42,
  "line_end": 44, "side": "NEW", "type": "bug", "title": "short summary",
  "body": "full explanation", "reasoning": "optional rationale",
  "confidence": 0.8}
- "file_end": {"kind": "file_end", "file": "path/to/file"}
- "summary": {"kind": "summary", "text": "overall review summary"}

"line"/"line_end" refer to the new side of the diff unless "side" is
"OLD". Omit a suggestion entirely rather than inventing a line number you
are not confident in. Do not wrap the JSON in markdown code fences.`
}
