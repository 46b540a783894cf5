// Package payload recovers a structured scoring payload from the free-form
// text a language model replies with. Extraction locates a balanced JSON
// object inside prose and markdown fences, sanitization removes common LLM
// JSON mistakes, and validation checks the result against the scoring-payload
// schema before anything downstream trusts it.
package payload

import (
	"regexp"
	"strings"

	"github.com/code-scoring/engine/internal/domain"
)

const (
	jsonFenceMarker = "```json"
	fenceMarker     = "```"
)

var (
	// lineCommentRe strips line-trailing // comments. It is deliberately not
	// string-literal aware: a literal "//" inside a JSON string (for example
	// a URL in feedback text) is also stripped. Known limitation.
	lineCommentRe = regexp.MustCompile(`(?m)\s*//[^\n]*$`)

	// trailingCommaRe removes a trailing comma immediately before a closing
	// brace or bracket.
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSONObject locates the first balanced JSON object in the model's
// reply and returns it sanitized, ready for parsing.
//
// When the reply contains a markdown code fence, the fence contents are
// preferred as the search candidate over the surrounding prose. Within the
// candidate the scan starts at the first '{' and tracks brace depth with
// string-literal awareness, so braces inside string values do not terminate
// the object early. If the reply ends before the object closes, the remainder
// of the candidate is returned as a best-effort fallback; downstream parsing
// may still reject it.
//
// Returns a *domain.MalformedResponseError when no object can be located.
func ExtractJSONObject(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if fenced, ok := fencedBlock(candidate); ok {
		candidate = fenced
	}

	start := strings.IndexByte(candidate, '{')
	if start < 0 {
		return "", domain.NewMalformedResponseError("no JSON object found", len(raw))
	}

	object := balancedObject(candidate, start)
	return Sanitize(object), nil
}

// fencedBlock returns the contents of the first markdown code fence,
// preferring a ```json fence over a generic one. The second return value is
// false when no closed fence exists.
func fencedBlock(text string) (string, bool) {
	if start := strings.Index(text, jsonFenceMarker); start >= 0 {
		start += len(jsonFenceMarker)
		if end := strings.Index(text[start:], fenceMarker); end >= 0 {
			return strings.TrimSpace(text[start : start+end]), true
		}
	}

	start := strings.Index(text, fenceMarker)
	if start < 0 {
		return "", false
	}
	start += len(fenceMarker)

	// Skip a language identifier on the opening fence line.
	if newline := strings.IndexByte(text[start:], '\n'); newline >= 0 {
		start += newline + 1
	}

	end := strings.Index(text[start:], fenceMarker)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+end]), true
}

// balancedObject scans forward from the opening brace at start and returns
// the substring through the brace that returns depth to zero. The scanner is
// a small state machine (normal / in-string / escaped); both single and
// double quotes open a string literal, and a backslash escapes the next
// character inside one. If depth never returns to zero the remainder of the
// text is returned unterminated.
func balancedObject(text string, start int) string {
	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Unterminated object; hand the remainder to the parser as-is.
	return text[start:]
}

// Sanitize repairs common LLM JSON mistakes: line-trailing // comments and
// trailing commas before a closing brace or bracket. The repairs are purely
// textual; see lineCommentRe for the documented string-literal caveat.
func Sanitize(jsonText string) string {
	jsonText = lineCommentRe.ReplaceAllString(jsonText, "")
	jsonText = trailingCommaRe.ReplaceAllString(jsonText, "$1")
	return jsonText
}
