package blog

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFenceOpenRe  = regexp.MustCompile("(?m)^```json\\s*")
	codeFenceBareRe  = regexp.MustCompile("(?m)^```\\s*")
	codeFenceCloseRe = regexp.MustCompile("(?m)\\s*```$")
	// A backslash not followed by a legal JSON escape character. The model
	// frequently emits things like "C:\Users" or "\$99" inside strings.
	invalidEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)
)

// ParseModelJSON turns raw model text into a key/value map. It never fails:
// it tries a direct decode, then the first balanced {...} object, then an
// invalid-escape repair pass, and returns an empty map if all three lose.
// Callers must treat an empty map as "no structured data", not as an error.
func ParseModelJSON(text string) map[string]any {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}
	}

	// Strip markdown code fences the model was told not to emit anyway.
	text = codeFenceOpenRe.ReplaceAllString(text, "")
	text = codeFenceBareRe.ReplaceAllString(text, "")
	text = codeFenceCloseRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if m := tryDecode(text); m != nil {
		return m
	}

	extracted := extractFirstJSONObject(text)
	if extracted != "" {
		if m := tryDecode(extracted); m != nil {
			return m
		}
	}

	candidate := extracted
	if candidate == "" {
		candidate = text
	}
	if m := tryDecode(repairInvalidEscapes(candidate)); m != nil {
		return m
	}

	return map[string]any{}
}

// tryDecode decodes s into a map, returning nil when s is not a JSON object.
func tryDecode(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// extractFirstJSONObject returns the first balanced {...} substring of s,
// tracking nesting depth. Braces inside string literals are counted too;
// that approximation is acceptable because a brace-imbalanced extraction
// just fails the decode and falls through to the repair pass.
func extractFirstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repairInvalidEscapes escapes any backslash that does not begin a legal
// JSON escape sequence, so `\$` becomes `\\$` and the decoder can proceed.
func repairInvalidEscapes(s string) string {
	return invalidEscapeRe.ReplaceAllString(s, `\\$1`)
}
