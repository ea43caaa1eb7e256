package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelJSON_DirectObject(t *testing.T) {
	m := ParseModelJSON(`{"title": "AC Repair Guide", "body": "<p>hi</p>"}`)
	require.NotEmpty(t, m)
	assert.Equal(t, "AC Repair Guide", m["title"])
	assert.Equal(t, "<p>hi</p>", m["body"])
}

func TestParseModelJSON_CodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"title\": \"Fenced\"}\n```",
		},
		{
			name:  "bare fence",
			input: "```\n{\"title\": \"Fenced\"}\n```",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseModelJSON(tt.input)
			assert.Equal(t, "Fenced", m["title"])
		})
	}
}

func TestParseModelJSON_SurroundingProse(t *testing.T) {
	input := `Sure! Here is your article:

{"title": "Extracted", "body": "<p>text with {braces} inside tags is fine</p>"}

Let me know if you need anything else.`

	m := ParseModelJSON(input)
	assert.Equal(t, "Extracted", m["title"])
}

func TestParseModelJSON_InvalidEscapeRepair(t *testing.T) {
	// \$ is not a legal JSON escape; the repair pass doubles the backslash.
	input := `{"title": "Pricing", "body": "<p>Only \$99 per visit</p>"}`

	m := ParseModelJSON(input)
	require.NotEmpty(t, m)
	assert.Equal(t, "Pricing", m["title"])
	assert.Contains(t, m["body"], "$99")
}

func TestParseModelJSON_NeverFails(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   \n\t  "},
		{name: "prose only", input: "I could not generate that article, sorry."},
		{name: "unbalanced braces", input: `{"title": "never closed`},
		{name: "array not object", input: `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseModelJSON(tt.input)
			require.NotNil(t, m)
			assert.Empty(t, m)
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractFirstJSONObject(`noise {"a": {"b": 1}} trailing`))
	assert.Equal(t, "", extractFirstJSONObject("no object here"))
	assert.Equal(t, "", extractFirstJSONObject(`{"never": "closed"`))
}

func TestRepairInvalidEscapes_PreservesLegalEscapes(t *testing.T) {
	input := `{"body": "line\none \"quoted\" and a tab\tdone"}`
	assert.Equal(t, input, repairInvalidEscapes(input))
}
