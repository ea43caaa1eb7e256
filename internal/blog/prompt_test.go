package blog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPrompt_ContainsRequestFields(t *testing.T) {
	b := NewPromptBuilder()
	req := testRequest()

	prompt := b.UserPrompt(req, "Sarasota")

	assert.Contains(t, prompt, "ac repair sarasota")
	assert.Contains(t, prompt, "Cool Breeze HVAC")
	assert.Contains(t, prompt, "(941) 555-0123")
	assert.Contains(t, prompt, "1200")
	assert.Contains(t, prompt, `"Sarasota"`)
}

func TestUserPrompt_CityOverridesProfileCity(t *testing.T) {
	b := NewPromptBuilder()
	req := testRequest()
	req.City = "Tampa"

	prompt := b.UserPrompt(req, "Orlando")

	assert.Contains(t, prompt, "Orlando")
	assert.NotContains(t, prompt, "Tampa")
}

func TestUserPrompt_LinkInventoryCapped(t *testing.T) {
	b := NewPromptBuilder()
	req := testRequest()
	for i := 0; i < 10; i++ {
		req.InternalLinks = append(req.InternalLinks, InternalLink{
			URL:   fmt.Sprintf("/blog/post-%d", i),
			Title: fmt.Sprintf("Post %d", i),
		})
	}

	prompt := b.UserPrompt(req, "Sarasota")

	assert.Contains(t, prompt, "/blog/post-0")
	assert.Contains(t, prompt, fmt.Sprintf("/blog/post-%d", maxPromptLinks-1))
	assert.NotContains(t, prompt, fmt.Sprintf("/blog/post-%d", maxPromptLinks))
}

func TestUserPrompt_SkipsIncompleteLinks(t *testing.T) {
	b := NewPromptBuilder()
	req := testRequest()
	req.InternalLinks = []InternalLink{
		{URL: "/blog/no-title"},
		{Title: "No URL"},
	}

	prompt := b.UserPrompt(req, "Sarasota")
	assert.NotContains(t, prompt, "INTERNAL LINKS")
}

func TestContinuationPrompt_ReplaysOnlyTail(t *testing.T) {
	b := NewPromptBuilder()
	req := testRequest()

	head := "<p>HEAD MARKER " + strings.Repeat("early content ", 200) + "</p>"
	tail := "<p>TAIL MARKER closing thoughts</p>"
	body := head + tail

	prompt := b.ContinuationPrompt(req, "Sarasota", body, 400)

	assert.Contains(t, prompt, "TAIL MARKER")
	assert.NotContains(t, prompt, "HEAD MARKER")
	assert.Contains(t, prompt, "400")
	assert.Contains(t, prompt, "body_append")
}

func TestSystemPrompt_FixedAndUninterpolated(t *testing.T) {
	b := NewPromptBuilder()
	assert.Equal(t, b.SystemPrompt(), b.SystemPrompt())
	assert.Contains(t, b.SystemPrompt(), "ONLY valid JSON")
	assert.Contains(t, b.ContinuationSystemPrompt(), "body_append")
}
