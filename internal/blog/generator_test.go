package blog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoscribe/seoscribe-api/internal/llm"
)

// fakeProvider returns scripted responses in order, repeating the last one
// once the script runs out.
type fakeProvider struct {
	responses []string
	err       error
	calls     int
	requests  []*llm.CompletionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return &llm.Completion{
		Content:      f.responses[i],
		FinishReason: "stop",
		InputTokens:  100,
		OutputTokens: 500,
	}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

// articleJSON builds a model response with a body long enough to skip the
// continuation loop.
func articleJSON(t *testing.T, words int) string {
	t.Helper()
	para := "<p>" + strings.TrimSpace(strings.Repeat("sarasota cooling word ", words/3+1)) + "</p>"
	payload := map[string]any{
		"title":            "AC Repair in Sarasota: A Complete Homeowner's Guide",
		"h1":               "AC Repair Sarasota Homeowners Can Count On",
		"meta_title":       "Expert AC Repair Sarasota | Cool Breeze HVAC Team",
		"meta_description": "Professional ac repair in Sarasota, FL. Cool Breeze HVAC offers fast, reliable service from licensed local technicians. Call (941) 555-0123 today now.",
		"body":             "<h2>Understanding AC Problems in Sarasota</h2>" + para,
		"faq_items": []map[string]string{
			{"question": "How often should I service my AC?", "answer": "Twice a year in Sarasota."},
		},
		"tags": []string{"ac repair", "sarasota"},
		"cta":  map[string]string{"company_name": "Cool Breeze HVAC"},
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(b)
}

func TestGenerate_HappyPath(t *testing.T) {
	provider := &fakeProvider{responses: []string{articleJSON(t, 1200)}}
	g := NewGenerator(GeneratorOptions{Primary: provider, PrimaryModel: "gpt-4o"})

	req := testRequest()
	result := g.Generate(context.Background(), req)

	require.NotNil(t, result)
	assert.Equal(t, "AC Repair in Sarasota: A Complete Homeowner's Guide", result.Title)
	assert.NotEmpty(t, result.Body)
	assert.Empty(t, result.Report.Errors)
	assert.Equal(t, 1, provider.calls)
	assert.GreaterOrEqual(t, result.WordCount, int(float64(req.TargetWordCount)*wordCountTolerance))
	require.NotNil(t, result.Schema)
}

func TestGenerate_FallsBackToSecondTier(t *testing.T) {
	primary := &fakeProvider{err: errors.New("rate limited")}
	fallback := &fakeProvider{responses: []string{articleJSON(t, 1200)}}
	g := NewGenerator(GeneratorOptions{
		Primary: primary, PrimaryModel: "gpt-4o",
		Fallback: fallback, FallbackModel: "gpt-4o-mini",
	})

	result := g.Generate(context.Background(), testRequest())

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.NotEmpty(t, result.Body)
	assert.Empty(t, result.Report.Errors)
	assert.Equal(t, "gpt-4o-mini", fallback.requests[0].Model)
}

func TestGenerate_RefusalFallsBackToSecondTier(t *testing.T) {
	primary := &fakeProvider{responses: []string{"I'm sorry, I can't write that article."}}
	fallback := &fakeProvider{responses: []string{articleJSON(t, 1200)}}
	g := NewGenerator(GeneratorOptions{
		Primary: primary, PrimaryModel: "gpt-4o",
		Fallback: fallback, FallbackModel: "gpt-4o-mini",
	})

	req := testRequest()
	result := g.Generate(context.Background(), req)

	// The primary answered, but with no article body; the fallback must be
	// consulted anyway.
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "AC Repair in Sarasota: A Complete Homeowner's Guide", result.Title)
	assert.Empty(t, result.Report.Errors)
	assert.GreaterOrEqual(t, result.WordCount, int(float64(req.TargetWordCount)*wordCountTolerance))
}

func TestGenerate_TotalFailureReturnsMinimalResult(t *testing.T) {
	provider := &fakeProvider{err: errors.New("api down")}
	g := NewGenerator(GeneratorOptions{Primary: provider, PrimaryModel: "gpt-4o"})

	req := testRequest()
	result := g.Generate(context.Background(), req)

	require.NotNil(t, result)
	assert.NotEmpty(t, result.Title)
	assert.NotEmpty(t, result.H1)
	assert.NotEmpty(t, result.MetaTitle)
	assert.NotEmpty(t, result.MetaDescription)
	assert.NotEmpty(t, result.Body)
	assert.Greater(t, result.WordCount, 0)
	assert.Equal(t, req.CompanyName, result.CTA.CompanyName)
	require.NotEmpty(t, result.Report.Errors)
	assert.Contains(t, result.Report.Errors[0], "generation failed")
}

func TestGenerate_NoProvidersConfigured(t *testing.T) {
	g := NewGenerator(GeneratorOptions{})

	result := g.Generate(context.Background(), testRequest())

	require.NotNil(t, result)
	assert.NotEmpty(t, result.Body)
	assert.NotEmpty(t, result.MetaDescription)
	require.NotEmpty(t, result.Report.Errors)
}

func TestGenerate_UnparseableResponseStillProducesResult(t *testing.T) {
	provider := &fakeProvider{responses: []string{"I'm sorry, I can't write that article."}}
	g := NewGenerator(GeneratorOptions{Primary: provider, PrimaryModel: "gpt-4o"})

	result := g.Generate(context.Background(), testRequest())

	require.NotNil(t, result)
	assert.NotEmpty(t, result.Title)
	assert.NotEmpty(t, result.Report.Warnings)
}

func TestGenerate_PortCharlotteKeywordKeepsCity(t *testing.T) {
	body := "<h2>AC Repair in Port Charlotte</h2><p>" +
		strings.TrimSpace(strings.Repeat("port charlotte cooling ", 500)) + "</p>"
	payload := map[string]any{
		"title": "AC Repair in Port Charlotte: A Guide",
		"h1":    "ac repair port charlotte done right",
		"body":  body,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	provider := &fakeProvider{responses: []string{string(raw)}}
	g := NewGenerator(GeneratorOptions{Primary: provider, PrimaryModel: "gpt-4o"})

	req := testRequest()
	req.Keyword = "ac repair port charlotte"
	req.City = "Sarasota" // stale profile city

	result := g.Generate(context.Background(), req)

	assert.Contains(t, result.Title, "Port Charlotte")
	assert.NotContains(t, result.Body, "Sarasota")
}

func TestGenerate_ObserverReceivesUsage(t *testing.T) {
	provider := &fakeProvider{responses: []string{articleJSON(t, 1200)}}
	observer := &captureObserver{}
	g := NewGenerator(GeneratorOptions{
		Primary: provider, PrimaryModel: "gpt-4o", Observer: observer,
	})

	g.Generate(context.Background(), testRequest())

	require.Equal(t, 1, observer.calls)
	assert.Equal(t, "gpt-4o", observer.model)
	assert.Equal(t, 600, observer.usage.TotalTokens)
}

type captureObserver struct {
	calls int
	model string
	usage Usage
}

func (c *captureObserver) RecordGeneration(_ context.Context, _, model string, usage Usage, _ time.Duration) {
	c.calls++
	c.model = model
	c.usage = usage
}
