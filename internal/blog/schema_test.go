package blog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeSchema_ArticleAndBusinessAlwaysPresent(t *testing.T) {
	req := testRequest()
	result := &GenerationResult{
		H1:              "AC Repair in Sarasota",
		MetaDescription: "A guide to AC repair.",
		WordCount:       1200,
		Tags:            []string{"ac repair", "sarasota"},
	}

	bundle := SynthesizeSchema(result, req, "Sarasota", time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	require.NotNil(t, bundle)
	assert.Equal(t, "https://schema.org", bundle.Context)
	require.Len(t, bundle.Graph, 2)

	article, ok := bundle.Graph[0].(articleSchema)
	require.True(t, ok)
	assert.Equal(t, "BlogPosting", article.Type)
	assert.Equal(t, "AC Repair in Sarasota", article.Headline)
	assert.Equal(t, "Cool Breeze HVAC", article.Publisher.Name)
	assert.Equal(t, "2026-08-24T12:00:00Z", article.DatePublished)
	assert.Equal(t, "ac repair, sarasota", article.Keywords)

	business, ok := bundle.Graph[1].(localBusinessSchema)
	require.True(t, ok)
	assert.Equal(t, "LocalBusiness", business.Type)
	assert.Equal(t, "(941) 555-0123", business.Telephone)
	require.NotNil(t, business.Address)
	assert.Equal(t, "Sarasota", business.Address.AddressLocality)
	assert.Equal(t, "FL", business.Address.AddressRegion)
}

func TestSynthesizeSchema_FAQPageWhenItemsExist(t *testing.T) {
	req := testRequest()
	result := &GenerationResult{
		H1: "Guide",
		FAQItems: []FAQItem{
			{Question: "How often should I service my AC?", Answer: "<p>Twice a year.</p>"},
			{Question: "What does a tune-up cost?", Answer: "It depends on the unit."},
		},
	}

	bundle := SynthesizeSchema(result, req, "Sarasota", time.Now())

	var faq *faqPageSchema
	for _, node := range bundle.Graph {
		if f, ok := node.(faqPageSchema); ok {
			faq = &f
		}
	}
	require.NotNil(t, faq)
	require.Len(t, faq.MainEntity, 2)
	assert.Equal(t, "How often should I service my AC?", faq.MainEntity[0].Name)
	// Answer text is plain text, not HTML.
	assert.NotContains(t, faq.MainEntity[0].AcceptedAnswer.Text, "<p>")
}

func TestSynthesizeSchema_HowToDetection(t *testing.T) {
	req := testRequest()
	result := &GenerationResult{
		H1: "Guide",
		Body: "<h2>How to Troubleshoot Your AC Before Calling</h2>" +
			"<h3>Check the Thermostat</h3><p>Make sure it is set to cool.</p>" +
			"<h3>Inspect the Air Filter</h3><p>A clogged filter chokes airflow.</p>" +
			"<h3>Look at the Breaker</h3><p>Reset a tripped breaker once.</p>" +
			"<h2>When to Call a Professional</h2><p>Anything involving refrigerant.</p>",
	}

	bundle := SynthesizeSchema(result, req, "Sarasota", time.Now())

	var howTo *howToSchema
	for _, node := range bundle.Graph {
		if h, ok := node.(howToSchema); ok {
			howTo = &h
		}
	}
	require.NotNil(t, howTo)
	assert.Equal(t, "How to Troubleshoot Your AC Before Calling", howTo.Name)
	require.Len(t, howTo.Step, 3)
	assert.Equal(t, "Check the Thermostat", howTo.Step[0].Name)
	assert.Equal(t, "Make sure it is set to cool.", howTo.Step[0].Text)
}

func TestSynthesizeSchema_NoHowToWithoutSteps(t *testing.T) {
	req := testRequest()
	result := &GenerationResult{
		H1:   "Guide",
		Body: "<h2>How to Think About Maintenance</h2><p>Just prose, no steps.</p>",
	}

	bundle := SynthesizeSchema(result, req, "Sarasota", time.Now())
	for _, node := range bundle.Graph {
		_, isHowTo := node.(howToSchema)
		assert.False(t, isHowTo)
	}
}

func TestSchemaBundle_SerializesAsSingleGraph(t *testing.T) {
	req := testRequest()
	result := &GenerationResult{H1: "Guide"}

	bundle := SynthesizeSchema(result, req, "Sarasota", time.Now())
	raw, err := json.Marshal(bundle)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "https://schema.org", decoded["@context"])
	_, hasGraph := decoded["@graph"]
	assert.True(t, hasGraph)
}
