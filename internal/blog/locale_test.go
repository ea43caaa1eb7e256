package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixLocaleConsistency_ConfiguredCityWrong(t *testing.T) {
	// Keyword targets Orlando but the business profile is configured for
	// Tampa; every Tampa mention must become Orlando.
	result := &GenerationResult{
		Title:           "AC Repair in Tampa: What Homeowners Should Know",
		H1:              "AC Repair in Tampa",
		MetaTitle:       "Tampa AC Repair | Cool Breeze",
		MetaDescription: "Professional AC repair in Tampa from local technicians.",
		Body:            "<h2>Why Tampa Summers Are Hard on AC Units</h2><p>Homeowners in tampa know the drill.</p>",
		FAQItems: []FAQItem{
			{Question: "How fast can you get to Tampa?", Answer: "Same day across Tampa."},
		},
	}

	FixLocaleConsistency(result, "Tampa", "Orlando", "FL", DefaultKnownCities)

	assert.NotContains(t, result.Title, "Tampa")
	assert.Contains(t, result.Title, "Orlando")
	assert.Contains(t, result.H1, "Orlando")
	assert.Contains(t, result.MetaTitle, "Orlando")
	assert.Contains(t, result.MetaDescription, "Orlando")
	assert.NotContains(t, result.Body, "Tampa")
	assert.NotContains(t, result.Body, "tampa")
	assert.Contains(t, result.FAQItems[0].Question, "Orlando")
	assert.Contains(t, result.FAQItems[0].Answer, "Orlando")
}

func TestFixLocaleConsistency_SweepsHallucinatedCities(t *testing.T) {
	result := &GenerationResult{
		Body: "<p>Residents of Fort Myers trust us for fast service.</p>",
		FAQItems: []FAQItem{
			{Question: "Do you serve Naples?", Answer: "We serve the whole area."},
		},
	}

	FixLocaleConsistency(result, "Sarasota", "Sarasota", "FL", DefaultKnownCities)

	assert.NotContains(t, result.Body, "Fort Myers")
	assert.Contains(t, result.Body, "Sarasota")
	assert.NotContains(t, result.FAQItems[0].Question, "Naples")
}

func TestFixLocaleConsistency_Idempotent(t *testing.T) {
	result := &GenerationResult{
		Title: "AC Repair in Tampa",
		Body:  "<p>Tampa homes need maintenance.</p>",
	}

	FixLocaleConsistency(result, "Tampa", "Orlando", "FL", DefaultKnownCities)
	title, body := result.Title, result.Body

	FixLocaleConsistency(result, "Tampa", "Orlando", "FL", DefaultKnownCities)
	assert.Equal(t, title, result.Title)
	assert.Equal(t, body, result.Body)
}

func TestCollapseDuplicateLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "duplicate city",
			in:   "The Benefits of AC Repair in Sarasota in Sarasota",
			want: "The Benefits of AC Repair in Sarasota",
		},
		{
			name: "city comma region then city",
			in:   "AC Repair in Sarasota, FL in Sarasota: A Guide",
			want: "AC Repair in Sarasota, FL: A Guide",
		},
		{
			name: "region then city collapses to city",
			in:   "Top Plumbers in FL in Sarasota",
			want: "Top Plumbers in Sarasota",
		},
		{
			name: "triple repetition collapses fully",
			in:   "AC Repair in Sarasota in Sarasota in Sarasota: Benefits",
			want: "AC Repair in Sarasota: Benefits",
		},
		{
			name: "single mention untouched",
			in:   "AC Repair in Sarasota Explained",
			want: "AC Repair in Sarasota Explained",
		},
		{
			name: "near duplicate",
			in:   "Service near Sarasota near Sarasota",
			want: "Service near Sarasota",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collapseDuplicateLocation(tt.in, "Sarasota", "FL")
			assert.Equal(t, tt.want, got)
			// A second run must be a no-op.
			assert.Equal(t, got, collapseDuplicateLocation(got, "Sarasota", "FL"))
		})
	}
}

func TestCollapseDuplicateLocations_FixesHeadings(t *testing.T) {
	result := &GenerationResult{
		Body: "<h2>AC Repair in Sarasota in Sarasota: Benefits</h2><p>Sarasota text stays as is.</p>",
	}

	FixLocaleConsistency(result, "", "Sarasota", "FL", DefaultKnownCities)

	assert.Contains(t, result.Body, "<h2>AC Repair in Sarasota: Benefits</h2>")
	assert.Contains(t, result.Body, "Sarasota text stays as is.")
}
