package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{
			name:  "gpt-4o",
			model: "gpt-4o", inputTokens: 1000, outputTokens: 1000,
			want: 0.005 + 0.015,
		},
		{
			name:  "gpt-4o-mini",
			model: "gpt-4o-mini", inputTokens: 2000, outputTokens: 500,
			want: 2*0.00015 + 0.5*0.0006,
		},
		{
			name:  "unknown model billed at gpt-4o rates",
			model: "mystery-model", inputTokens: 1000, outputTokens: 0,
			want: 0.005,
		},
		{
			name:  "zero usage",
			model: "gpt-4o", inputTokens: 0, outputTokens: 0,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, tt.inputTokens, tt.outputTokens), 1e-9)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.020000", FormatCost(0.02))
	assert.Equal(t, "$0.000150", FormatCost(0.00015))
}
