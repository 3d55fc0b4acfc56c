package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		wantID   string
	}{
		{
			name:     "bare JSON object",
			response: `{"identification": "1881-S Morgan Dollar", "grade": "MS-64", "valuation_low_cents": 9500, "valuation_high_cents": 15000, "notes": "strong luster"}`,
			wantID:   "1881-S Morgan Dollar",
		},
		{
			name: "JSON wrapped in a code fence",
			response: "Here is my appraisal:\n```json\n" +
				`{"identification": "1909-S VDB Lincoln Cent", "grade": "VF-30", "valuation_low_cents": 65000, "valuation_high_cents": 85000}` +
				"\n```",
			wantID: "1909-S VDB Lincoln Cent",
		},
		{
			name:     "no JSON at all",
			response: "I cannot identify this item.",
			wantErr:  true,
		},
		{
			name:     "JSON missing identification",
			response: `{"grade": "MS-64"}`,
			wantErr:  true,
		},
		{
			name:     "malformed JSON",
			response: `{"identification": "Morgan Dollar", "grade":`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := parseAnalysis(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, analysis.Identification)
		})
	}
}
