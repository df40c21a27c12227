package filter

import (
	"testing"

	"onlinejobs-scout/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(DefaultKeywords, DefaultRelatedTerms, DefaultExcludeKeywords, false)

	tests := []struct {
		name    string
		text    string
		matched bool
		reason  string
		term    string
	}{
		{
			name:    "Direct keyword",
			text:    "Automation Specialist for our agency",
			matched: true,
			reason:  ReasonKeyword,
			term:    "automation",
		},
		{
			name:    "Related term",
			text:    "Zapier Expert Needed",
			matched: true,
			reason:  ReasonRelated,
			term:    "zapier",
		},
		{
			name:    "Multi word keyword",
			text:    "ENTRY   LEVEL bookkeeper",
			matched: true,
			reason:  ReasonKeyword,
			term:    "entry level",
		},
		{
			name:    "Exclusion wins over keyword",
			text:    "Admin support with telemarketing duties",
			matched: false,
			reason:  ReasonExcluded,
			term:    "telemarketing",
		},
		{
			name:    "No hit",
			text:    "Senior Graphic Designer",
			matched: false,
			reason:  ReasonNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := m.Match(tt.text)
			assert.Equal(t, tt.matched, d.Matched)
			assert.Equal(t, tt.reason, d.Reason)
			if tt.term != "" {
				assert.Equal(t, tt.term, d.Term)
			}
		})
	}
}

func TestMatcher_FoldsDiacritics(t *testing.T) {
	m := NewMatcher([]string{"administracion"}, nil, nil, false)

	d := m.Match("Asistente de Administración")

	assert.True(t, d.Matched)
}

func TestMatcher_AdvisoryOnlyAppliesExclusions(t *testing.T) {
	m := NewMatcher([]string{"automation"}, nil, []string{"cold caller"}, true)

	assert.True(t, m.Match("Graphic Designer").Matched)
	assert.Equal(t, ReasonAdvisory, m.Match("Graphic Designer").Reason)
	assert.False(t, m.Match("Cold Caller - Automation Agency").Matched)
}

func TestMatcher_RelatedTermsOnlyForConfiguredKeywords(t *testing.T) {
	m := NewMatcher([]string{"operations"}, DefaultRelatedTerms, nil, false)

	assert.False(t, m.Match("Zapier Expert").Matched)
	assert.True(t, m.Match("Logistics Coordinator").Matched)
}

func TestMatcher_MatchRecordIgnoresSentinels(t *testing.T) {
	m := NewMatcher([]string{"specified"}, nil, nil, false)
	rec := models.JobRecord{Title: "Bookkeeper", Description: models.NotSpecified}

	assert.False(t, m.MatchRecord(rec).Matched)
}
