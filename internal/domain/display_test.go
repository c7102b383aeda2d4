package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplaySessions(t *testing.T) {
	a := MiningSession{Key: 1, LandName: "A"}
	b := MiningSession{Key: 2, LandName: "B"}

	tests := []struct {
		name    string
		summary *MiningSummary
		raw     []MiningSession
		want    []MiningSession
		source  SessionSource
	}{
		{
			name:    "summary list wins when non-empty",
			summary: &MiningSummary{ActiveSessions: &ActiveSessions{Sessions: []MiningSession{b}}},
			raw:     []MiningSession{a},
			want:    []MiningSession{b},
			source:  SourceSummary,
		},
		{
			name:    "empty summary list falls through to raw",
			summary: &MiningSummary{ActiveSessions: &ActiveSessions{Sessions: []MiningSession{}}},
			raw:     []MiningSession{a},
			want:    []MiningSession{a},
			source:  SourceRaw,
		},
		{
			name:    "summary without active block falls through",
			summary: &MiningSummary{},
			raw:     []MiningSession{a},
			want:    []MiningSession{a},
			source:  SourceRaw,
		},
		{
			name:   "nil summary uses raw",
			raw:    []MiningSession{a},
			want:   []MiningSession{a},
			source: SourceRaw,
		},
		{
			name:   "nothing at all",
			want:   []MiningSession{},
			source: SourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src := DisplaySessions(tt.summary, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.source, src)
		})
	}
}

func TestSummaryFallthrough(t *testing.T) {
	s := &MiningSummary{}
	assert.True(t, SummaryFallthrough(s, SourceRaw))
	assert.True(t, SummaryFallthrough(s, SourceNone))
	assert.False(t, SummaryFallthrough(s, SourceSummary))
	assert.False(t, SummaryFallthrough(nil, SourceRaw))
}

func TestFindSession(t *testing.T) {
	list := []MiningSession{{Key: 1}, {Key: 2, LandName: "two"}}
	s, ok := FindSession(list, 2)
	assert.True(t, ok)
	assert.Equal(t, "two", s.LandName)
	_, ok = FindSession(list, 3)
	assert.False(t, ok)
}
