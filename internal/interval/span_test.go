package interval

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpan(t *testing.T) {
	start := at(0)
	end := at(60)

	s, err := NewSpan(start, end)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.Duration())

	_, err = NewSpan(end, start)
	assert.Error(t, err, "inverted bounds must be rejected")

	_, err = NewSpan(start, start)
	assert.Error(t, err, "zero-length span must be rejected")
}

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected bool
	}{
		{"partial overlap", span(0, 60), span(30, 90), true},
		{"containment", span(0, 120), span(30, 60), true},
		{"touching does not overlap", span(0, 60), span(60, 120), false},
		{"disjoint", span(0, 60), span(120, 180), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}

func TestSpanClip(t *testing.T) {
	bounds := span(60, 180)

	clipped, ok := span(0, 120).Clip(bounds)
	require.True(t, ok)
	assert.Equal(t, span(60, 120), clipped)

	clipped, ok = span(90, 240).Clip(bounds)
	require.True(t, ok)
	assert.Equal(t, span(90, 180), clipped)

	_, ok = span(200, 240).Clip(bounds)
	assert.False(t, ok, "span outside bounds must clip to nothing")
}

func TestSpanContains(t *testing.T) {
	s := span(0, 60)
	assert.True(t, s.Contains(at(0)), "start is inside a half-open span")
	assert.True(t, s.Contains(at(59)))
	assert.False(t, s.Contains(at(60)), "end is outside a half-open span")
}

func TestSpanJSONRoundTrip(t *testing.T) {
	s := span(0, 90)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2025-01-06T00:00:00Z")

	var back Span
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, s.Start.Equal(back.Start))
	assert.True(t, s.End.Equal(back.End))
}
